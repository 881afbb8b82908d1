package entities

import "encoding/json"

// SensorResult is the outcome of one sensor within a collector run.
type SensorResult struct {
	SensorID string   `json:"sensorId"`
	Success  bool     `json:"success"`
	Value    *float64 `json:"value"`
	Error    string   `json:"error"`
}

// MarshalJSON emits value (possibly null) for successes and error for failures.
func (r SensorResult) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"sensorId": r.SensorID,
		"success":  r.Success,
	}
	if r.Success {
		out["value"] = r.Value
	} else {
		out["error"] = r.Error
	}
	return json.Marshal(out)
}

// RunReport aggregates the per-sensor results of one collector invocation.
// Success is true whenever the run completed, even if some sensors failed.
type RunReport struct {
	Success bool           `json:"success"`
	Results []SensorResult `json:"results"`
}

func (r *RunReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Success {
			n++
		}
	}
	return n
}
