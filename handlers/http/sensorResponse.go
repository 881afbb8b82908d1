package httpHandler

import (
	"agro-collector/entities"
)

// sensorResponse is a sensor as sent to clients: the endpoint credential inside
// last_reading is never echoed back, only whether one is set.
type sensorResponse struct {
	entities.Sensor
	APIKeySet bool `json:"api_key_set"`
}

func newSensorResponse(sensor entities.Sensor) sensorResponse {
	out := sensorResponse{Sensor: sensor}

	cfg, err := sensor.Reading()
	if err != nil {
		// not an object; nothing can be shown safely
		out.LastReading = nil
		return out
	}
	if _, ok := cfg[entities.ReadingKeyAPIKey]; !ok {
		return out
	}

	out.APIKeySet = cfg.APIKey() != ""
	delete(cfg, entities.ReadingKeyAPIKey)
	redacted, err := cfg.JSON()
	if err != nil {
		out.LastReading = nil
		return out
	}
	out.LastReading = redacted
	return out
}

func newSensorResponses(sensors []entities.Sensor) []sensorResponse {
	out := make([]sensorResponse, 0, len(sensors))
	for _, s := range sensors {
		out = append(out, newSensorResponse(s))
	}
	return out
}
