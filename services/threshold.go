package services

import (
	"fmt"
	"math"
	"strconv"

	"agro-collector/entities"
)

const NotificationTitle = "⚠️ Предупреждение по датчику"

type Bound string

const (
	BoundMin Bound = "min"
	BoundMax Bound = "max"
)

// Violation describes a reading outside the sensor's [min, max] range.
type Violation struct {
	Bound     Bound
	Value     float64
	Threshold float64
}

func (v Violation) Margin() float64 {
	return math.Round(math.Abs(v.Value-v.Threshold)*1000) / 1000
}

func (v Violation) Message(sensorName string) string {
	if v.Bound == BoundMin {
		return fmt.Sprintf("Датчик «%s»: значение %s ниже минимального порога %s на %s",
			sensorName, formatNumber(v.Value), formatNumber(v.Threshold), formatNumber(v.Margin()))
	}
	return fmt.Sprintf("Датчик «%s»: значение %s выше максимального порога %s на %s",
		sensorName, formatNumber(v.Value), formatNumber(v.Threshold), formatNumber(v.Margin()))
}

// EvaluateThresholds compares strictly: a value equal to a bound is in range.
// The minimum is checked first, so a misconfigured range reports at most one violation.
func EvaluateThresholds(sensor *entities.Sensor, value float64) *Violation {
	if sensor.ThresholdMin != nil && value < *sensor.ThresholdMin {
		return &Violation{Bound: BoundMin, Value: value, Threshold: *sensor.ThresholdMin}
	}
	if sensor.ThresholdMax != nil && value > *sensor.ThresholdMax {
		return &Violation{Bound: BoundMax, Value: value, Threshold: *sensor.ThresholdMax}
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
