package services

import (
	"testing"

	"agro-collector/entities"
)

func ptr(v float64) *float64 { return &v }

func TestEvaluateThresholds(t *testing.T) {
	tests := []struct {
		name      string
		min, max  *float64
		value     float64
		wantBound Bound
	}{
		{"no thresholds", nil, nil, -1000, ""},
		{"below min", ptr(10), nil, 5, BoundMin},
		{"equal min", ptr(10), nil, 10, ""},
		{"above max", nil, ptr(100), 100.5, BoundMax},
		{"equal max", nil, ptr(100), 100, ""},
		{"inside range", ptr(10), ptr(100), 50, ""},
		{"inverted range reports min only", ptr(100), ptr(10), 50, BoundMin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sensor := &entities.Sensor{ThresholdMin: tt.min, ThresholdMax: tt.max}
			got := EvaluateThresholds(sensor, tt.value)
			if tt.wantBound == "" {
				if got != nil {
					t.Errorf("got violation %+v, want none", got)
				}
				return
			}
			if got == nil || got.Bound != tt.wantBound || got.Value != tt.value {
				t.Errorf("got %+v, want %s violation", got, tt.wantBound)
			}
		})
	}
}

func TestViolationMessage(t *testing.T) {
	tests := []struct {
		v    Violation
		want string
	}{
		{
			Violation{Bound: BoundMin, Value: 5, Threshold: 10},
			"Датчик «Почва 1»: значение 5 ниже минимального порога 10 на 5",
		},
		{
			Violation{Bound: BoundMax, Value: 31.2, Threshold: 30},
			"Датчик «Почва 1»: значение 31.2 выше максимального порога 30 на 1.2",
		},
		{
			Violation{Bound: BoundMin, Value: 0.1, Threshold: 0.3333},
			"Датчик «Почва 1»: значение 0.1 ниже минимального порога 0.3333 на 0.233",
		},
	}
	for _, tt := range tests {
		if got := tt.v.Message("Почва 1"); got != tt.want {
			t.Errorf("Message:\n got %q\nwant %q", got, tt.want)
		}
	}
}
