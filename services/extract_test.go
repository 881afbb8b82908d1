package services

import (
	"errors"
	"testing"
)

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantSource ReadingSource
		wantValue  float64
	}{
		{"bare integer", `42`, ReadingNumber, 42},
		{"bare float", ` 17.5 `, ReadingNumber, 17.5},
		{"value field", `{"value": 42}`, ReadingValueField, 42},
		{"reading field", `{"reading": -3.25}`, ReadingReadingField, -3.25},
		{"value wins over reading", `{"value": 1, "reading": 2}`, ReadingValueField, 1},
		{"null value falls through", `{"value": null, "reading": 2}`, ReadingReadingField, 2},
		{"string value is absent", `{"value": "42", "reading": 2}`, ReadingAbsent, 0},
		{"no known field", `{"temperature": 3}`, ReadingAbsent, 0},
		{"array", `[1, 2]`, ReadingAbsent, 0},
		{"string", `"12"`, ReadingAbsent, 0},
		{"null", `null`, ReadingAbsent, 0},
		{"bool", `true`, ReadingAbsent, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractValue([]byte(tt.body))
			if err != nil {
				t.Fatalf("ExtractValue(%s): %v", tt.body, err)
			}
			if got.Source != tt.wantSource {
				t.Errorf("source: got %v, want %v", got.Source, tt.wantSource)
			}
			v, ok := got.Value()
			if ok != (tt.wantSource != ReadingAbsent) || v != tt.wantValue {
				t.Errorf("value: got %v (ok=%v), want %v", v, ok, tt.wantValue)
			}
			if (got.Ptr() == nil) != (tt.wantSource == ReadingAbsent) {
				t.Errorf("Ptr: got %v", got.Ptr())
			}
		})
	}
}

func TestExtractValueMalformed(t *testing.T) {
	for _, body := range []string{``, `{`, `not json`, `1 2`, `{"value":1} x`} {
		if _, err := ExtractValue([]byte(body)); !errors.Is(err, ErrMalformedBody) {
			t.Errorf("ExtractValue(%q): got %v, want ErrMalformedBody", body, err)
		}
	}
}
