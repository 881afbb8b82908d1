package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ReadingSource tells where in a response body the numeric value was found.
type ReadingSource int

const (
	ReadingAbsent ReadingSource = iota
	ReadingNumber
	ReadingValueField
	ReadingReadingField
)

func (s ReadingSource) String() string {
	switch s {
	case ReadingNumber:
		return "number"
	case ReadingValueField:
		return "value"
	case ReadingReadingField:
		return "reading"
	default:
		return "absent"
	}
}

// ExtractedReading is the parsed form of a sensor response.
type ExtractedReading struct {
	Source ReadingSource
	value  float64
}

func (r ExtractedReading) Value() (float64, bool) {
	return r.value, r.Source != ReadingAbsent
}

// Ptr returns nil when no value was found.
func (r ExtractedReading) Ptr() *float64 {
	if r.Source == ReadingAbsent {
		return nil
	}
	v := r.value
	return &v
}

// objectFields is checked in order; the first field that is present and non-null decides.
var objectFields = []struct {
	key    string
	source ReadingSource
}{
	{"value", ReadingValueField},
	{"reading", ReadingReadingField},
}

var ErrMalformedBody = errors.New("response body is not valid JSON")

// ExtractValue parses a sensor response: a bare number, else the "value" field, else the
// "reading" field. Anything else yields an absent reading; invalid JSON is an error.
func ExtractValue(body []byte) (ExtractedReading, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return ExtractedReading{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if dec.More() {
		return ExtractedReading{}, fmt.Errorf("%w: trailing data", ErrMalformedBody)
	}

	switch v := doc.(type) {
	case json.Number:
		return numberReading(v, ReadingNumber), nil
	case map[string]interface{}:
		for _, field := range objectFields {
			raw, ok := v[field.key]
			if !ok || raw == nil {
				continue
			}
			if n, ok := raw.(json.Number); ok {
				return numberReading(n, field.source), nil
			}
			return ExtractedReading{}, nil
		}
	}
	return ExtractedReading{}, nil
}

func numberReading(n json.Number, source ReadingSource) ExtractedReading {
	f, err := n.Float64()
	if err != nil {
		return ExtractedReading{}
	}
	return ExtractedReading{Source: source, value: f}
}
