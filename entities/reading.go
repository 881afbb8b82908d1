package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Keys of the last_reading object.
const (
	ReadingKeyEndpoint  = "api_url"
	ReadingKeyAPIKey    = "api_key"
	ReadingKeyMethod    = "api_method"
	ReadingKeyValue     = "value"
	ReadingKeyTimestamp = "timestamp"
)

// ReadingConfig is the decoded last_reading object. Unknown keys are kept as-is so a
// write-back never drops fields owned by other parts of the application.
type ReadingConfig map[string]any

func ParseReadingConfig(raw datatypes.JSON) (ReadingConfig, error) {
	cfg := ReadingConfig{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return cfg, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("invalid last_reading: %w", err)
	}
	return cfg, nil
}

// Endpoint returns the configured URL, or "" when it is missing, null or not a string.
func (c ReadingConfig) Endpoint() string {
	s, _ := c[ReadingKeyEndpoint].(string)
	return strings.TrimSpace(s)
}

func (c ReadingConfig) APIKey() string {
	s, _ := c[ReadingKeyAPIKey].(string)
	return strings.TrimSpace(s)
}

// Method defaults to GET.
func (c ReadingConfig) Method() string {
	s, _ := c[ReadingKeyMethod].(string)
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "GET"
	}
	return s
}

func (c ReadingConfig) Value() (float64, bool) {
	switch v := c[ReadingKeyValue].(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func (c ReadingConfig) Timestamp() (time.Time, bool) {
	s, ok := c[ReadingKeyTimestamp].(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (c ReadingConfig) clone() ReadingConfig {
	out := make(ReadingConfig, len(c)+2)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// WithReading returns a copy with value and timestamp overwritten. A nil value is stored as null.
func (c ReadingConfig) WithReading(value *float64, ts time.Time) ReadingConfig {
	out := c.clone()
	if value != nil {
		out[ReadingKeyValue] = *value
	} else {
		out[ReadingKeyValue] = nil
	}
	out[ReadingKeyTimestamp] = ts.UTC().Format(time.RFC3339Nano)
	return out
}

// WithEndpoint returns a copy with the fetch configuration replaced. Empty key or method
// removes the corresponding entry; value and timestamp are left alone.
func (c ReadingConfig) WithEndpoint(url, apiKey, method string) ReadingConfig {
	out := c.clone()
	if url == "" {
		out[ReadingKeyEndpoint] = nil
	} else {
		out[ReadingKeyEndpoint] = url
	}
	if apiKey == "" {
		delete(out, ReadingKeyAPIKey)
	} else {
		out[ReadingKeyAPIKey] = apiKey
	}
	if method == "" {
		delete(out, ReadingKeyMethod)
	} else {
		out[ReadingKeyMethod] = strings.ToUpper(method)
	}
	return out
}

func (c ReadingConfig) JSON() (datatypes.JSON, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
