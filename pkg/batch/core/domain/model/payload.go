package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Payload is a structured JSON document stored in a single column, such as a master
// configuration or the parameters of one job.
type Payload map[string]interface{}

// Value implements the `driver.Valuer` interface, converting the Payload to a JSON string.
func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the `sql.Scanner` interface, converting a JSON document to a Payload.
func (p *Payload) Scan(value interface{}) error {
	if value == nil {
		*p = make(Payload)
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported Scan type for Payload: %T", value)
	}

	if len(b) == 0 {
		*p = make(Payload)
		return nil
	}

	decoded := make(Payload)
	if err := json.Unmarshal(b, &decoded); err != nil {
		return fmt.Errorf("failed to unmarshal Payload JSON: %w", err)
	}
	*p = decoded
	return nil
}

// Clone returns a deep copy of the payload by round-tripping it through JSON.
func (p Payload) Clone() (Payload, error) {
	if p == nil {
		return Payload{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	out := make(Payload)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetString returns the string value stored under key, or "" when absent or not a string.
func (p Payload) GetString(key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}
