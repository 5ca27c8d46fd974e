package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Number is an optional numeric field that accepts JSON numbers, numeric
// strings, empty strings, and null. An empty string means unset, never zero,
// so a cleared form input does not persist a 0.
type Number struct {
	Valid bool
	Value float64
}

func NewNumber(v float64) Number {
	return Number{Valid: true, Value: v}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = Number{}
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number{Valid: true, Value: f}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number{Valid: true, Value: f}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr returns the value as a float pointer, nil when unset. Repositories use
// this so unset numbers store NULL.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// FromPtr builds a Number from an optional float.
func FromPtr(p *float64) Number {
	if p == nil {
		return Number{}
	}
	return Number{Valid: true, Value: *p}
}

// String renders the value for rule evaluation ("" when unset).
func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}
