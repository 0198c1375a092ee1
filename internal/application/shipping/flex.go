package shipping

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// FlexNumber is a numeric field that arrives as either a JSON number or
// a numeric string. Form frontends send both shapes.
type FlexNumber string

// UnmarshalJSON accepts `3`, `3.5`, `"3"` and `"3.5"`
func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexNumber(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = FlexNumber(n.String())
	return nil
}

// IntValue parses the value and truncates any fractional part, so
// "10.5" becomes 10. Empty values yield the fallback.
func (f FlexNumber) IntValue(fallback int) (int, error) {
	if f == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(string(f))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", string(f))
	}
	return int(d.IntPart()), nil
}
