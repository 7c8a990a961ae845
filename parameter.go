package chrisapp

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ParamSpec is the declarative input to AddParameter.
type ParamSpec struct {
	// Name uniquely identifies the parameter within the app.
	Name string
	Type ParamType
	// Optional parameters must declare a non-nil Default; mandatory ones
	// must not.
	Optional bool
	// Flag is the long-form switch, e.g. "--dir".
	Flag string
	// ShortFlag is the optional single-letter switch, e.g. "-d".
	ShortFlag string
	Default   any
	Help      string
	// Hidden omits the parameter from operator-facing UIs. Only optional
	// parameters may be hidden.
	Hidden bool
}

// Parameter is the normalized, immutable record kept by the app and rendered
// into the descriptor. External callers can reconstruct a compatible command
// line from it.
type Parameter struct {
	Name      string    `json:"name"`
	Type      ParamType `json:"type"`
	Optional  bool      `json:"optional"`
	Flag      string    `json:"flag"`
	ShortFlag string    `json:"short_flag,omitempty"`
	Action    Action    `json:"action"`
	Help      string    `json:"help"`
	Default   any       `json:"default"`
	UIExposed bool      `json:"ui_exposed"`
}

// UnmarshalJSON decodes a parameter, coercing the default to the Go type
// implied by the declared parameter type (encoding/json alone would leave
// every number as float64).
func (p *Parameter) UnmarshalJSON(data []byte) error {
	type alias struct {
		Name      string          `json:"name"`
		Type      ParamType       `json:"type"`
		Optional  bool            `json:"optional"`
		Flag      string          `json:"flag"`
		ShortFlag string          `json:"short_flag"`
		Action    Action          `json:"action"`
		Help      string          `json:"help"`
		Default   json.RawMessage `json:"default"`
		UIExposed bool            `json:"ui_exposed"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	def, err := decodeDefault(a.Type, a.Default)
	if err != nil {
		return fmt.Errorf("parameter %q: %w", a.Name, err)
	}
	*p = Parameter{
		Name:      a.Name,
		Type:      a.Type,
		Optional:  a.Optional,
		Flag:      a.Flag,
		ShortFlag: a.ShortFlag,
		Action:    a.Action,
		Help:      a.Help,
		Default:   def,
		UIExposed: a.UIExposed,
	}
	return nil
}

func decodeDefault(t ParamType, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch t {
	case TypeString, TypePath, TypeUnextPath:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDefault, raw)
		}
		return s, nil
	case TypeInt:
		i, err := strconv.Atoi(string(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDefault, raw)
		}
		return i, nil
	case TypeFloat:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDefault, raw)
		}
		return f, nil
	case TypeBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDefault, raw)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

// coerceDefault normalizes a declared default to the canonical Go type for
// the parameter type. JSON-sourced ints arrive as float64, so integral
// floats are accepted for int parameters.
func coerceDefault(t ParamType, def any) (any, error) {
	switch t {
	case TypeString:
		if s, ok := def.(string); ok {
			return s, nil
		}
	case TypeInt:
		switch v := def.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v == float64(int(v)) {
				return int(v), nil
			}
		}
	case TypeFloat:
		switch v := def.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		}
	case TypeBool:
		if b, ok := def.(bool); ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %v (%T) does not match type %s", ErrInvalidDefault, def, def, t)
}
