package chrisapp

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Options holds the parsed values of one invocation: the positional
// directories, the built-in control flags and the values of the plugin's own
// parameters.
type Options struct {
	// InputDir is only set for ds plugins.
	InputDir  string
	OutputDir string

	JSON           bool
	SaveJSON       string
	InputMeta      string
	SaveInputMeta  bool
	SaveOutputMeta bool
	Version        bool
	Meta           bool
	Verbosity      string
	Man            bool

	hasInputDir bool
	order       []string
	values      map[string]any
}

// Get returns the raw value of a declared parameter.
func (o *Options) Get(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// GetString returns the value of a str, path or unextpath parameter.
func (o *Options) GetString(name string) string {
	s, _ := o.values[name].(string)
	return s
}

// GetInt returns the value of an int parameter.
func (o *Options) GetInt(name string) int {
	i, _ := o.values[name].(int)
	return i
}

// GetFloat returns the value of a float parameter.
func (o *Options) GetFloat(name string) float64 {
	f, _ := o.values[name].(float64)
	return f
}

// GetBool returns the value of a bool parameter.
func (o *Options) GetBool(name string) bool {
	b, _ := o.values[name].(bool)
	return b
}

// GetPaths splits the value of a path or unextpath parameter into its
// elements. It returns nil when the parameter is empty or unset.
func (o *Options) GetPaths(name string) []string {
	s := o.GetString(name)
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// MarshalJSON renders the options as the flat object persisted to
// input.meta.json: control flags first, then the plugin's parameters in
// registration order. Unset string flags render as null so a replay can tell
// them apart from deliberately empty values. Key order is deterministic.
func (o *Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}
	nullable := func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}

	if o.hasInputDir {
		if err := write("inputdir", o.InputDir); err != nil {
			return nil, err
		}
	}
	fixed := []struct {
		key   string
		value any
	}{
		{"outputdir", o.OutputDir},
		{"json", o.JSON},
		{"savejson", nullable(o.SaveJSON)},
		{"inputmeta", nullable(o.InputMeta)},
		{"saveinputmeta", o.SaveInputMeta},
		{"saveoutputmeta", o.SaveOutputMeta},
		{"version", o.Version},
		{"meta", o.Meta},
		{"verbosity", o.Verbosity},
		{"man", o.Man},
	}
	for _, f := range fixed {
		if err := write(f.key, f.value); err != nil {
			return nil, err
		}
	}
	for _, name := range o.order {
		if err := write(name, o.values[name]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
