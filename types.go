package chrisapp

import (
	"encoding/json"
	"fmt"
)

// PluginType tags what a plugin consumes and produces.
type PluginType string

const (
	// FSType plugins synthesize data; they only take an output directory.
	FSType PluginType = "fs"
	// DSType plugins transform the contents of an input directory into an
	// output directory.
	DSType PluginType = "ds"
	// TSType plugins join the outputs of named upstream plugin instances;
	// like fs plugins they only take an output directory.
	TSType PluginType = "ts"
)

func (t PluginType) valid() bool {
	switch t {
	case FSType, DSType, TSType:
		return true
	}
	return false
}

// ParamType is the closed set of value types a plugin parameter may declare.
// The zero value is invalid so that an unset Type in a ParamSpec is
// detectable at registration time.
type ParamType int

const (
	typeUnset ParamType = iota
	TypeString
	TypeInt
	TypeFloat
	TypeBool
	// TypePath holds a comma-separated list of paths; every element must
	// exist on the file system when arguments are parsed.
	TypePath
	// TypeUnextPath holds a comma-separated list of paths that is normalized
	// but never checked for existence.
	TypeUnextPath
)

// The wire names are fixed; they must never be derived from Go type names.
var paramTypeNames = map[ParamType]string{
	TypeString:    "str",
	TypeInt:       "int",
	TypeFloat:     "float",
	TypeBool:      "bool",
	TypePath:      "path",
	TypeUnextPath: "unextpath",
}

var paramTypesByName = map[string]ParamType{
	"str":       TypeString,
	"int":       TypeInt,
	"float":     TypeFloat,
	"bool":      TypeBool,
	"path":      TypePath,
	"unextpath": TypeUnextPath,
}

func (t ParamType) valid() bool {
	_, ok := paramTypeNames[t]
	return ok
}

func (t ParamType) isPath() bool {
	return t == TypePath || t == TypeUnextPath
}

func (t ParamType) String() string {
	if name, ok := paramTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("paramtype(%d)", int(t))
}

func (t ParamType) MarshalJSON() ([]byte, error) {
	name, ok := paramTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return json.Marshal(name)
}

func (t *ParamType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	pt, ok := paramTypesByName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, name)
	}
	*t = pt
	return nil
}

// Action mirrors the argument engine's behavior for a parameter: plain value
// storage or a boolean toggle whose polarity is the negation of the default.
type Action string

const (
	ActionStore      Action = "store"
	ActionStoreTrue  Action = "store_true"
	ActionStoreFalse Action = "store_false"
)
