package chrisapp

import (
	"fmt"
	"strings"
)

// Switches claimed by the built-in control flags that newFlagSet installs on
// every app; plugin parameters may not reuse them.
var (
	reservedLongFlags = []string{
		"json", "savejson", "inputmeta", "saveinputmeta", "saveoutputmeta",
		"version", "meta", "verbosity", "man",
	}
	reservedShortFlags = []string{"v"}
)

// registry validates and normalizes parameter declarations and keeps them in
// registration order, which is the presentation order of the descriptor.
type registry struct {
	params     []Parameter
	names      map[string]struct{}
	longFlags  map[string]struct{}
	shortFlags map[string]struct{}
}

func newRegistry() *registry {
	r := &registry{
		names:      make(map[string]struct{}),
		longFlags:  make(map[string]struct{}),
		shortFlags: make(map[string]struct{}),
	}
	for _, name := range reservedLongFlags {
		r.longFlags[name] = struct{}{}
	}
	for _, name := range reservedShortFlags {
		r.shortFlags[name] = struct{}{}
	}
	return r
}

func (r *registry) add(spec ParamSpec) (Parameter, error) {
	switch {
	case spec.Name == "":
		return Parameter{}, fmt.Errorf("%w: name", ErrMissingOption)
	case spec.Type == typeUnset:
		return Parameter{}, fmt.Errorf("%w: type (parameter %q)", ErrMissingOption, spec.Name)
	case spec.Flag == "":
		return Parameter{}, fmt.Errorf("%w: flag (parameter %q)", ErrMissingOption, spec.Name)
	}
	if !spec.Type.valid() {
		return Parameter{}, fmt.Errorf("%w: %s (parameter %q)", ErrUnsupportedType, spec.Type, spec.Name)
	}
	if _, dup := r.names[spec.Name]; dup {
		return Parameter{}, fmt.Errorf("%w: %q", ErrDuplicateParameter, spec.Name)
	}
	if !strings.HasPrefix(spec.Flag, "--") || len(spec.Flag) < 3 {
		return Parameter{}, fmt.Errorf("%w: %q is not a long-form switch", ErrInvalidFlag, spec.Flag)
	}
	if spec.ShortFlag != "" && (len(spec.ShortFlag) != 2 || !strings.HasPrefix(spec.ShortFlag, "-")) {
		return Parameter{}, fmt.Errorf("%w: short flag %q must look like \"-x\"", ErrInvalidFlag, spec.ShortFlag)
	}
	// the flag set would panic on a redefinition, so collisions with other
	// parameters or the built-in control flags are rejected here
	if _, taken := r.longFlags[longName(spec.Flag)]; taken {
		return Parameter{}, fmt.Errorf("%w: flag %q is already in use", ErrDuplicateParameter, spec.Flag)
	}
	if spec.ShortFlag != "" {
		if _, taken := r.shortFlags[longName(spec.ShortFlag)]; taken {
			return Parameter{}, fmt.Errorf("%w: short flag %q is already in use", ErrDuplicateParameter, spec.ShortFlag)
		}
	}

	if spec.Optional {
		if spec.Type.isPath() {
			return Parameter{}, fmt.Errorf("%w: parameter %q has type %s", ErrIncompatibleOptionalType, spec.Name, spec.Type)
		}
		if spec.Default == nil {
			return Parameter{}, fmt.Errorf("%w: optional parameter %q needs a default", ErrInvalidDefault, spec.Name)
		}
	} else {
		if spec.Hidden {
			return Parameter{}, fmt.Errorf("%w: parameter %q", ErrInvisibleMandatory, spec.Name)
		}
		if spec.Default != nil {
			return Parameter{}, fmt.Errorf("%w: only optional parameters may declare a default (parameter %q)", ErrInvalidDefault, spec.Name)
		}
	}

	def := spec.Default
	if def != nil {
		var err error
		if def, err = coerceDefault(spec.Type, def); err != nil {
			return Parameter{}, fmt.Errorf("parameter %q: %w", spec.Name, err)
		}
	}

	action := ActionStore
	if spec.Type == TypeBool {
		// supplying the flag always flips away from the default
		if def == true {
			action = ActionStoreFalse
		} else {
			action = ActionStoreTrue
		}
	}

	param := Parameter{
		Name:      spec.Name,
		Type:      spec.Type,
		Optional:  spec.Optional,
		Flag:      spec.Flag,
		ShortFlag: spec.ShortFlag,
		Action:    action,
		Help:      spec.Help,
		Default:   def,
		UIExposed: !spec.Hidden,
	}
	r.params = append(r.params, param)
	r.names[spec.Name] = struct{}{}
	r.longFlags[longName(spec.Flag)] = struct{}{}
	if spec.ShortFlag != "" {
		r.shortFlags[longName(spec.ShortFlag)] = struct{}{}
	}
	return param, nil
}

// parameters returns a copy of the registered parameters in registration
// order.
func (r *registry) parameters() []Parameter {
	return append([]Parameter(nil), r.params...)
}

// lookup returns the parameter registered under name.
func (r *registry) lookup(name string) (Parameter, bool) {
	if _, ok := r.names[name]; !ok {
		return Parameter{}, false
	}
	for _, p := range r.params {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}
