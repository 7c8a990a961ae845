package chrisapp

import "errors"

// Parameter registration errors. All of them are raised synchronously while
// the plugin declares its parameters, before any command line is parsed.
var (
	ErrMissingOption            = errors.New("missing parameter option")
	ErrUnsupportedType          = errors.New("unsupported parameter type")
	ErrInvalidDefault           = errors.New("invalid parameter default")
	ErrIncompatibleOptionalType = errors.New("path parameters cannot be optional")
	ErrInvisibleMandatory       = errors.New("mandatory parameters cannot be hidden from the UI")
	ErrDuplicateParameter       = errors.New("duplicate parameter name")
	ErrInvalidFlag              = errors.New("invalid parameter flag")
)

// Parse and meta file errors.
var (
	// ErrPathNotFound is returned when a value of a "path" parameter names a
	// path that does not exist at parse time.
	ErrPathNotFound = errors.New("path not found")

	// ErrMalformedMeta is returned when an input/output meta file does not
	// contain the expected flat JSON object.
	ErrMalformedMeta = errors.New("malformed meta JSON")
)

// ErrIncompleteConfig is returned by New when a required identity field of
// the plugin configuration is missing.
var ErrIncompleteConfig = errors.New("incomplete plugin configuration")
