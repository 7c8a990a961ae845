package chrisapp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

const (
	inputMetaFile  = "input.meta.json"
	outputMetaFile = "output.meta.json"
)

// saveInputMeta records the full options of the current run, control flags
// included, so the run can later be replayed verbatim through --inputmeta.
func (a *App) saveInputMeta(opts *Options) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	path := filepath.Join(opts.OutputDir, inputMetaFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save input meta: %w", err)
	}
	return nil
}

// saveOutputMeta writes the plugin's static output meta dictionary to the
// output directory after the run completes.
func (a *App) saveOutputMeta(opts *Options) error {
	data, err := json.Marshal(a.cfg.OutputMeta)
	if err != nil {
		return err
	}
	path := filepath.Join(opts.OutputDir, outputMetaFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save output meta: %w", err)
	}
	return nil
}

// LoadOutputMeta reads <inputdir>/output.meta.json, the output description a
// predecessor plugin left behind. It can only be called once arguments have
// been parsed.
func (a *App) LoadOutputMeta() (map[string]any, error) {
	if a.opts == nil {
		return nil, fmt.Errorf("no parsed options: LoadOutputMeta must be called from Run")
	}
	path := filepath.Join(a.opts.InputDir, outputMetaFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read output meta: %w", err)
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedMeta, path, err)
	}
	return meta, nil
}

// flattenMeta turns a saved input-meta object back into an argument vector.
// Keys are visited in document order so a replay parses deterministically.
// The positional directories are re-appended as positionals, null values
// (unset string flags) are dropped, and every other scalar becomes a single
// --flag=value token. flagFor maps a key back to its long-form switch.
func flattenMeta(data []byte, flagFor func(key string) string) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformedMeta)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrMalformedMeta)
	}

	var argv []string
	var inputDir, outputDir *string
	var ferr error
	root.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		switch k {
		case "inputdir":
			s := value.String()
			inputDir = &s
			return true
		case "outputdir":
			s := value.String()
			outputDir = &s
			return true
		}
		switch value.Type {
		case gjson.Null:
			return true
		case gjson.True, gjson.False, gjson.Number:
			argv = append(argv, flagFor(k)+"="+value.Raw)
			return true
		case gjson.String:
			argv = append(argv, flagFor(k)+"="+value.String())
			return true
		default:
			ferr = fmt.Errorf("%w: key %q holds a non-scalar value", ErrMalformedMeta, k)
			return false
		}
	})
	if ferr != nil {
		return nil, ferr
	}
	if inputDir != nil {
		argv = append(argv, *inputDir)
	}
	if outputDir != nil {
		argv = append(argv, *outputDir)
	}
	return argv, nil
}

// optionsFromFile rehydrates the options of a prior run: the saved meta is
// flattened into a synthetic argument vector and run through the regular
// parser, so constraint checking applies exactly as on a live command line.
func (a *App) optionsFromFile(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input meta: %w", err)
	}
	argv, err := flattenMeta(data, func(key string) string {
		if p, ok := a.reg.lookup(key); ok {
			return p.Flag
		}
		return "--" + key
	})
	if err != nil {
		return nil, err
	}
	return a.parse(argv)
}
