package chrisapp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Descriptor is the machine-readable self-description of a plugin: identity,
// execution and resource-limit fields plus the declared parameters in
// presentation order. It is computed on demand and never stored.
type Descriptor struct {
	Type               PluginType  `json:"type"`
	Parameters         []Parameter `json:"parameters"`
	Icon               string      `json:"icon"`
	Authors            string      `json:"authors"`
	Title              string      `json:"title"`
	Category           string      `json:"category"`
	Description        string      `json:"description"`
	Documentation      string      `json:"documentation"`
	License            string      `json:"license"`
	Version            string      `json:"version"`
	SelfPath           string      `json:"selfpath"`
	SelfExec           string      `json:"selfexec"`
	ExecShell          string      `json:"execshell"`
	MinNumberOfWorkers int         `json:"min_number_of_workers"`
	MaxNumberOfWorkers int         `json:"max_number_of_workers"`
	MinCPULimit        int         `json:"min_cpu_limit"`
	MaxCPULimit        int         `json:"max_cpu_limit"`
	MinMemoryLimit     int         `json:"min_memory_limit"`
	MaxMemoryLimit     int         `json:"max_memory_limit"`
	MinGPULimit        int         `json:"min_gpu_limit"`
	MaxGPULimit        int         `json:"max_gpu_limit"`
}

// Descriptor assembles the self-description from the app configuration and
// the current parameter list. Calling it repeatedly yields identical output
// as long as no parameters are added in between.
func (a *App) Descriptor() Descriptor {
	return Descriptor{
		Type:               a.cfg.Type,
		Parameters:         a.reg.parameters(),
		Icon:               a.cfg.Icon,
		Authors:            a.cfg.Authors,
		Title:              a.cfg.Title,
		Category:           a.cfg.Category,
		Description:        a.cfg.Description,
		Documentation:      a.cfg.Documentation,
		License:            a.cfg.License,
		Version:            a.cfg.Version,
		SelfPath:           a.cfg.SelfPath,
		SelfExec:           a.cfg.SelfExec,
		ExecShell:          a.cfg.ExecShell,
		MinNumberOfWorkers: a.cfg.MinNumberOfWorkers,
		MaxNumberOfWorkers: a.cfg.MaxNumberOfWorkers,
		MinCPULimit:        a.cfg.MinCPULimit,
		MaxCPULimit:        a.cfg.MaxCPULimit,
		MinMemoryLimit:     a.cfg.MinMemoryLimit,
		MaxMemoryLimit:     a.cfg.MaxMemoryLimit,
		MinGPULimit:        a.cfg.MinGPULimit,
		MaxGPULimit:        a.cfg.MaxGPULimit,
	}
}

// SaveDescriptor serializes the descriptor as UTF-8 JSON to
// <dir>/<PluginName>.json.
func (a *App) SaveDescriptor(dir string) error {
	data, err := json.Marshal(a.Descriptor())
	if err != nil {
		return err
	}
	path := filepath.Join(dir, a.name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save descriptor: %w", err)
	}
	return nil
}

// ReadDescriptor loads and decodes a descriptor file previously written by
// SaveDescriptor (or by the --savejson flag).
func ReadDescriptor(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to read descriptor: %w", err)
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("failed to decode descriptor %s: %w", path, err)
	}
	return d, nil
}

// Validate re-checks the registration invariants on a decoded descriptor,
// so that externally produced descriptor files can be vetted without
// instantiating the plugin.
func (d Descriptor) Validate() error {
	if !d.Type.valid() {
		return fmt.Errorf("%w: plugin type %q", ErrUnsupportedType, d.Type)
	}
	reg := newRegistry()
	for _, p := range d.Parameters {
		norm, err := reg.add(ParamSpec{
			Name:      p.Name,
			Type:      p.Type,
			Optional:  p.Optional,
			Flag:      p.Flag,
			ShortFlag: p.ShortFlag,
			Default:   p.Default,
			Help:      p.Help,
			Hidden:    !p.UIExposed,
		})
		if err != nil {
			return err
		}
		if norm.Action != p.Action {
			return fmt.Errorf("parameter %q: action %q does not match declared default (want %q)",
				p.Name, p.Action, norm.Action)
		}
	}
	return nil
}
