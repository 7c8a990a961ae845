package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FNNDSC/chrisapp"
)

func testDescriptor() chrisapp.Descriptor {
	return chrisapp.Descriptor{
		Type:  chrisapp.DSType,
		Title: "Dir counter",
		Parameters: []chrisapp.Parameter{
			{
				Name: "pattern", Type: chrisapp.TypeString, Optional: true,
				Flag: "--pattern", Action: chrisapp.ActionStore,
				Help: "glob applied to the input files", Default: "*",
				UIExposed: true,
			},
			{
				Name: "dirs", Type: chrisapp.TypePath,
				Flag: "--dirs", Action: chrisapp.ActionStore,
				UIExposed: true,
			},
		},
		Authors:            "FNNDSC (dev@babyMRI.org)",
		Description:        "Counts files",
		License:            "MIT",
		Version:            "1.0.0",
		SelfPath:           "/usr/local/bin",
		SelfExec:           "dircount",
		ExecShell:          "/bin/sh",
		MinNumberOfWorkers: 1,
		MaxNumberOfWorkers: 1,
		MinCPULimit:        1000,
		MaxCPULimit:        2000,
		MinMemoryLimit:     200,
		MaxMemoryLimit:     512,
	}
}

func writeDescriptor(t *testing.T, d chrisapp.Descriptor) string {
	t.Helper()
	data, err := json.Marshal(d)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "Descriptor.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand("test", "none", "unknown")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	good := writeDescriptor(t, testDescriptor())
	out, err := runCommand(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "✅")

	bad := testDescriptor()
	bad.Parameters[0].Default = nil
	badPath := writeDescriptor(t, bad)
	out, err = runCommand(t, "validate", badPath)
	require.Error(t, err)
	assert.Contains(t, out, "❌")
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, err := runCommand(t, "validate", "/no/such/descriptor.json")
	assert.Error(t, err)
}

func TestShowCommand(t *testing.T) {
	path := writeDescriptor(t, testDescriptor())
	out, err := runCommand(t, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Dir counter")
	assert.Contains(t, out, "pattern")
	assert.Contains(t, out, "dirs")
	assert.Contains(t, out, "Parameters (2)")
}

func TestBrowseModelNavigation(t *testing.T) {
	m := newBrowseModel(testDescriptor())
	assert.Equal(t, 0, m.selectedRow)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = next.(browseModel)
	assert.Equal(t, 1, m.selectedRow)

	// clamped at the last parameter
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = next.(browseModel)
	assert.Equal(t, 1, m.selectedRow)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = next.(browseModel)
	assert.Equal(t, 0, m.selectedRow)

	view := m.View()
	assert.Contains(t, view, "pattern")
	assert.Contains(t, view, "Dir counter")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
}
