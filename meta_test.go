package chrisapp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLaunch_SaveInputMeta(t *testing.T) {
	outputDir := t.TempDir()
	h := newHarness(t, testConfig(DSType), &testPlugin{})
	require.NoError(t, h.app.Launch([]string{"./", outputDir, "--saveinputmeta"}))

	data, err := os.ReadFile(filepath.Join(outputDir, "input.meta.json"))
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(data, &meta))

	assert.Equal(t, map[string]any{
		"inputdir":       "./",
		"outputdir":      outputDir,
		"json":           false,
		"savejson":       nil,
		"inputmeta":      nil,
		"saveinputmeta":  true,
		"saveoutputmeta": false,
		"version":        false,
		"meta":           false,
		"verbosity":      "0",
		"man":            false,
	}, meta)
}

// A saved input meta fed back through --inputmeta must reproduce the
// original run's options exactly.
func TestLaunch_InputMetaReplay(t *testing.T) {
	newPlugin := func() *testPlugin {
		return &testPlugin{params: []ParamSpec{
			{Name: "dir", Type: TypeString, Optional: true, Flag: "--dir", Default: "./"},
			{Name: "count", Type: TypeInt, Optional: true, Flag: "--count", Default: 1},
			{Name: "flag", Type: TypeBool, Optional: true, Flag: "--flag", Default: false},
		}}
	}

	outputDir := t.TempDir()
	first := newHarness(t, testConfig(DSType), newPlugin())
	require.NoError(t, first.app.Launch([]string{
		"./", outputDir, "--saveinputmeta", "--dir", "/tmp", "--count", "5", "--flag",
	}))
	require.Equal(t, 1, first.plugin.runs)

	metaPath := filepath.Join(outputDir, "input.meta.json")
	second := newHarness(t, testConfig(DSType), newPlugin())
	require.NoError(t, second.app.Launch([]string{
		"./", t.TempDir(), "--inputmeta", metaPath,
	}))
	require.Equal(t, 1, second.plugin.runs)

	replayed := second.plugin.gotOpts
	assert.Equal(t, first.plugin.gotOpts, replayed)
	assert.Equal(t, "/tmp", replayed.GetString("dir"))
	assert.Equal(t, 5, replayed.GetInt("count"))
	assert.True(t, replayed.GetBool("flag"))
	assert.Equal(t, outputDir, replayed.OutputDir)
}

// The saved verbosity must drive the logger of the replayed run, not the
// verbosity of the live command line.
func TestLaunch_InputMetaReplayVerbosity(t *testing.T) {
	outputDir := t.TempDir()
	first := newHarness(t, testConfig(DSType), &testPlugin{})
	require.NoError(t, first.app.Launch([]string{
		"./", outputDir, "--saveinputmeta", "--verbosity", "2",
	}))

	second := newHarness(t, testConfig(DSType), &testPlugin{})
	require.NoError(t, second.app.Launch([]string{
		"./", t.TempDir(), "--inputmeta", filepath.Join(outputDir, "input.meta.json"),
	}))
	assert.Equal(t, "2", second.plugin.gotOpts.Verbosity)
	assert.True(t, second.app.log.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestLaunch_InputMetaMissingFile(t *testing.T) {
	h := newHarness(t, testConfig(DSType), &testPlugin{})
	err := h.app.Launch([]string{"./", t.TempDir(), "--inputmeta", "/no/such/file.json"})
	require.Error(t, err)
	assert.Zero(t, h.plugin.runs)
}

func TestLaunch_InputMetaMalformed(t *testing.T) {
	metaPath := filepath.Join(t.TempDir(), "input.meta.json")
	require.NoError(t, os.WriteFile(metaPath, []byte("{not json"), 0o644))

	h := newHarness(t, testConfig(DSType), &testPlugin{})
	err := h.app.Launch([]string{"./", t.TempDir(), "--inputmeta", metaPath})
	require.ErrorIs(t, err, ErrMalformedMeta)
	assert.Zero(t, h.plugin.runs)
}

func TestLaunch_SaveOutputMeta(t *testing.T) {
	outputDir := t.TempDir()
	cfg := testConfig(DSType)
	h := newHarness(t, cfg, &testPlugin{})
	require.NoError(t, h.app.Launch([]string{"./", outputDir, "--saveoutputmeta"}))
	require.Equal(t, 1, h.plugin.runs)

	data, err := os.ReadFile(filepath.Join(outputDir, "output.meta.json"))
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, map[string]any{"kind": "files", "ext": ".txt"}, meta)
}

func TestLoadOutputMeta_RoundTrip(t *testing.T) {
	shared := t.TempDir()

	producer := newHarness(t, testConfig(DSType), &testPlugin{})
	require.NoError(t, producer.app.Launch([]string{"./", shared, "--saveoutputmeta"}))

	consumer := newHarness(t, testConfig(DSType), &testPlugin{})
	require.NoError(t, consumer.app.Launch([]string{shared, t.TempDir()}))

	meta, err := consumer.app.LoadOutputMeta()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"kind": "files", "ext": ".txt"}, meta)
}

func TestLoadOutputMeta_Errors(t *testing.T) {
	h := newHarness(t, testConfig(DSType), &testPlugin{})

	// before any parse
	_, err := h.app.LoadOutputMeta()
	assert.Error(t, err)

	inputDir := t.TempDir()
	require.NoError(t, h.app.Launch([]string{inputDir, t.TempDir()}))

	// absent file
	_, err = h.app.LoadOutputMeta()
	assert.Error(t, err)

	// malformed file
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "output.meta.json"), []byte("]["), 0o644))
	_, err = h.app.LoadOutputMeta()
	assert.ErrorIs(t, err, ErrMalformedMeta)
}

func TestFlattenMeta(t *testing.T) {
	flagFor := func(key string) string { return "--" + key }

	t.Run("document order and positionals", func(t *testing.T) {
		argv, err := flattenMeta([]byte(
			`{"b":"two","a":1,"inputdir":"/in","outputdir":"/out","skip":null,"on":true,"ratio":2.5}`,
		), flagFor)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"--b=two", "--a=1", "--on=true", "--ratio=2.5", "/in", "/out",
		}, argv)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := flattenMeta([]byte("{oops"), flagFor)
		assert.ErrorIs(t, err, ErrMalformedMeta)
	})

	t.Run("non-object", func(t *testing.T) {
		_, err := flattenMeta([]byte(`["a","b"]`), flagFor)
		assert.ErrorIs(t, err, ErrMalformedMeta)
	})

	t.Run("nested value", func(t *testing.T) {
		_, err := flattenMeta([]byte(`{"x":{"y":1}}`), flagFor)
		assert.ErrorIs(t, err, ErrMalformedMeta)
	})
}
