package chrisapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_TypedGetters(t *testing.T) {
	opts := &Options{values: map[string]any{
		"dir":   "/tmp",
		"count": 7,
		"ratio": 1.5,
		"flag":  true,
		"dirs":  "/a,/b",
		"empty": "",
	}}

	assert.Equal(t, "/tmp", opts.GetString("dir"))
	assert.Equal(t, 7, opts.GetInt("count"))
	assert.Equal(t, 1.5, opts.GetFloat("ratio"))
	assert.True(t, opts.GetBool("flag"))
	assert.Equal(t, []string{"/a", "/b"}, opts.GetPaths("dirs"))
	assert.Nil(t, opts.GetPaths("empty"))
	assert.Nil(t, opts.GetPaths("nope"))

	// type-mismatched or unknown lookups fall back to zero values
	assert.Zero(t, opts.GetInt("dir"))
	assert.Empty(t, opts.GetString("count"))

	v, ok := opts.Get("count")
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	_, ok = opts.Get("nope")
	assert.False(t, ok)
}

func TestOptions_MarshalJSONDeterministic(t *testing.T) {
	plugin := &testPlugin{params: []ParamSpec{
		{Name: "dir", Type: TypeString, Optional: true, Flag: "--dir", Default: "./"},
		{Name: "flag", Type: TypeBool, Optional: true, Flag: "--flag", Default: false},
	}}
	h := newHarness(t, testConfig(DSType), plugin)

	opts, err := h.app.parse([]string{"in", "out", "--flag"})
	require.NoError(t, err)

	data, err := opts.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"inputdir":"in","outputdir":"out","json":false,"savejson":null,`+
			`"inputmeta":null,"saveinputmeta":false,"saveoutputmeta":false,`+
			`"version":false,"meta":false,"verbosity":"0","man":false,`+
			`"dir":"./","flag":true}`,
		string(data))
}

func TestOptions_MarshalJSONOmitsInputDirForSourcePlugins(t *testing.T) {
	h := newHarness(t, testConfig(FSType), &testPlugin{})
	opts, err := h.app.parse([]string{"out"})
	require.NoError(t, err)

	data, err := opts.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"inputdir"`)
	assert.Contains(t, string(data), `"outputdir":"out"`)
}
