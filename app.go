// Package chrisapp is the base library for ChRIS plugin apps: self-describing
// command-line programs that declare typed parameters, publish a JSON
// descriptor and can replay a prior run from its recorded options.
package chrisapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Plugin is the contract a concrete plugin app fulfills. DefineParameters
// declares the plugin's parameters on the app; Run is invoked exactly once
// with the final options of the invocation.
type Plugin interface {
	DefineParameters(app *App) error
	Run(opts *Options) error
}

// ManPager is optionally implemented by plugins that ship their own man
// page, rendered by the --man flag.
type ManPager interface {
	ManPage() string
}

// Config carries the identity, execution and resource-limit fields of a
// plugin. Identity fields arrive as already-resolved strings; how they were
// obtained (hardcoded, package metadata, build info) is the plugin's
// business.
type Config struct {
	Authors       string
	Title         string
	Category      string
	Type          PluginType
	Description   string
	Documentation string
	License       string
	Version       string
	Icon          string

	// SelfPath/SelfExec/ExecShell tell an orchestrator how to invoke the
	// plugin inside its container or environment.
	SelfPath  string
	SelfExec  string
	ExecShell string

	MinNumberOfWorkers int
	MaxNumberOfWorkers int
	MinCPULimit        int // millicores
	MaxCPULimit        int
	MinMemoryLimit     int // megabytes
	MaxMemoryLimit     int
	MinGPULimit        int
	MaxGPULimit        int

	// OutputMeta is the static description of the outputs this plugin
	// produces, persisted verbatim by --saveoutputmeta.
	OutputMeta map[string]any
}

var requiredConfigFields = []struct {
	name  string
	value func(Config) string
}{
	{"Title", func(c Config) string { return c.Title }},
	{"Description", func(c Config) string { return c.Description }},
	{"License", func(c Config) string { return c.License }},
	{"SelfPath", func(c Config) string { return c.SelfPath }},
	{"SelfExec", func(c Config) string { return c.SelfExec }},
	{"ExecShell", func(c Config) string { return c.ExecShell }},
}

func (c Config) validate() error {
	var missing []string
	if c.Type == "" {
		missing = append(missing, "Type")
	} else if !c.Type.valid() {
		return fmt.Errorf("%w: unknown plugin type %q", ErrIncompleteConfig, c.Type)
	}
	for _, f := range requiredConfigFields {
		if f.value(c) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteConfig, strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.MinNumberOfWorkers == 0 {
		c.MinNumberOfWorkers = 1
	}
	if c.MaxNumberOfWorkers == 0 {
		c.MaxNumberOfWorkers = 1
	}
	if c.MinCPULimit == 0 {
		c.MinCPULimit = 1000
	}
	if c.MaxCPULimit == 0 {
		c.MaxCPULimit = math.MaxInt32
	}
	if c.MinMemoryLimit == 0 {
		c.MinMemoryLimit = 200
	}
	if c.MaxMemoryLimit == 0 {
		c.MaxMemoryLimit = math.MaxInt32
	}
}

// App owns the parameter registry and drives the lifecycle of one
// invocation. A process instantiates exactly one App and launches it once.
type App struct {
	cfg    Config
	plugin Plugin
	name   string
	reg    *registry
	opts   *Options
	log    *zap.SugaredLogger

	stdout io.Writer
	stderr io.Writer
	exit   func(code int)
}

// New validates the configuration, pre-registers the built-in parameters of
// the plugin type and runs the plugin's own parameter declarations.
func New(cfg Config, p Plugin) (*App, error) {
	if p == nil {
		return nil, errors.New("nil plugin")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	a := &App{
		cfg:    cfg,
		plugin: p,
		name:   pluginName(p),
		reg:    newRegistry(),
		log:    zap.NewNop().Sugar(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		exit:   os.Exit,
	}
	if cfg.Type == TSType {
		// ts plugins always present these first
		for _, spec := range tsParams {
			if _, err := a.reg.add(spec); err != nil {
				return nil, err
			}
		}
	}
	if err := p.DefineParameters(a); err != nil {
		return nil, err
	}
	return a, nil
}

// tsParams are auto-registered for every ts plugin, ahead of the plugin's
// own declarations.
var tsParams = []ParamSpec{
	{
		Name: "plugininstances", Type: TypeString, Optional: true,
		Flag: "--plugininstances", Default: "",
		Help: "comma-separated list of upstream plugin instance ids whose outputs this app consumes",
	},
	{
		Name: "filter", Type: TypeString, Optional: true,
		Flag: "--filter", Default: "",
		Help: "comma-separated list of regular expressions used to filter the upstream output paths",
	},
	{
		Name: "extractPaths", Type: TypeBool, Optional: true,
		Flag: "--extractPaths", Default: false,
		Help: "extract the matched paths instead of keeping the upstream directory layout",
	},
}

func pluginName(p Plugin) string {
	t := reflect.TypeOf(p)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return "ChrisApp"
}

// AddParameter validates, normalizes and registers one plugin parameter.
func (a *App) AddParameter(spec ParamSpec) error {
	_, err := a.reg.add(spec)
	return err
}

// Parameters returns the registered parameters in presentation order.
func (a *App) Parameters() []Parameter {
	return a.reg.parameters()
}

// newFlagSet builds a fresh flag set with the built-in control flags and
// every registered parameter. A fresh set per parse keeps replays from
// inheriting values of the live command line.
func (a *App) newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(a.name, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	fs.Bool("json", false, "show the app's JSON representation and exit")
	fs.String("savejson", "", "save the app's JSON representation to directory DIR and exit")
	fs.String("inputmeta", "", "JSON file with the options to run this app with")
	fs.Bool("saveinputmeta", false, "save the options passed to this app to <outputdir>/input.meta.json")
	fs.Bool("saveoutputmeta", false, "save the output meta dictionary to <outputdir>/output.meta.json")
	fs.Bool("version", false, "print the app's version and exit")
	fs.Bool("meta", false, "print the app's identity attributes and exit")
	fs.StringP("verbosity", "v", "0", "verbosity level of the app")
	fs.Bool("man", false, "show the app's man page and exit")
	for _, p := range a.reg.parameters() {
		installParameter(fs, p)
	}
	return fs
}

// parse consumes an argument vector into Options. Eager control flags
// bypass the required-parameter and positional checks so that, say, --json
// works on a bare invocation.
func (a *App) parse(args []string) (*Options, error) {
	fs := a.newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := &Options{values: make(map[string]any)}
	opts.JSON, _ = fs.GetBool("json")
	opts.SaveJSON, _ = fs.GetString("savejson")
	opts.InputMeta, _ = fs.GetString("inputmeta")
	opts.SaveInputMeta, _ = fs.GetBool("saveinputmeta")
	opts.SaveOutputMeta, _ = fs.GetBool("saveoutputmeta")
	opts.Version, _ = fs.GetBool("version")
	opts.Meta, _ = fs.GetBool("meta")
	opts.Verbosity, _ = fs.GetString("verbosity")
	opts.Man, _ = fs.GetBool("man")

	params := a.reg.parameters()
	for _, p := range params {
		opts.order = append(opts.order, p.Name)
		opts.values[p.Name] = paramValue(fs, p)
	}

	if opts.eager() {
		return opts, nil
	}

	for _, p := range params {
		if !p.Type.isPath() || !fs.Changed(longName(p.Flag)) {
			continue
		}
		normalized, err := normalizePathList(opts.values[p.Name].(string), p.Type == TypePath)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", p.Flag, err)
		}
		opts.values[p.Name] = normalized
	}

	var missing []string
	for _, p := range params {
		if !p.Optional && !fs.Changed(longName(p.Flag)) {
			missing = append(missing, p.Flag)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("the following options are required: %s", strings.Join(missing, ", "))
	}

	pos := fs.Args()
	want := 1
	positionals := "outputdir"
	if a.cfg.Type == DSType {
		want = 2
		positionals = "inputdir, outputdir"
	}
	if len(pos) < want {
		return nil, fmt.Errorf("missing required positional arguments (%s)", positionals)
	}
	if len(pos) > want {
		return nil, fmt.Errorf("unrecognized arguments: %s", strings.Join(pos[want:], " "))
	}
	if a.cfg.Type == DSType {
		opts.InputDir = pos[0]
		opts.OutputDir = pos[1]
		opts.hasInputDir = true
	} else {
		opts.OutputDir = pos[0]
	}
	return opts, nil
}

func (o *Options) eager() bool {
	return o.JSON || o.SaveJSON != "" || o.Version || o.Meta || o.Man
}

// Launch drives one invocation: parse, honor eager control flags, persist
// or substitute the input meta, run the plugin, persist the output meta.
// A nil args slice means the process argument vector.
func (a *App) Launch(args []string) error {
	if args == nil {
		args = os.Args[1:]
	}
	opts, err := a.parse(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(a.stdout, a.usageText())
			a.exit(0)
			return nil
		}
		a.usageError(err)
		return err
	}

	if opts.eager() {
		if err := a.runEager(opts); err != nil {
			return err
		}
		a.exit(0)
		return nil
	}

	a.opts = opts
	a.log = newLogger(opts.Verbosity, a.stderr)
	a.log.Debugw("options parsed", "outputdir", opts.OutputDir)

	if opts.SaveInputMeta {
		if err := a.saveInputMeta(opts); err != nil {
			return err
		}
		a.log.Debugw("input meta saved", "outputdir", opts.OutputDir)
	}

	if opts.InputMeta != "" {
		replay, err := a.optionsFromFile(opts.InputMeta)
		if err != nil {
			var pathErr *os.PathError
			if errors.Is(err, ErrMalformedMeta) || errors.As(err, &pathErr) {
				return err
			}
			// the synthetic vector violated the same constraints a live
			// command line is held to
			a.usageError(err)
			return err
		}
		file := opts.InputMeta
		opts = replay
		a.opts = replay
		// the replayed options carry their own verbosity
		a.log = newLogger(opts.Verbosity, a.stderr)
		a.log.Debugw("options replayed", "file", file)
	}

	if err := a.plugin.Run(opts); err != nil {
		return err
	}

	if opts.SaveOutputMeta {
		if err := a.saveOutputMeta(opts); err != nil {
			return err
		}
		a.log.Debugw("output meta saved", "outputdir", opts.OutputDir)
	}
	return nil
}

// runEager performs the single action of the first eager flag found, in
// fixed order: json, savejson, version, meta, man.
func (a *App) runEager(opts *Options) error {
	switch {
	case opts.JSON:
		data, err := json.Marshal(a.Descriptor())
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, string(data))
	case opts.SaveJSON != "":
		return a.SaveDescriptor(opts.SaveJSON)
	case opts.Version:
		fmt.Fprintln(a.stdout, a.cfg.Version)
	case opts.Meta:
		fmt.Fprint(a.stdout, a.metaText())
	case opts.Man:
		fmt.Fprint(a.stdout, a.manText())
	}
	return nil
}

// metaText renders the identity and resource-limit attributes the way the
// --meta flag prints them.
func (a *App) metaText() string {
	var b strings.Builder
	attrs := []struct {
		key   string
		value any
	}{
		{"AUTHORS", a.cfg.Authors},
		{"TITLE", a.cfg.Title},
		{"CATEGORY", a.cfg.Category},
		{"TYPE", string(a.cfg.Type)},
		{"DESCRIPTION", a.cfg.Description},
		{"DOCUMENTATION", a.cfg.Documentation},
		{"LICENSE", a.cfg.License},
		{"VERSION", a.cfg.Version},
		{"ICON", a.cfg.Icon},
		{"SELFPATH", a.cfg.SelfPath},
		{"SELFEXEC", a.cfg.SelfExec},
		{"EXECSHELL", a.cfg.ExecShell},
		{"MIN_NUMBER_OF_WORKERS", a.cfg.MinNumberOfWorkers},
		{"MAX_NUMBER_OF_WORKERS", a.cfg.MaxNumberOfWorkers},
		{"MIN_CPU_LIMIT", a.cfg.MinCPULimit},
		{"MAX_CPU_LIMIT", a.cfg.MaxCPULimit},
		{"MIN_MEMORY_LIMIT", a.cfg.MinMemoryLimit},
		{"MAX_MEMORY_LIMIT", a.cfg.MaxMemoryLimit},
		{"MIN_GPU_LIMIT", a.cfg.MinGPULimit},
		{"MAX_GPU_LIMIT", a.cfg.MaxGPULimit},
	}
	for _, attr := range attrs {
		fmt.Fprintf(&b, "%s: %v\n", attr.key, attr.value)
	}
	return b.String()
}

func (a *App) manText() string {
	if mp, ok := a.plugin.(ManPager); ok {
		page := mp.ManPage()
		if !strings.HasSuffix(page, "\n") {
			page += "\n"
		}
		return page
	}
	return a.usageText()
}

func (a *App) usageText() string {
	positionals := "outputdir"
	if a.cfg.Type == DSType {
		positionals = "inputdir outputdir"
	}
	return fmt.Sprintf("Usage: %s [flags] %s\n\n%s\n\nFlags:\n%s",
		a.cfg.SelfExec, positionals, a.cfg.Description, a.newFlagSet().FlagUsages())
}

// usageError reports a malformed command line to the operator and
// terminates with the reserved usage exit status.
func (a *App) usageError(err error) {
	fmt.Fprintf(a.stderr, "ERROR: %v\n\n", err)
	fmt.Fprint(a.stderr, a.usageText())
	a.exit(2)
}

// newLogger maps the informational verbosity flag onto log levels: 0 warn,
// 1 info, 2 and up debug.
func newLogger(verbosity string, w io.Writer) *zap.SugaredLogger {
	level := zapcore.WarnLevel
	if n, err := strconv.Atoi(verbosity); err == nil {
		switch {
		case n == 1:
			level = zapcore.InfoLevel
		case n >= 2:
			level = zapcore.DebugLevel
		}
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core).Sugar()
}
