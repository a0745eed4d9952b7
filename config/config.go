package config

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/toba/osm-router/cache"
	"github.com/toba/osm-router/logging"
	"github.com/toba/osm-router/mapping"
	"github.com/toba/osm-router/stats"
)

// Config is the content of the optional YAML config file.
type Config struct {
	CacheDir string `yaml:"cachedir"`
	Rules    string `yaml:"rules"`
	Metrics  string `yaml:"metrics"`
	Quiet    bool   `yaml:"quiet"`
	LRUSize  int    `yaml:"lrusize"`
}

const defaultCacheDir = "/tmp/osmrouter"

// Options are the options shared by all subcommands. Values from the
// command line win over values from the config file.
type Options struct {
	CacheDir   string
	RulesFile  string
	ConfigFile string
	Metrics    string
	Quiet      bool
	Verbose    bool
	LRUSize    int
}

// NewFlagSet returns a flag set for the subcommand name with all base
// options. Additional flags can be added before calling Parse.
func NewFlagSet(name string) (*flag.FlagSet, *Options) {
	opts := &Options{}
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.StringVar(&opts.CacheDir, "cachedir", defaultCacheDir, "cache directory")
	flags.StringVar(&opts.RulesFile, "rules", "", "polygon rules (yaml)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config (yaml)")
	flags.StringVar(&opts.Metrics, "metrics", "", "bind address for metrics and profile server")
	flags.BoolVar(&opts.Quiet, "quiet", false, "quiet log output")
	flags.BoolVar(&opts.Verbose, "verbose", false, "log skipped elements and debug output")
	flags.IntVar(&opts.LRUSize, "lrusize", cache.DefaultOptions.LRUSize, "number of cached elements per type")
	return flags, opts
}

// Parse parses args and fills all options that are not set on the command
// line from the config file.
func Parse(flags *flag.FlagSet, opts *Options, args []string) error {
	if err := flags.Parse(args); err != nil {
		return err
	}
	if opts.ConfigFile == "" {
		return opts.check()
	}

	conf, err := Load(opts.ConfigFile)
	if err != nil {
		return err
	}
	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["cachedir"] && conf.CacheDir != "" {
		opts.CacheDir = conf.CacheDir
	}
	if !set["rules"] && conf.Rules != "" {
		opts.RulesFile = conf.Rules
	}
	if !set["metrics"] && conf.Metrics != "" {
		opts.Metrics = conf.Metrics
	}
	if !set["quiet"] && conf.Quiet {
		opts.Quiet = true
	}
	if !set["lrusize"] && conf.LRUSize != 0 {
		opts.LRUSize = conf.LRUSize
	}
	return opts.check()
}

func (o *Options) check() error {
	if o.LRUSize < 0 {
		return errors.New("-lrusize must not be negative")
	}
	if o.CacheDir == "" {
		return errors.New("missing -cachedir")
	}
	return nil
}

// Load reads the YAML config file. Unknown keys are an error.
func Load(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening config")
	}
	defer f.Close()
	return parse(f, filename)
}

func parse(r io.Reader, name string) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", name)
	}
	conf := &Config{}
	if err := yaml.UnmarshalStrict(data, conf); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", name)
	}
	return conf, nil
}

// PolygonRules returns the rules from RulesFile, or the default rules.
func (o *Options) PolygonRules() (mapping.Rules, error) {
	if o.RulesFile == "" {
		return mapping.DefaultRules(), nil
	}
	return mapping.LoadRules(o.RulesFile)
}

// CacheOptions returns the options for cache.Open.
func (o *Options) CacheOptions() cache.Options {
	opts := cache.DefaultOptions
	opts.LRUSize = o.LRUSize
	return opts
}

// Usage prints the usage of a subcommand with its flags.
func Usage(flags *flag.FlagSet, args string) func() {
	return func() {
		fmt.Fprintf(flags.Output(), "Usage: %s %s [options] %s\n\n", os.Args[0], flags.Name(), args)
		flags.PrintDefaults()
	}
}

// Setup configures logging and starts the metrics server if requested.
func (o *Options) Setup() {
	logging.SetQuiet(o.Quiet)
	if o.Verbose {
		logging.SetLevel(logging.DEBUG)
	}
	if o.Metrics != "" {
		stats.StartHTTP(o.Metrics)
	}
}
