package config

import (
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	flags, opts := NewFlagSet("stats")
	if err := Parse(flags, opts, []string{"a.osm", "b.osm"}); err != nil {
		t.Fatal(err)
	}
	if opts.CacheDir != defaultCacheDir || opts.Quiet || opts.LRUSize != 8192 {
		t.Errorf("unexpected defaults %+v", opts)
	}
	if args := flags.Args(); len(args) != 2 || args[0] != "a.osm" {
		t.Error(args)
	}
	rules, err := opts.PolygonRules()
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 26 {
		t.Error("default rules not used", len(rules))
	}
}

func TestConfigFile(t *testing.T) {
	flags, opts := NewFlagSet("cache")
	if err := Parse(flags, opts, []string{"-config", "testdata/config.yml", "x.osm"}); err != nil {
		t.Fatal(err)
	}
	expected := Options{
		CacheDir:   "/var/cache/osmrouter",
		RulesFile:  "../mapping/testdata/rules.yml",
		ConfigFile: "testdata/config.yml",
		Metrics:    "localhost:9090",
		Quiet:      true,
		LRUSize:    100,
	}
	if *opts != expected {
		t.Errorf("expected %+v, got %+v", expected, *opts)
	}
	if opts.CacheOptions().LRUSize != 100 {
		t.Error(opts.CacheOptions())
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	flags, opts := NewFlagSet("cache")
	err := Parse(flags, opts, []string{
		"-cachedir", "/tmp/other",
		"-lrusize", "0",
		"-config", "testdata/config.yml",
	})
	if err != nil {
		t.Fatal(err)
	}
	if opts.CacheDir != "/tmp/other" {
		t.Error(opts.CacheDir)
	}
	// explicitly set to the zero value, still wins
	if opts.LRUSize != 0 {
		t.Error(opts.LRUSize)
	}
	if opts.Metrics != "localhost:9090" {
		t.Error(opts.Metrics)
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := parse(strings.NewReader("cachedir: /tmp\nunknown: 1\n"), "test"); err == nil {
		t.Error("no error for unknown key")
	}
	if _, err := parse(strings.NewReader("lrusize: many\n"), "test"); err == nil {
		t.Error("no error for invalid value")
	}
	if _, err := Load("testdata/missing.yml"); err == nil {
		t.Error("no error for missing file")
	}
}

func TestCheck(t *testing.T) {
	flags, opts := NewFlagSet("cache")
	flags.SetOutput(&strings.Builder{})
	if err := Parse(flags, opts, []string{"-lrusize", "-1"}); err == nil {
		t.Error("no error for negative lrusize")
	}

	flags, opts = NewFlagSet("cache")
	flags.SetOutput(&strings.Builder{})
	if err := Parse(flags, opts, []string{"-unknown"}); err == nil {
		t.Error("no error for unknown flag")
	}
}
