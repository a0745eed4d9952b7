/*
Package import_ provides the cache sub command. It parses OSM XML files and
stores all elements in the cache.
*/
package import_

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/toba/osm-router/cache"
	"github.com/toba/osm-router/config"
	"github.com/toba/osm-router/logging"
	"github.com/toba/osm-router/parser"
	"github.com/toba/osm-router/stats"
)

var log = logging.NewLogger("")

// Import runs the cache sub command with args.
func Import(ctx context.Context, args []string) error {
	flags, opts := config.NewFlagSet("cache")
	flags.Usage = config.Usage(flags, "FILE [FILE...]")
	overwrite := flags.Bool("overwritecache", false, "remove existing cache before import")
	appendc := flags.Bool("appendcache", false, "add elements to existing cache")
	if err := config.Parse(flags, opts, args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("missing input file")
	}
	if *overwrite && *appendc {
		return errors.New("-overwritecache and -appendcache are not compatible")
	}
	opts.Setup()

	exists, err := cacheExists(opts.CacheDir)
	if err != nil {
		return err
	}
	if exists {
		switch {
		case *overwrite:
			log.Printf("removing existing cache %s", opts.CacheDir)
			if err := os.RemoveAll(opts.CacheDir); err != nil {
				return errors.Wrap(err, "removing cache")
			}
		case *appendc:
			log.Printf("appending to existing cache %s", opts.CacheDir)
		default:
			return errors.Errorf("cache %s already exists, use -appendcache or -overwritecache", opts.CacheDir)
		}
	}

	store, err := cache.Open(opts.CacheDir, opts.CacheOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	rules, err := opts.PolygonRules()
	if err != nil {
		return err
	}

	for _, filename := range flags.Args() {
		summary := stats.NewSummary(filename)
		step := log.StartStep("Reading " + filename)
		doc, err := parser.ParseFile(ctx, filename, parser.Config{Skipped: SkipLogger(filename, summary)})
		log.StopStep(step)
		if err != nil {
			return err
		}
		step = log.StartStep("Writing " + filename + " to cache")
		err = store.PutDocument(doc)
		log.StopStep(step)
		if err != nil {
			return errors.Wrapf(err, "caching %s", filename)
		}
		summary.Count(doc, rules)
		log.Printf("%s", summary)
	}
	return nil
}

func cacheExists(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "checking cache dir")
	}
	return len(entries) > 0, nil
}

// SkipLogger returns a parser.Config.Skipped callback that counts skipped
// elements in summary and logs them with DEBUG level.
func SkipLogger(name string, summary *stats.Summary) func(error) {
	return func(err error) {
		var perr *parser.Error
		if errors.As(err, &perr) {
			summary.AddSkipped(perr.Kind.String())
		}
		log.Debugf("%s: skipped %v", name, err)
	}
}
