package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	osmrouter "github.com/toba/osm-router"
	"github.com/toba/osm-router/cache/query"
	"github.com/toba/osm-router/config"
	"github.com/toba/osm-router/convert"
	"github.com/toba/osm-router/element"
	"github.com/toba/osm-router/import_"
	"github.com/toba/osm-router/logging"
	"github.com/toba/osm-router/mapping"
	"github.com/toba/osm-router/parser"
	"github.com/toba/osm-router/route"
	"github.com/toba/osm-router/stats"
)

var log = logging.NewLogger("")

func PrintCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Available commands:")
	fmt.Fprintln(os.Stderr, "\tstats")
	fmt.Fprintln(os.Stderr, "\tcache")
	fmt.Fprintln(os.Stderr, "\tquery-cache")
	fmt.Fprintln(os.Stderr, "\texport")
	fmt.Fprintln(os.Stderr, "\troute")
	fmt.Fprintln(os.Stderr, "\tversion")
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	switch args[0] {
	case "stats":
		summaries, err := statsCmd(ctx, args[1:])
		for _, s := range summaries {
			if s != nil {
				fmt.Fprintln(stdout, s)
			}
		}
		return err
	case "cache":
		return import_.Import(ctx, args[1:])
	case "query-cache":
		return query.Query(args[1:], stdout)
	case "export":
		return exportCmd(ctx, args[1:], stdout)
	case "route":
		return routeCmd(ctx, args[1:], stdout)
	case "version":
		fmt.Fprintln(stdout, osmrouter.Version)
		return nil
	}
	PrintCmds()
	return errors.Errorf("invalid command: '%s'", args[0])
}

// statsCmd parses all files concurrently and returns a summary for each
// file, in the order of the arguments.
func statsCmd(ctx context.Context, args []string) ([]*stats.Summary, error) {
	flags, opts := config.NewFlagSet("stats")
	flags.Usage = config.Usage(flags, "FILE [FILE...]")
	if err := config.Parse(flags, opts, args); err != nil {
		return nil, err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return nil, errors.New("missing input file")
	}
	opts.Setup()

	rules, err := opts.PolygonRules()
	if err != nil {
		return nil, err
	}

	files := flags.Args()
	summaries := make([]*stats.Summary, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, filename := range files {
		i, filename := i, filename
		g.Go(func() error {
			summary := stats.NewSummary(filename)
			doc, err := parser.ParseFile(ctx, filename, parser.Config{
				Skipped: import_.SkipLogger(filename, summary),
			})
			if err != nil {
				return err
			}
			summary.Count(doc, rules)
			summaries[i] = summary
			return nil
		})
	}
	return summaries, g.Wait()
}

func exportCmd(ctx context.Context, args []string, stdout io.Writer) error {
	flags, opts := config.NewFlagSet("export")
	flags.Usage = config.Usage(flags, "FILE")
	output := flags.String("o", "", "output file, default stdout")
	if err := config.Parse(flags, opts, args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return errors.New("export needs exactly one input file")
	}
	opts.Setup()

	rules, err := opts.PolygonRules()
	if err != nil {
		return err
	}
	doc, err := parser.ParseFile(ctx, flags.Arg(0), parser.Config{
		Skipped: import_.SkipLogger(flags.Arg(0), stats.NewSummary(flags.Arg(0))),
	})
	if err != nil {
		return err
	}
	return export(doc, rules, *output, stdout)
}

func export(doc *element.Document, rules mapping.Rules, output string, stdout io.Writer) error {
	if output == "" {
		return convert.WriteJSON(stdout, doc, rules)
	}
	f, err := os.Create(output)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}
	if err := convert.WriteJSON(f, doc, rules); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func parsePoint(s string) (route.Point, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return route.Point{}, errors.Errorf("invalid position '%s', expected lat,lon", s)
	}
	y, err := element.ParseCoordinate(strings.TrimSpace(lat))
	if err != nil {
		return route.Point{}, errors.Wrapf(err, "invalid position '%s'", s)
	}
	x, err := element.ParseCoordinate(strings.TrimSpace(lon))
	if err != nil {
		return route.Point{}, errors.Wrapf(err, "invalid position '%s'", s)
	}
	if y < -90 || y > 90 || x < -180 || x > 180 {
		return route.Point{}, errors.Errorf("position '%s' out of range", s)
	}
	return route.Point{Lat: float64(y), Lon: float64(x)}, nil
}

type routeOutput struct {
	Status   string       `json:"status"`
	Nodes    []element.ID `json:"nodes"`
	Distance float64      `json:"distance"`
}

func routeCmd(ctx context.Context, args []string, stdout io.Writer) error {
	flags, opts := config.NewFlagSet("route")
	flags.Usage = config.Usage(flags, "FILE")
	mode := flags.String("mode", string(route.Car), "mode of travel")
	modesFile := flags.String("modes", "", "YAML file with travel modes")
	from := flags.String("from", "", "start position as lat,lon")
	to := flags.String("to", "", "end position as lat,lon")
	if err := config.Parse(flags, opts, args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return errors.New("route needs exactly one input file")
	}
	opts.Setup()

	start, err := parsePoint(*from)
	if err != nil {
		return err
	}
	end, err := parsePoint(*to)
	if err != nil {
		return err
	}

	var router *route.Router
	if *modesFile != "" {
		modes, err := route.LoadModes(*modesFile)
		if err != nil {
			return err
		}
		c, ok := modes[route.Mode(*mode)]
		if !ok {
			return errors.Wrapf(route.ErrUnknownMode, "'%s' in %s", *mode, *modesFile)
		}
		router = route.NewWithConfig(route.Mode(*mode), c)
	} else if router, err = route.New(route.Mode(*mode)); err != nil {
		return err
	}

	doc, err := parser.ParseFile(ctx, flags.Arg(0), parser.Config{
		Skipped: import_.SkipLogger(flags.Arg(0), stats.NewSummary(flags.Arg(0))),
	})
	if err != nil {
		return err
	}
	edges, restrictions := router.AddDocument(doc)
	log.Printf("%s: %d edges, %d restrictions", flags.Arg(0), edges, restrictions)

	res, err := router.Find(ctx, start, end)
	if err != nil {
		return err
	}
	return json.NewEncoder(stdout).Encode(routeOutput{
		Status:   res.Status.String(),
		Nodes:    res.Nodes,
		Distance: res.Distance,
	})
}

func main() {
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}
	if len(os.Args) <= 1 {
		PrintCmds()
		logging.Shutdown()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		if err != flag.ErrHelp {
			log.Errorf("%v", err)
		}
		logging.Shutdown()
		os.Exit(1)
	}
	logging.Shutdown()
}
