package parser

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/toba/osm-router/element"
	"github.com/toba/osm-router/stats"
)

// Parser reads a complete OSM XML document into an element.Document.
//
// Malformed elements do not stop the parser. Nodes, ways and relations
// with missing or invalid mandatory attributes or with illegal child
// elements are dropped, tags without key or value are dropped from their
// element, and invalid bounds are cleared. Only errors of the underlying
// markup are returned.
type Parser struct {
	src  EventSource
	conf Config
	used bool
	err  error
}

type Config struct {
	// Skipped is called for every dropped element or tag with the *Error
	// that describes it. Optional.
	Skipped func(err error)
}

// New creates a new parser for the provided XML input.
func New(r io.Reader, conf Config) *Parser {
	return NewFromSource(NewXMLSource(r), conf)
}

// NewGZIP returns a parser from a GZIP compressed io.Reader.
func NewGZIP(r io.Reader, conf Config) (*Parser, error) {
	r, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening gzip stream")
	}
	return New(r, conf), nil
}

// NewFromSource creates a parser that reads the events of src.
func NewFromSource(src EventSource, conf Config) *Parser {
	return &Parser{src: src, conf: conf}
}

// Error returns the error of the last Parse call.
func (p *Parser) Error() error {
	return p.err
}

var errParserUsed = errors.New("parser already used")

// Parse reads all events and returns the document. The returned error is a
// *TokenizerError for malformed markup, or the error of ctx if it was
// canceled before the input was read completely. A Parser can only be used
// once.
func (p *Parser) Parse(ctx context.Context) (doc *element.Document, err error) {
	if p.used {
		return nil, errParserUsed
	}
	p.used = true

	defer func(start time.Time) {
		if err != nil {
			p.err = err
			stats.ParseErrors.Inc()
		} else {
			stats.ParseDuration.Observe(time.Since(start).Seconds())
		}
	}(time.Now())

	doc = element.NewDocument()
	asm := newAssembler(p.src, p.skip)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e, err := asm.next()
		if err != nil {
			var perr *Error
			if !errors.As(err, &perr) {
				return nil, err
			}
			if perr.Kind == ErrBoundsMissing {
				doc.Bounds = nil
			}
			p.skip(perr)
			continue
		}

		switch {
		case e.eof:
			return doc, nil
		case e.bounds != nil:
			doc.Bounds = e.bounds
			stats.ElementsParsed.WithLabelValues("bounds").Inc()
		case e.node != nil:
			doc.AddNode(e.node)
			stats.ElementsParsed.WithLabelValues("node").Inc()
		case e.way != nil:
			doc.AddWay(e.way)
			stats.ElementsParsed.WithLabelValues("way").Inc()
		case e.rel != nil:
			doc.AddRelation(e.rel)
			stats.ElementsParsed.WithLabelValues("relation").Inc()
		}
	}
}

func (p *Parser) skip(err error) {
	kind := "unknown"
	var perr *Error
	if errors.As(err, &perr) {
		kind = perr.Kind.String()
	}
	stats.ElementsSkipped.WithLabelValues(kind).Inc()
	if p.conf.Skipped != nil {
		p.conf.Skipped(err)
	}
}

// Parse reads the OSM XML document from r.
func Parse(r io.Reader) (*element.Document, error) {
	return New(r, Config{}).Parse(context.Background())
}

// ParseFile reads the OSM XML file at path. Files ending with .gz are
// decompressed.
func ParseFile(ctx context.Context, path string, conf Config) (*element.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var p *Parser
	if strings.HasSuffix(path, ".gz") {
		p, err = NewGZIP(f, conf)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
	} else {
		p = New(f, conf)
	}
	doc, err := p.Parse(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return doc, nil
}
