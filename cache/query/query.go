package query

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/toba/osm-router/cache"
	"github.com/toba/osm-router/config"
	"github.com/toba/osm-router/element"
	"github.com/toba/osm-router/logging"
)

var log = logging.NewLogger("query")

type nodes map[string]*element.Node
type ways map[string]*way
type relations map[string]*relation

type way struct {
	*element.Way
	Nodes nodes `json:"nodes,omitempty"`
}

type relation struct {
	*element.Relation
	Nodes     nodes     `json:"nodes,omitempty"`
	Ways      ways      `json:"ways,omitempty"`
	Relations relations `json:"relations,omitempty"`
}

// Result maps the requested IDs to the cached elements. Missing elements
// are null.
type Result struct {
	Bounds    *element.Bounds `json:"bounds,omitempty"`
	Nodes     nodes           `json:"nodes,omitempty"`
	Ways      ways            `json:"ways,omitempty"`
	Relations relations       `json:"relations,omitempty"`
}

// Request selects the elements of a query. With Full, way nodes and
// relation members are included recursively.
type Request struct {
	Nodes     []element.ID
	Ways      []element.ID
	Relations []element.ID
	Bounds    bool
	Full      bool
}

// Run collects all elements of req from the store.
func Run(store *cache.Store, req Request) (*Result, error) {
	q := query{store: store, seen: map[element.ID]bool{}}
	res := &Result{}
	var err error
	if req.Bounds {
		res.Bounds, err = store.Bounds()
		if err != nil && err != cache.ErrNotFound {
			return nil, err
		}
	}
	if len(req.Relations) > 0 {
		if res.Relations, err = q.relations(req.Relations, req.Full); err != nil {
			return nil, err
		}
	}
	if len(req.Ways) > 0 {
		if res.Ways, err = q.ways(req.Ways, req.Full); err != nil {
			return nil, err
		}
	}
	if len(req.Nodes) > 0 {
		if res.Nodes, err = q.nodes(req.Nodes); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type query struct {
	store *cache.Store
	// seen relations, to stop recursion of cyclic relations
	seen map[element.ID]bool
}

func (q *query) relations(ids []element.ID, recurse bool) (relations, error) {
	rels := make(relations)
	for _, id := range ids {
		sid := strconv.FormatUint(uint64(id), 10)
		r, err := q.store.GetRelation(id)
		if err == cache.ErrNotFound {
			rels[sid] = nil
			continue
		} else if err != nil {
			return nil, err
		}
		rels[sid] = &relation{Relation: r}
		if !recurse || q.seen[id] {
			continue
		}
		q.seen[id] = true

		var nodeIDs, wayIDs, relIDs []element.ID
		for _, m := range r.Members {
			switch m.Type() {
			case element.NodeMember:
				nodeIDs = append(nodeIDs, m.Ref.RefID())
			case element.WayMember:
				wayIDs = append(wayIDs, m.Ref.RefID())
			case element.RelationMember:
				relIDs = append(relIDs, m.Ref.RefID())
			}
		}
		rel := rels[sid]
		if len(nodeIDs) > 0 {
			if rel.Nodes, err = q.nodes(nodeIDs); err != nil {
				return nil, err
			}
		}
		if len(wayIDs) > 0 {
			if rel.Ways, err = q.ways(wayIDs, true); err != nil {
				return nil, err
			}
		}
		if len(relIDs) > 0 {
			if rel.Relations, err = q.relations(relIDs, true); err != nil {
				return nil, err
			}
		}
	}
	return rels, nil
}

func (q *query) ways(ids []element.ID, recurse bool) (ways, error) {
	ws := make(ways)
	for _, id := range ids {
		sid := strconv.FormatUint(uint64(id), 10)
		w, err := q.store.GetWay(id)
		if err == cache.ErrNotFound {
			ws[sid] = nil
			continue
		} else if err != nil {
			return nil, err
		}
		ws[sid] = &way{Way: w}
		if recurse {
			refs := make([]element.ID, len(w.Refs))
			for i, ref := range w.Refs {
				refs[i] = element.ID(ref)
			}
			if ws[sid].Nodes, err = q.nodes(refs); err != nil {
				return nil, err
			}
		}
	}
	return ws, nil
}

func (q *query) nodes(ids []element.ID) (nodes, error) {
	ns := make(nodes)
	for _, id := range ids {
		sid := strconv.FormatUint(uint64(id), 10)
		n, err := q.store.GetNode(id)
		if err == cache.ErrNotFound {
			ns[sid] = nil
			continue
		} else if err != nil {
			return nil, err
		}
		ns[sid] = n
	}
	return ns, nil
}

type idList []element.ID

func (l *idList) String() string {
	return fmt.Sprint(*l)
}

func (l *idList) Set(s string) error {
	id, err := element.ParseID(s)
	if err != nil {
		return err
	}
	*l = append(*l, id)
	return nil
}

// Query is the query-cache subcommand. It prints the requested elements
// as JSON to out.
func Query(args []string, out io.Writer) error {
	flags, opts := config.NewFlagSet("query-cache")
	flags.Usage = config.Usage(flags, "")
	req := Request{}
	flags.Var((*idList)(&req.Nodes), "node", "node id, can be repeated")
	flags.Var((*idList)(&req.Ways), "way", "way id, can be repeated")
	flags.Var((*idList)(&req.Relations), "rel", "relation id, can be repeated")
	flags.BoolVar(&req.Bounds, "bounds", false, "include bounds")
	flags.BoolVar(&req.Full, "full", false, "recurse into relations/ways")

	if err := config.Parse(flags, opts, args); err != nil {
		return err
	}
	if len(req.Nodes)+len(req.Ways)+len(req.Relations) == 0 && !req.Bounds {
		flags.Usage()
		return errors.New("missing -node, -way, -rel or -bounds")
	}
	if _, err := os.Stat(opts.CacheDir); err != nil {
		return errors.Wrap(err, "cache not found")
	}

	store, err := cache.Open(opts.CacheDir, opts.CacheOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := Run(store, req)
	if err != nil {
		return err
	}
	log.Debugf("queried %s", opts.CacheDir)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
