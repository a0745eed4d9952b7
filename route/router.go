package route

import (
	"container/heap"
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/toba/osm-router/element"
	"github.com/toba/osm-router/stats"
)

var (
	ErrUnknownNode  = errors.New("node is not routable")
	ErrUnknownMode  = errors.New("unknown travel mode")
	ErrSearchLimit  = errors.New("route search limit reached")
	errMissingNodes = errors.New("no routable nodes")
)

// DefaultMaxIterations limits the number of expanded search states.
const DefaultMaxIterations = 100000

type Status int

const (
	Success Status = iota
	NoRoute
)

func (s Status) String() string {
	if s == Success {
		return "success"
	}
	return "no route"
}

// Point is a position in decimal degrees.
type Point struct {
	Lat, Lon float64
}

type Result struct {
	Status Status
	// Nodes are the IDs of all nodes of the route, including start and end.
	Nodes []element.ID
	// Distance is the length of the route in meters.
	Distance float64
	// Cost is the sum of the edge lengths divided by their weights.
	Cost float64
}

// Router finds routes for a single mode of travel through the ways of one
// or more documents.
type Router struct {
	mode         Mode
	graph        *Graph
	restrictions *Restrictions
	maxWeight    float64
	// MaxIterations limits the search, DefaultMaxIterations if 0.
	MaxIterations int
}

// New returns a router with the built-in config of mode.
func New(mode Mode) (*Router, error) {
	config, ok := DefaultConfig(mode)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMode, "'%s'", mode)
	}
	return NewWithConfig(mode, config), nil
}

func NewWithConfig(mode Mode, config Config) *Router {
	maxWeight := config.maxWeight()
	if maxWeight <= 0 {
		maxWeight = 1
	}
	return &Router{
		mode:         mode,
		graph:        NewGraph(mode, config),
		restrictions: NewRestrictions(mode, config),
		maxWeight:    maxWeight,
	}
}

func (r *Router) Graph() *Graph { return r.graph }

func (r *Router) Restrictions() *Restrictions { return r.restrictions }

// AddDocument adds the usable ways and the restrictions of doc. Returns
// the number of added edges and restrictions.
func (r *Router) AddDocument(doc *element.Document) (edges, restrictions int) {
	for _, id := range sortedIDs(doc.Ways) {
		edges += r.graph.AddWay(doc, doc.Ways[id])
	}
	for _, id := range sortedIDs(doc.Relations) {
		if r.restrictions.AddRelation(doc, doc.Relations[id]) {
			restrictions++
		}
	}
	log.Debugf("%s: %d edges, %d restrictions", r.mode, edges, restrictions)
	return edges, restrictions
}

func sortedIDs[T any](m map[element.ID]T) []element.ID {
	ids := make([]element.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Nearest returns the ID of the routable node closest to p.
func (r *Router) Nearest(p Point) (element.ID, bool) {
	n, ok := r.graph.Nearest(p.Lat, p.Lon)
	if !ok {
		return 0, false
	}
	return n.ID, true
}

// Find returns the route between the routable nodes closest to from and
// to.
func (r *Router) Find(ctx context.Context, from, to Point) (*Result, error) {
	start, ok := r.Nearest(from)
	if !ok {
		stats.RouteSearches.WithLabelValues("error").Inc()
		return nil, errMissingNodes
	}
	end, _ := r.Nearest(to)
	return r.Route(ctx, start, end)
}

// Route returns the route with the lowest cost from start to end. The
// route never turns around at a node and follows all restrictions. The
// Status of the result is NoRoute if end is not reachable or equals start.
func (r *Router) Route(ctx context.Context, start, end element.ID) (*Result, error) {
	res, err := r.search(ctx, start, end)
	switch {
	case err != nil:
		stats.RouteSearches.WithLabelValues("error").Inc()
	case res.Status == Success:
		stats.RouteSearches.WithLabelValues("success").Inc()
	default:
		stats.RouteSearches.WithLabelValues("no_route").Inc()
	}
	return res, err
}

func (r *Router) search(ctx context.Context, start, end element.ID) (*Result, error) {
	if _, ok := r.graph.Node(start); !ok {
		return nil, errors.Wrapf(ErrUnknownNode, "start %d", start)
	}
	if _, ok := r.graph.Node(end); !ok {
		return nil, errors.Wrapf(ErrUnknownNode, "end %d", end)
	}
	if start == end {
		return &Result{Status: NoRoute}, nil
	}

	maxIterations := r.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	// states need enough history to match the longest forbidden sequence
	history := 2
	if r.restrictions.maxLen > history {
		history = r.restrictions.maxLen - 1
	}

	q := &queue{}
	closed := make(map[string]bool)
	best := make(map[string]float64)
	heap.Push(q, &item{node: start, estimate: r.graph.distance(start, end) / r.maxWeight})

	for i := 0; q.Len() > 0; i++ {
		if i >= maxIterations {
			return nil, ErrSearchLimit
		}
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		cur := heap.Pop(q).(*item)
		key := cur.key(history)
		if closed[key] {
			continue
		}
		closed[key] = true

		if cur.node == end {
			return &Result{Status: Success, Nodes: cur.path(-1), Distance: cur.distance, Cost: cur.cost}, nil
		}

		r.expand(cur, func(to element.ID, weight float64, forced []element.ID) {
			if cur.prev != nil && cur.prev.node == to {
				return
			}
			if r.restrictions.Forbids(append(cur.path(history), to)) {
				return
			}
			d := r.graph.distance(cur.node, to)
			next := &item{
				node:     to,
				prev:     cur,
				cost:     cur.cost + d/weight,
				distance: cur.distance + d,
				forced:   forced,
			}
			next.estimate = next.cost + r.graph.distance(to, end)/r.maxWeight
			nextKey := next.key(history)
			if closed[nextKey] {
				return
			}
			if c, ok := best[nextKey]; ok && c <= next.cost {
				return
			}
			best[nextKey] = next.cost
			heap.Push(q, next)
		})
	}
	return &Result{Status: NoRoute}, nil
}

// expand calls fn for all edges that can follow cur with the mandatory
// nodes that remain after the edge.
func (r *Router) expand(cur *item, fn func(to element.ID, weight float64, forced []element.ID)) {
	if len(cur.forced) > 0 {
		to := cur.forced[0]
		if w := r.graph.Weight(cur.node, to); w > 0 {
			fn(to, w, cur.forced[1:])
		}
		return
	}
	r.graph.Each(cur.node, func(to element.ID, weight float64) {
		forced, _ := r.restrictions.Mandatory(cur.node, to)
		fn(to, weight, forced)
	})
}

type item struct {
	node     element.ID
	prev     *item
	cost     float64
	distance float64
	estimate float64
	forced   []element.ID
	index    int
}

// path returns the last n nodes up to it, or all nodes if n < 0.
func (it *item) path(n int) []element.ID {
	var ids []element.ID
	for cur := it; cur != nil && (n < 0 || len(ids) < n); cur = cur.prev {
		ids = append(ids, cur.node)
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

// key identifies the search state of it by the last history nodes and the
// remaining mandatory nodes.
func (it *item) key(history int) string {
	b := strings.Builder{}
	for _, id := range it.path(history) {
		b.WriteString(strconv.FormatUint(uint64(id), 10))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	for _, id := range it.forced {
		b.WriteString(strconv.FormatUint(uint64(id), 10))
		b.WriteByte(',')
	}
	return b.String()
}

// queue is a min-heap of items ordered by estimate.
type queue []*item

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].estimate != q[j].estimate {
		return q[i].estimate < q[j].estimate
	}
	return q[i].node < q[j].node
}

func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *queue) Push(x interface{}) {
	it := x.(*item)
	it.index = len(*q)
	*q = append(*q, it)
}

func (q *queue) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}
