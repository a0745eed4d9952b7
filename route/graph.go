package route

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/toba/osm-router/element"
)

type direction int

const (
	bothWays direction = iota
	forwardOnly
	backwardOnly
)

// travelDirection returns the usable direction of a way with tags. Ways
// without oneway tag are one-way if they are roundabouts or motorways.
// Foot traffic and modes with an oneway:<mode>=no tag can use both
// directions.
func travelDirection(tags element.Tags, mode Mode) direction {
	oneway, _ := tags.Get("oneway")
	if oneway == "" {
		junction, _ := tags.Get("junction")
		highway, _ := tags.Get("highway")
		if junction == "roundabout" || junction == "circular" || highway == "motorway" {
			oneway = "yes"
		}
	}

	var dir direction
	switch oneway {
	case "yes", "true", "1":
		dir = forwardOnly
	case "-1", "reverse":
		dir = backwardOnly
	default:
		return bothWays
	}
	if mode == Foot {
		return bothWays
	}
	if v, _ := tags.Get("oneway:" + string(mode)); v == "no" {
		return bothWays
	}
	return dir
}

// nodeRect is the size of a node in the spatial index, which needs
// non-empty rectangles.
const nodeRect = 1e-9

// nearestCandidates is the number of nodes from the spatial index that are
// compared by great-circle distance.
const nearestCandidates = 8

type indexedNode struct {
	*element.Node
}

func (n indexedNode) Bounds() rtreego.Rect {
	rect, _ := rtreego.NewRect(rtreego.Point{float64(n.Lon), float64(n.Lat)}, []float64{nodeRect, nodeRect})
	return rect
}

// Graph contains the weighted, directed edges between consecutive nodes
// of all ways that are usable by a single mode of travel.
type Graph struct {
	mode   Mode
	config Config
	edges  map[element.ID]map[element.ID]float64
	nodes  map[element.ID]*element.Node
	index  *rtreego.Rtree
}

func NewGraph(mode Mode, config Config) *Graph {
	return &Graph{
		mode:   mode,
		config: config,
		edges:  make(map[element.ID]map[element.ID]float64),
		nodes:  make(map[element.ID]*element.Node),
		index:  rtreego.NewTree(2, 25, 50),
	}
}

// weight returns the weight of a way with tags. The highway value is
// looked up first, the railway value only if the highway has no weight.
func (g *Graph) weight(tags element.Tags) float64 {
	var w float64
	if highway, ok := tags.Get("highway"); ok {
		w = g.config.Weights[highway]
	}
	if railway, ok := tags.Get("railway"); ok && w == 0 {
		w = g.config.Weights[railway]
	}
	return w
}

// AddWay adds the edges between consecutive nodes of w. Refs are resolved
// against doc, pairs with a node that is missing from doc are skipped.
// Returns the number of added edges.
func (g *Graph) AddWay(doc *element.Document, w *element.Way) int {
	weight := g.weight(w.Tags)
	if weight <= 0 || !allowed(w.Tags, g.config.Access) {
		return 0
	}
	dir := travelDirection(w.Tags, g.mode)

	added := 0
	var prev *element.Node
	for _, ref := range w.Refs {
		n, ok := doc.Resolve(ref).(*element.Node)
		if !ok {
			prev = nil
			continue
		}
		if prev != nil && prev.ID != n.ID {
			if dir != backwardOnly {
				g.add(prev, n, weight)
				added++
			}
			if dir != forwardOnly {
				g.add(n, prev, weight)
				added++
			}
		}
		prev = n
	}
	return added
}

// add connects from with to. Of multiple ways between the same nodes the
// one with the higher weight is used.
func (g *Graph) add(from, to *element.Node, weight float64) {
	g.addNode(from)
	g.addNode(to)
	e, ok := g.edges[from.ID]
	if !ok {
		e = make(map[element.ID]float64)
		g.edges[from.ID] = e
	}
	if weight > e[to.ID] {
		e[to.ID] = weight
	}
}

func (g *Graph) addNode(n *element.Node) {
	if _, ok := g.nodes[n.ID]; ok {
		return
	}
	g.nodes[n.ID] = n
	g.index.Insert(indexedNode{n})
}

// Len returns the number of nodes with outgoing edges.
func (g *Graph) Len() int {
	return len(g.edges)
}

// Node returns the routable node with id.
func (g *Graph) Node(id element.ID) (*element.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether from has outgoing edges.
func (g *Graph) Has(from element.ID) bool {
	_, ok := g.edges[from]
	return ok
}

// Connected reports whether there is an edge from from to to.
func (g *Graph) Connected(from, to element.ID) bool {
	_, ok := g.edges[from][to]
	return ok
}

// Weight returns the weight of the edge from from to to, or 0.
func (g *Graph) Weight(from, to element.ID) float64 {
	return g.edges[from][to]
}

// Each calls fn for all edges of from, ordered by the ID of to.
func (g *Graph) Each(from element.ID, fn func(to element.ID, weight float64)) {
	e := g.edges[from]
	ids := make([]element.ID, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(id, e[id])
	}
}

// Nearest returns the routable node closest to lat/lon.
func (g *Graph) Nearest(lat, lon float64) (*element.Node, bool) {
	if len(g.nodes) == 0 {
		return nil, false
	}
	var found *element.Node
	best := 0.0
	for _, s := range g.index.NearestNeighbors(nearestCandidates, rtreego.Point{lon, lat}) {
		n, ok := s.(indexedNode)
		if !ok {
			continue
		}
		d := distance(lat, lon, float64(n.Lat), float64(n.Lon))
		if found == nil || d < best || (d == best && n.ID < found.ID) {
			found, best = n.Node, d
		}
	}
	return found, found != nil
}

func (g *Graph) distance(from, to element.ID) float64 {
	a, b := g.nodes[from], g.nodes[to]
	return distance(float64(a.Lat), float64(a.Lon), float64(b.Lat), float64(b.Lon))
}
