// Package convert converts parsed documents into the element types of
// github.com/omniscale/go-osm.
package convert

import (
	"math"
	"sort"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/toba/osm-router/element"
)

// ErrIDOverflow is returned for IDs that do not fit into an int64.
var ErrIDOverflow = errors.New("id exceeds int64")

func toID(id element.ID) (int64, error) {
	if uint64(id) > math.MaxInt64 {
		return 0, errors.Wrapf(ErrIDOverflow, "id %d", uint64(id))
	}
	return int64(id), nil
}

// Tags returns tags as a map. Later tags overwrite earlier tags with the
// same key.
func Tags(tags element.Tags) osm.Tags {
	if len(tags) == 0 {
		return nil
	}
	result := make(osm.Tags, len(tags))
	for _, t := range tags {
		result[t.Key] = t.Value
	}
	return result
}

func Node(n *element.Node) (osm.Node, error) {
	id, err := toID(n.ID)
	if err != nil {
		return osm.Node{}, errors.Wrap(err, "node")
	}
	return osm.Node{
		Element: osm.Element{ID: id, Tags: Tags(n.Tags)},
		Lat:     float64(n.Lat),
		Long:    float64(n.Lon),
	}, nil
}

// Way converts w. Nodes contains all refs that resolve in doc, in ref
// order. doc can be nil, Nodes is empty then.
func Way(doc *element.Document, w *element.Way) (osm.Way, error) {
	c := newConverter(doc)
	way, err := c.way(w)
	if err != nil {
		return osm.Way{}, err
	}
	return *way, nil
}

// Relation converts r. Members that resolve in doc point to the converted
// element. doc can be nil.
func Relation(doc *element.Document, r *element.Relation) (osm.Relation, error) {
	c := newConverter(doc)
	rel, err := c.relation(r)
	if err != nil {
		return osm.Relation{}, err
	}
	return *rel, nil
}

// ToOSM converts all elements of doc, each kind sorted by ID. Each
// element is converted once, relation members that reference the same
// element share it.
func ToOSM(doc *element.Document) (nodes []osm.Node, ways []osm.Way, rels []osm.Relation, err error) {
	c := newConverter(doc)

	for _, id := range sortedIDs(doc.Nodes) {
		n, err := c.node(doc.Nodes[id])
		if err != nil {
			return nil, nil, nil, err
		}
		nodes = append(nodes, *n)
	}
	for _, id := range sortedIDs(doc.Ways) {
		w, err := c.way(doc.Ways[id])
		if err != nil {
			return nil, nil, nil, err
		}
		ways = append(ways, *w)
	}
	for _, id := range sortedIDs(doc.Relations) {
		r, err := c.relation(doc.Relations[id])
		if err != nil {
			return nil, nil, nil, err
		}
		rels = append(rels, *r)
	}
	return nodes, ways, rels, nil
}

func sortedIDs[T any](m map[element.ID]T) []element.ID {
	ids := make([]element.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// converter memoizes converted elements of a single document.
type converter struct {
	doc   *element.Document
	nodes map[*element.Node]*osm.Node
	ways  map[*element.Way]*osm.Way
	rels  map[*element.Relation]*osm.Relation
}

func newConverter(doc *element.Document) *converter {
	if doc == nil {
		doc = element.NewDocument()
	}
	return &converter{
		doc:   doc,
		nodes: map[*element.Node]*osm.Node{},
		ways:  map[*element.Way]*osm.Way{},
		rels:  map[*element.Relation]*osm.Relation{},
	}
}

func (c *converter) node(n *element.Node) (*osm.Node, error) {
	if node, ok := c.nodes[n]; ok {
		return node, nil
	}
	node, err := Node(n)
	if err != nil {
		return nil, err
	}
	c.nodes[n] = &node
	return &node, nil
}

func (c *converter) way(w *element.Way) (*osm.Way, error) {
	if way, ok := c.ways[w]; ok {
		return way, nil
	}
	id, err := toID(w.ID)
	if err != nil {
		return nil, errors.Wrap(err, "way")
	}
	way := &osm.Way{
		Element: osm.Element{ID: id, Tags: Tags(w.Tags)},
		Refs:    make([]int64, len(w.Refs)),
	}
	for i, ref := range w.Refs {
		if way.Refs[i], err = toID(element.ID(ref)); err != nil {
			return nil, errors.Wrapf(err, "way %d ref", id)
		}
		n, ok := c.doc.Node(ref)
		if !ok {
			continue
		}
		node, err := c.node(n)
		if err != nil {
			return nil, err
		}
		way.Nodes = append(way.Nodes, *node)
	}
	c.ways[w] = way
	return way, nil
}

func (c *converter) relation(r *element.Relation) (*osm.Relation, error) {
	if rel, ok := c.rels[r]; ok {
		return rel, nil
	}
	id, err := toID(r.ID)
	if err != nil {
		return nil, errors.Wrap(err, "relation")
	}
	rel := &osm.Relation{
		Element: osm.Element{ID: id, Tags: Tags(r.Tags)},
		Members: make([]osm.Member, len(r.Members)),
	}
	// register before members are converted, relations can be cyclic
	c.rels[r] = rel

	for i, m := range r.Members {
		member := &rel.Members[i]
		if member.ID, err = toID(m.Ref.RefID()); err != nil {
			delete(c.rels, r)
			return nil, errors.Wrapf(err, "relation %d member", id)
		}
		member.Type = osm.MemberType(m.Type())
		member.Role = m.Role

		switch ref := c.doc.Resolve(m.Ref).(type) {
		case *element.Node:
			node, err := c.node(ref)
			if err != nil {
				delete(c.rels, r)
				return nil, err
			}
			member.Node = node
			member.Element = &node.Element
		case *element.Way:
			way, err := c.way(ref)
			if err != nil {
				delete(c.rels, r)
				return nil, err
			}
			member.Way = way
			member.Element = &way.Element
		case *element.Relation:
			sub, err := c.relation(ref)
			if err != nil {
				delete(c.rels, r)
				return nil, err
			}
			member.Element = &sub.Element
		}
	}
	return rel, nil
}
