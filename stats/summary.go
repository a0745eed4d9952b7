package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/toba/osm-router/element"
	"github.com/toba/osm-router/mapping"
)

// Summary contains the element counts of a single document.
type Summary struct {
	Name      string
	Bounds    *element.Bounds
	Nodes     int
	Ways      int
	Relations int
	// Polygons is the number of ways that are areas.
	Polygons int
	// Rings is the number of ways that are closed.
	Rings int
	// UnresolvedRefs counts way node refs and relation members that point
	// to elements outside of the document.
	UnresolvedRefs int

	mu      sync.Mutex
	skipped map[string]int
}

func NewSummary(name string) *Summary {
	return &Summary{Name: name, skipped: make(map[string]int)}
}

// AddSkipped counts a dropped element of the given error kind.
func (s *Summary) AddSkipped(kind string) {
	s.mu.Lock()
	s.skipped[kind]++
	s.mu.Unlock()
}

// Skipped returns the number of dropped elements for each error kind.
func (s *Summary) Skipped() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]int, len(s.skipped))
	for k, v := range s.skipped {
		result[k] = v
	}
	return result
}

// Count collects the counts of doc. rules decide which ways are polygons.
// Counts of a previous call are replaced, skipped elements are kept.
func (s *Summary) Count(doc *element.Document, rules mapping.Rules) {
	s.Bounds = doc.Bounds
	s.Nodes = len(doc.Nodes)
	s.Ways = len(doc.Ways)
	s.Relations = len(doc.Relations)
	s.Rings = 0
	s.Polygons = 0
	s.UnresolvedRefs = 0

	for _, w := range doc.Ways {
		if w.IsRing() {
			s.Rings++
		}
		if rules.IsPolygon(w) {
			s.Polygons++
		}
		for _, ref := range w.Refs {
			if _, ok := doc.Resolve(ref).(element.Unresolved); ok {
				s.UnresolvedRefs++
			}
		}
	}
	for _, r := range doc.Relations {
		for _, m := range r.Members {
			if _, ok := doc.Resolve(m.Ref).(element.Unresolved); ok {
				s.UnresolvedRefs++
			}
		}
	}
}

func (s *Summary) String() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s: Nodes: %9d Ways: %8d (%d polygons, %d rings) Relations: %7d Unresolved refs: %d",
		s.Name,
		s.Nodes,
		s.Ways,
		s.Polygons,
		s.Rings,
		s.Relations,
		s.UnresolvedRefs,
	)
	if s.Bounds != nil {
		fmt.Fprintf(b, " Bounds: %v,%v,%v,%v", s.Bounds.MinLon, s.Bounds.MinLat, s.Bounds.MaxLon, s.Bounds.MaxLat)
	}

	skipped := s.Skipped()
	kinds := make([]string, 0, len(skipped))
	for k := range skipped {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(b, " [%s: %d]", k, skipped[k])
	}
	return b.String()
}
