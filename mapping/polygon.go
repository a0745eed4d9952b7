package mapping

import (
	"github.com/toba/osm-router/element"
)

// Policy defines which values of a rule key make a way a polygon.
type Policy int

const (
	// All accepts any value.
	All Policy = iota
	// Whitelist only accepts the listed values.
	Whitelist
	// Blacklist accepts all but the listed values. Empty values are
	// not accepted.
	Blacklist
)

func (p Policy) String() string {
	switch p {
	case All:
		return "all"
	case Whitelist:
		return "whitelist"
	case Blacklist:
		return "blacklist"
	}
	return "unknown"
}

// A Rule marks ways with tag Key as polygons, depending on the tag value
// and Policy.
type Rule struct {
	Key    string   `yaml:"key"`
	Policy Policy   `yaml:"polygon"`
	Values []string `yaml:"values"`
}

func (r *Rule) accepts(value string) bool {
	switch r.Policy {
	case All:
		return true
	case Whitelist:
		return value != "" && contains(r.Values, value)
	case Blacklist:
		return value != "" && !contains(r.Values, value)
	}
	return false
}

func contains(values []string, v string) bool {
	for _, val := range values {
		if val == v {
			return true
		}
	}
	return false
}

// Rules is a set of polygon rules. A tag matches if any rule accepts it,
// the order of the rules is not relevant.
type Rules []Rule

// defaultRules decide whether an open way is an area. Only handed out as
// copies by DefaultRules.
var defaultRules = Rules{
	{Key: "building", Policy: All},
	{Key: "highway", Policy: Whitelist, Values: []string{"services", "rest_area", "escape", "elevator"}},
	{Key: "natural", Policy: Blacklist, Values: []string{"coastline", "cliff", "ridge", "arete", "tree_row"}},
	{Key: "landuse", Policy: All},
	{Key: "waterway", Policy: Whitelist, Values: []string{"riverbank", "dock", "boatyard", "dam"}},
	{Key: "amenity", Policy: All},
	{Key: "leisure", Policy: All},
	{Key: "barrier", Policy: Whitelist, Values: []string{"city_wall", "ditch", "hedge", "retaining_wall", "wall", "spikes"}},
	{Key: "railway", Policy: Whitelist, Values: []string{"station", "turntable", "roundhouse", "platform"}},
	{Key: "area", Policy: All},
	{Key: "boundary", Policy: All},
	{Key: "man_made", Policy: Blacklist, Values: []string{"cutline", "embankment", "pipeline"}},
	{Key: "power", Policy: Whitelist, Values: []string{"plant", "substation", "generator", "transformer"}},
	{Key: "place", Policy: All},
	{Key: "shop", Policy: All},
	{Key: "aeroway", Policy: Blacklist, Values: []string{"taxiway"}},
	{Key: "tourism", Policy: All},
	{Key: "historic", Policy: All},
	{Key: "public_transport", Policy: All},
	{Key: "office", Policy: All},
	{Key: "building:part", Policy: All},
	{Key: "military", Policy: All},
	{Key: "ruins", Policy: All},
	{Key: "area:highway", Policy: All},
	{Key: "craft", Policy: All},
	{Key: "golf", Policy: All},
}

// Match returns whether tag marks a way as polygon. A tag with the value
// "no" never matches.
func (rs Rules) Match(tag element.Tag) bool {
	if tag.Value == "no" {
		return false
	}
	for i := range rs {
		if rs[i].Key == tag.Key && rs[i].accepts(tag.Value) {
			return true
		}
	}
	return false
}

// IsPolygon returns whether w is an area: either a closed ring, or a way
// with at least one matching tag.
func (rs Rules) IsPolygon(w *element.Way) bool {
	if w.IsRing() {
		return true
	}
	for _, tag := range w.Tags {
		if rs.Match(tag) {
			return true
		}
	}
	return false
}

// DefaultRules returns a copy of the built-in rules. Changes to the copy
// do not affect IsPolygon.
func DefaultRules() Rules {
	rules := make(Rules, len(defaultRules))
	for i, r := range defaultRules {
		rules[i] = r
		if r.Values != nil {
			rules[i].Values = append([]string(nil), r.Values...)
		}
	}
	return rules
}

// IsPolygon checks w against the built-in rules.
func IsPolygon(w *element.Way) bool {
	return defaultRules.IsPolygon(w)
}
