package mapping

import (
	"testing"

	"github.com/toba/osm-router/element"
)

func way(refs []element.NodeRef, tags ...element.Tag) *element.Way {
	return &element.Way{ID: 1234567, Refs: refs, Tags: tags}
}

func tag(k, v string) element.Tag {
	return element.Tag{Key: k, Value: v}
}

func TestTaglessOpenWayIsNotPolygon(t *testing.T) {
	if IsPolygon(way(nil)) {
		t.Error("empty way is polygon")
	}
	if IsPolygon(way([]element.NodeRef{1, 2, 3})) {
		t.Error("open way is polygon")
	}
}

func TestRingIsPolygon(t *testing.T) {
	if !IsPolygon(way([]element.NodeRef{1, 2, 3, 26, 1})) {
		t.Error("closed way is not polygon")
	}
	if !IsPolygon(way([]element.NodeRef{1, 2, 1}, tag("highway", "footway"))) {
		t.Error("closed way with non-matching tags is not polygon")
	}
}

func TestPolicyAll(t *testing.T) {
	if !IsPolygon(way(nil, tag("building", "this_is_not_valid"))) {
		t.Error("building=* is not polygon")
	}
	if !IsPolygon(way(nil, tag("building", ""))) {
		t.Error("building='' is not polygon")
	}
	if IsPolygon(way(nil, tag("building", "no"))) {
		t.Error("building=no is polygon")
	}
}

func TestPolicyWhitelist(t *testing.T) {
	for _, tc := range []struct {
		value   string
		polygon bool
	}{
		{"escape", true},
		{"services", true},
		{"elevator", true},
		{"footway", false},
		{"", false},
		{"no", false},
	} {
		if got := IsPolygon(way(nil, tag("highway", tc.value))); got != tc.polygon {
			t.Errorf("highway=%q: expected %v, got %v", tc.value, tc.polygon, got)
		}
	}

	if !IsPolygon(way(nil, tag("highway", "footway"), tag("highway", "escape"))) {
		t.Error("second matching tag ignored")
	}
	if !IsPolygon(way([]element.NodeRef{1, 2, 3}, tag("highway", "escape"))) {
		t.Error("open way with whitelisted tag is not polygon")
	}
}

func TestPolicyBlacklist(t *testing.T) {
	for _, tc := range []struct {
		value   string
		polygon bool
	}{
		{"tree", true},
		{"water", true},
		{"cliff", false},
		{"coastline", false},
		{"", false},
		{"no", false},
	} {
		if got := IsPolygon(way(nil, tag("natural", tc.value))); got != tc.polygon {
			t.Errorf("natural=%q: expected %v, got %v", tc.value, tc.polygon, got)
		}
	}

	if !IsPolygon(way(nil, tag("natural", "cliff"), tag("natural", "tree"))) {
		t.Error("second matching tag ignored")
	}
	if !IsPolygon(way([]element.NodeRef{1, 2, 3}, tag("natural", "tree"))) {
		t.Error("open way with accepted tag is not polygon")
	}
}

func TestNoValueNeverMatches(t *testing.T) {
	rules := DefaultRules()
	if len(rules) != 26 {
		t.Fatalf("expected 26 default rules, got %d", len(rules))
	}
	for _, r := range rules {
		if IsPolygon(way(nil, tag(r.Key, "no"))) {
			t.Errorf("%s=no is polygon", r.Key)
		}
	}
}

func TestDefaultRulesIsCopy(t *testing.T) {
	rules := DefaultRules()
	for i := range rules {
		if rules[i].Key == "highway" {
			rules[i].Values[0] = "primary"
		}
		rules[i].Policy = All
	}
	rules[0].Key = "name"

	if IsPolygon(way(nil, tag("highway", "primary"))) {
		t.Error("modified copy changed built-in rules")
	}
	if !IsPolygon(way(nil, tag("highway", "services"))) {
		t.Error("modified copy changed built-in values")
	}
	if !DefaultRules().IsPolygon(way(nil, tag("building", "yes"))) {
		t.Error("new copy has modified rules")
	}
}

func TestNoIsPerTag(t *testing.T) {
	if !IsPolygon(way(nil, tag("building", "no"), tag("amenity", "parking"))) {
		t.Error("building=no suppressed other matching tag")
	}
	if IsPolygon(way(nil, tag("building", "no"), tag("name", "Town Hall"))) {
		t.Error("building=no with unrelated tag is polygon")
	}
}

func TestUnknownKey(t *testing.T) {
	if IsPolygon(way(nil, tag("name", "Maurinkatu"), tag("surface", "paved"))) {
		t.Error("way with unrelated tags is polygon")
	}
}
