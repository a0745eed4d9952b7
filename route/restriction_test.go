package route

import (
	"testing"

	"github.com/toba/osm-router/element"
)

func ids(values ...element.ID) []element.ID { return values }

func TestSequenceSort(t *testing.T) {
	set1 := ids(0, 1, 2, 3, 4, 5, 6, 7)
	set2 := ids(7, 8, 9, 10, 11)
	set3 := ids(11, 12, 13, 14)

	s := sequence{set1, reversed(set2), set3}
	if err := s.sort(); err != nil {
		t.Fatal(err)
	}
	if !equalIDs(s[1], set2) {
		t.Error("middle group not reversed", s[1])
	}
	if !equalIDs(s.fromNodes(), ids(6, 7)) {
		t.Error(s.fromNodes())
	}
	if !equalIDs(s.viaNodes(), ids(8, 9, 10, 11)) {
		t.Error(s.viaNodes())
	}
	if s.toNode() != 12 {
		t.Error(s.toNode())
	}

	// from way pointing away from the via node
	s = sequence{ids(1, 2, 3), ids(1), ids(1, 5)}
	if err := s.sort(); err != nil {
		t.Fatal(err)
	}
	if !equalIDs(s[0], ids(3, 2, 1)) || !equalIDs(s.fromNodes(), ids(2, 1)) {
		t.Error(s[0])
	}

	s = sequence{ids(1, 2), ids(3, 4)}
	if err := s.sort(); err == nil {
		t.Error("unconnected groups sorted")
	}
	// via node in the middle of the from way
	s = sequence{ids(1, 2, 3), ids(2), ids(2, 5)}
	if err := s.sort(); err == nil {
		t.Error("groups that do not connect at their ends sorted")
	}
}

func TestSharedNode(t *testing.T) {
	if n, ok := sharedNode(ids(1, 2, 3, 9), ids(9, 10, 3)); !ok || n != 3 {
		t.Error(n, ok)
	}
	if _, ok := sharedNode(ids(1), ids(2)); ok {
		t.Error("found shared node")
	}
}

func restrictionDocument() *element.Document {
	doc := element.NewDocument()
	for id := element.ID(1); id <= 6; id++ {
		doc.AddNode(&element.Node{ID: id})
	}
	doc.AddWay(&element.Way{ID: 1, Refs: []element.NodeRef{2, 1}})
	doc.AddWay(&element.Way{ID: 2, Refs: []element.NodeRef{2, 5}})
	doc.AddWay(&element.Way{ID: 3, Refs: []element.NodeRef{5, 6}})
	return doc
}

func restriction(tags element.Tags, members ...element.Member) *element.Relation {
	return &element.Relation{ID: 1, Members: members, Tags: tags}
}

func TestViaWayRestriction(t *testing.T) {
	doc := restrictionDocument()
	rs := NewRestrictions(Car, defaultModes[Car])
	ok := rs.AddRelation(doc, restriction(
		element.Tags{{Key: "type", Value: "restriction"}, {Key: "restriction", Value: "no_u_turn"}},
		element.Member{Ref: element.WayRef(1), Role: "from"},
		element.Member{Ref: element.WayRef(2), Role: "via"},
		element.Member{Ref: element.WayRef(3), Role: "to"},
	))
	if !ok {
		t.Fatal("restriction not added")
	}
	if !rs.Forbids(ids(9, 1, 2, 5, 6)) || !rs.Forbids(ids(1, 2, 5, 6)) {
		t.Error("sequence not forbidden")
	}
	if rs.Forbids(ids(2, 5, 6)) || rs.Forbids(ids(4, 2, 5, 6)) || rs.Forbids(ids(6)) {
		t.Error("partial sequence forbidden")
	}
	if rs.maxLen != 4 {
		t.Error(rs.maxLen)
	}

	rs = NewRestrictions(Car, defaultModes[Car])
	rs.AddRelation(doc, restriction(
		element.Tags{{Key: "restriction", Value: "only_straight_on"}},
		element.Member{Ref: element.WayRef(1), Role: "from"},
		element.Member{Ref: element.WayRef(2), Role: "via"},
		element.Member{Ref: element.WayRef(3), Role: "to"},
	))
	if nodes, ok := rs.Mandatory(1, 2); !ok || !equalIDs(nodes, ids(5, 6)) {
		t.Error(nodes, ok)
	}
	if _, ok := rs.Mandatory(2, 5); ok {
		t.Error("mandatory nodes for via edge")
	}
}

func TestIgnoredRestrictions(t *testing.T) {
	doc := restrictionDocument()
	from := element.Member{Ref: element.WayRef(1), Role: "from"}
	via := element.Member{Ref: element.NodeRef(2), Role: "via"}
	to := element.Member{Ref: element.WayRef(2), Role: "to"}
	noLeft := element.Tag{Key: "restriction", Value: "no_left_turn"}

	for _, tc := range []struct {
		name string
		mode Mode
		rel  *element.Relation
	}{
		{"exception", Car, restriction(element.Tags{noLeft, {Key: "except", Value: "bicycle; motorcar"}}, from, via, to)},
		{"other mode", Car, restriction(element.Tags{{Key: "restriction:bus", Value: "no_left_turn"}}, from, via, to)},
		{"not a restriction", Car, restriction(element.Tags{{Key: "restriction", Value: "give_way"}}, from, via, to)},
		{"implicit for foot", Foot, restriction(element.Tags{noLeft}, from, via, to)},
		{"missing to", Car, restriction(element.Tags{noLeft}, from, via)},
		{"missing member", Car, restriction(element.Tags{noLeft}, from, via, element.Member{Ref: element.WayRef(99), Role: "to"})},
		{"relation member", Car, restriction(element.Tags{noLeft}, from, element.Member{Ref: element.RelationRef(1), Role: "via"}, to)},
		{"not connected", Car, restriction(element.Tags{noLeft}, from, element.Member{Ref: element.NodeRef(6), Role: "via"}, to)},
	} {
		rs := NewRestrictions(tc.mode, defaultModes[tc.mode])
		if rs.AddRelation(doc, tc.rel) {
			t.Errorf("%s: restriction added", tc.name)
		}
	}
}

func TestModeSpecificRestriction(t *testing.T) {
	doc := restrictionDocument()
	from := element.Member{Ref: element.WayRef(1), Role: "from"}
	via := element.Member{Ref: element.NodeRef(2), Role: "via"}
	to := element.Member{Ref: element.WayRef(2), Role: "to"}

	tags := element.Tags{
		{Key: "restriction", Value: "no_left_turn"},
		{Key: "restriction:bus", Value: "only_left_turn"},
	}
	rs := NewRestrictions(Bus, defaultModes[Bus])
	if !rs.AddRelation(doc, restriction(tags, from, via, to)) {
		t.Fatal("restriction not added")
	}
	if forbidden, mandatory := rs.Len(); forbidden != 0 || mandatory != 1 {
		t.Error(forbidden, mandatory)
	}

	rs = NewRestrictions(Foot, defaultModes[Foot])
	tags = element.Tags{{Key: "type", Value: "restriction:foot"}, {Key: "restriction", Value: "no_straight_on"}}
	if !rs.AddRelation(doc, restriction(tags, from, via, to)) {
		t.Fatal("explicit foot restriction not added")
	}
	if !rs.Forbids(ids(1, 2, 5)) {
		t.Error("foot sequence not forbidden")
	}
}
