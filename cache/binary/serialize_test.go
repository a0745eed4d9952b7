package binary

import (
	"math"
	"testing"

	"github.com/toba/osm-router/element"
)

func compareTags(t *testing.T, expected, actual element.Tags) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("expected %d tags, got %v", len(expected), actual)
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Errorf("tag %d: expected %v, got %v", i, expected[i], actual[i])
		}
	}
}

func TestMarshalNode(t *testing.T) {
	node := &element.Node{
		ID:  12345,
		Lat: 51.5074089,
		Lon: -0.1080108,
		Tags: element.Tags{
			{Key: "name", Value: "test"},
			{Key: "place", Value: "city"},
			{Key: "name", Value: "duplicate"},
		},
	}

	data := MarshalNode(node)
	got, err := UnmarshalNode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Lat != node.Lat || got.Lon != node.Lon {
		t.Errorf("coordinates do not match: %v %v", got.Lat, got.Lon)
	}
	if got.ID != 0 {
		t.Error("id is not part of the encoding")
	}
	compareTags(t, node.Tags, got.Tags)
}

func TestMarshalNodeWithoutTags(t *testing.T) {
	got, err := UnmarshalNode(MarshalNode(&element.Node{Lat: -90, Lon: 180}))
	if err != nil {
		t.Fatal(err)
	}
	if got.Tags != nil {
		t.Error(got.Tags)
	}
	if got.Lat != -90 || got.Lon != 180 {
		t.Error(got)
	}
}

func TestMarshalWay(t *testing.T) {
	way := &element.Way{
		Refs: []element.NodeRef{1375815878, 391448656, 25496583, 25496583, 1, math.MaxUint64},
		Tags: element.Tags{
			{Key: "highway", Value: "trunk"},
			{Key: "building", Value: "yes"},
		},
	}

	got, err := UnmarshalWay(MarshalWay(way))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Refs) != len(way.Refs) {
		t.Fatal("refs length does not match", got.Refs)
	}
	for i := range way.Refs {
		if got.Refs[i] != way.Refs[i] {
			t.Errorf("ref %d: expected %d, got %d", i, way.Refs[i], got.Refs[i])
		}
	}
	compareTags(t, way.Tags, got.Tags)
}

func TestMarshalRelation(t *testing.T) {
	rel := &element.Relation{
		Members: []element.Member{
			{Ref: element.NodeRef(345579224), Role: "admin_centre"},
			{Ref: element.WayRef(123365172), Role: "outer"},
			{Ref: element.RelationRef(375951), Role: ""},
		},
		Tags: element.Tags{{Key: "type", Value: "multipolygon"}},
	}

	got, err := UnmarshalRelation(MarshalRelation(rel))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Members) != len(rel.Members) {
		t.Fatal("members length does not match", got.Members)
	}
	for i := range rel.Members {
		if got.Members[i] != rel.Members[i] {
			t.Errorf("member %d: expected %#v, got %#v", i, rel.Members[i], got.Members[i])
		}
	}
	compareTags(t, rel.Tags, got.Tags)
}

func TestMarshalBounds(t *testing.T) {
	b := &element.Bounds{MinLat: 51.2, MinLon: -0.5, MaxLat: 51.7, MaxLon: 0.3}
	got, err := UnmarshalBounds(MarshalBounds(b))
	if err != nil {
		t.Fatal(err)
	}
	if *got != *b {
		t.Error(got)
	}
}

func TestUnmarshalTruncated(t *testing.T) {
	way := MarshalWay(&element.Way{
		Refs: []element.NodeRef{1, 2, 3},
		Tags: element.Tags{{Key: "foo", Value: "bar"}},
	})
	for i := 0; i < len(way); i++ {
		if _, err := UnmarshalWay(way[:i]); err == nil {
			t.Errorf("no error for truncated way with %d bytes", i)
		}
	}

	rel := MarshalRelation(&element.Relation{
		Members: []element.Member{{Ref: element.WayRef(1), Role: "outer"}},
	})
	for i := 0; i < len(rel); i++ {
		if _, err := UnmarshalRelation(rel[:i]); err == nil {
			t.Errorf("no error for truncated relation with %d bytes", i)
		}
	}

	if _, err := UnmarshalBounds(make([]byte, 31)); err == nil {
		t.Error("no error for short bounds")
	}
	if _, err := UnmarshalBounds(make([]byte, 33)); err == nil {
		t.Error("no error for trailing bytes")
	}
}

func TestUnmarshalInvalidMemberType(t *testing.T) {
	data := MarshalRelation(&element.Relation{
		Members: []element.Member{{Ref: element.WayRef(1), Role: "outer"}},
	})
	data[1] = 7
	if _, err := UnmarshalRelation(data); err == nil {
		t.Error("no error for invalid member type")
	}
}
