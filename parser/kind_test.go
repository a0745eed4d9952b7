package parser

import "testing"

func TestClassify(t *testing.T) {
	for name, want := range map[string]Kind{
		"bounds":   KindBounds,
		"node":     KindNode,
		"Node":     KindNode,
		"WAY":      KindWay,
		"relation": KindRelation,
		"tag":      KindTag,
		"nd":       KindNodeRef,
		"ND":       KindNodeRef,
		"member":   KindMember,
	} {
		got, ok := Classify(name)
		if !ok || got != want {
			t.Errorf("Classify(%q) = %v, %v", name, got, ok)
		}
	}

	for _, name := range []string{"osm", "changeset", "nodes", "", "bound", "note"} {
		if k, ok := Classify(name); ok {
			t.Errorf("Classify(%q) = %v", name, k)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindNodeRef.String() != "nd" || KindRelation.String() != "relation" {
		t.Error(KindNodeRef, KindRelation)
	}
	if Kind(42).String() != "unknown" {
		t.Error(Kind(42))
	}
}
