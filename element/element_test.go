package element

import (
	"encoding/json"
	"testing"
)

func TestParseID(t *testing.T) {
	id, err := ParseID("25496583")
	if err != nil || id != 25496583 {
		t.Fatal(id, err)
	}
	id, err = ParseID("18446744073709551615")
	if err != nil || id != ID(^uint64(0)) {
		t.Fatal(id, err)
	}

	id, err = ParseID("+42")
	if err != nil || id != 42 {
		t.Fatal(id, err)
	}

	for _, s := range []string{"", "-1", "+", "++1", "+-1", "1.5", "abc", "1_0", "0x10", "18446744073709551616"} {
		if _, err := ParseID(s); err == nil {
			t.Errorf("ParseID(%q) did not fail", s)
		}
	}
}

func TestParseCoordinate(t *testing.T) {
	c, err := ParseCoordinate("54.0889580")
	if err != nil || c != 54.0889580 {
		t.Fatal(c, err)
	}
	c, err = ParseCoordinate("-0.140043")
	if err != nil || c != -0.140043 {
		t.Fatal(c, err)
	}

	for s, want := range map[string]Coordinate{
		"+1.5":   1.5,
		".5":     0.5,
		"-3.":    -3,
		"1e2":    100,
		"2.5E-1": 0.25,
		"007":    7,
	} {
		if c, err := ParseCoordinate(s); err != nil || c != want {
			t.Errorf("ParseCoordinate(%q) = %v, %v", s, c, err)
		}
	}

	for _, s := range []string{"", "north", "NaN", "Inf", "-Inf", "infinity", "1,5",
		"0x1p4", "0X10", "1_0", "1__0.5", "1e", "1e+", ".", "-", "+.e1", "1.5.2", " 1", "1 ", "1e400"} {
		if _, err := ParseCoordinate(s); err == nil {
			t.Errorf("ParseCoordinate(%q) did not fail", s)
		}
	}
}

func TestTagsGet(t *testing.T) {
	tags := Tags{{"highway", "footway"}, {"name", "A"}, {"highway", "escape"}}
	if v, ok := tags.Get("highway"); !ok || v != "footway" {
		t.Error(v, ok)
	}
	if _, ok := tags.Get("surface"); ok {
		t.Error("found missing key")
	}
}

func TestWayIsRing(t *testing.T) {
	w := Way{}
	if w.IsRing() {
		t.Error("empty way is ring")
	}
	w.Refs = []NodeRef{1}
	if !w.IsRing() {
		t.Error("single ref way is not ring")
	}
	w.Refs = []NodeRef{1, 2, 3}
	if w.IsRing() {
		t.Error("open way is ring")
	}
	w.Refs = []NodeRef{1, 2, 3, 26, 1}
	if !w.IsRing() {
		t.Error("closed way is not ring")
	}
}

func TestNewRef(t *testing.T) {
	ref, err := NewRef(WayMember, 42)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ref.(WayRef); !ok || ref.RefID() != 42 || ref.Type() != WayMember {
		t.Errorf("unexpected ref %#v", ref)
	}
	if _, err := NewRef(MemberType(7), 1); err == nil {
		t.Error("invalid member type accepted")
	}
}

func TestParseMemberType(t *testing.T) {
	for s, want := range map[string]MemberType{
		"node":     NodeMember,
		"Way":      WayMember,
		"RELATION": RelationMember,
	} {
		if got, ok := ParseMemberType(s); !ok || got != want {
			t.Errorf("ParseMemberType(%q) = %v, %v", s, got, ok)
		}
	}
	if _, ok := ParseMemberType("area"); ok {
		t.Error("parsed unknown member type")
	}
}

func TestMemberJSON(t *testing.T) {
	m := Member{Ref: RelationRef(375952), Role: "subarea"}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"relation","ref":375952,"role":"subarea"}` {
		t.Error(string(data))
	}
}
