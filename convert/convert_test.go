package convert

import (
	"bufio"
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/toba/osm-router/element"
	"github.com/toba/osm-router/mapping"
	"github.com/toba/osm-router/parser"
)

const testOSM = `<osm>
  <bounds minlat="1" minlon="2" maxlat="3" maxlon="4"/>
  <node id="2" lat="2" lon="2"><tag k="name" v="b"/></node>
  <node id="1" lat="1" lon="1"/>
  <way id="10">
    <nd ref="1"/><nd ref="2"/><nd ref="5"/><nd ref="1"/>
    <tag k="highway" v="primary"/><tag k="highway" v="secondary"/>
  </way>
  <way id="11"><nd ref="1"/><nd ref="2"/><tag k="natural" v="water"/></way>
  <relation id="100">
    <member type="way" ref="10" role="outer"/>
    <member type="node" ref="9" role="label"/>
    <member type="relation" ref="101"/>
  </relation>
  <relation id="101">
    <member type="relation" ref="100" role="parent"/>
    <member type="node" ref="2" role="label"/>
  </relation>
</osm>`

func testDocument(t *testing.T) *element.Document {
	t.Helper()
	doc, err := parser.Parse(strings.NewReader(testOSM))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestTags(t *testing.T) {
	if Tags(nil) != nil {
		t.Error("empty tags not nil")
	}
	tags := Tags(element.Tags{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "a", Value: "3"}})
	if len(tags) != 2 || tags["a"] != "3" || tags["b"] != "2" {
		t.Error(tags)
	}
}

func TestNode(t *testing.T) {
	n, err := Node(&element.Node{ID: 5, Lat: 51.5, Lon: -0.1, Tags: element.Tags{{Key: "k", Value: "v"}}})
	if err != nil {
		t.Fatal(err)
	}
	if n.ID != 5 || n.Lat != 51.5 || n.Long != -0.1 || n.Tags["k"] != "v" {
		t.Error(n)
	}

	_, err = Node(&element.Node{ID: math.MaxInt64 + 1})
	if !errors.Is(err, ErrIDOverflow) {
		t.Error("expected overflow error, got", err)
	}
}

func TestWay(t *testing.T) {
	doc := testDocument(t)
	w, err := Way(doc, doc.Ways[10])
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Refs) != 4 || w.Refs[2] != 5 {
		t.Error(w.Refs)
	}
	// ref 5 is not part of the document
	if len(w.Nodes) != 3 || w.Nodes[0].ID != 1 || w.Nodes[1].ID != 2 || w.Nodes[2].ID != 1 {
		t.Error(w.Nodes)
	}
	if w.Tags["highway"] != "secondary" {
		t.Error(w.Tags)
	}
	if !w.IsClosed() {
		t.Error("way not closed")
	}

	w, err = Way(nil, doc.Ways[10])
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Refs) != 4 || len(w.Nodes) != 0 {
		t.Error(w)
	}

	_, err = Way(nil, &element.Way{ID: 1, Refs: []element.NodeRef{math.MaxUint64}})
	if !errors.Is(err, ErrIDOverflow) {
		t.Error("expected overflow error, got", err)
	}
}

func TestRelation(t *testing.T) {
	doc := testDocument(t)
	r, err := Relation(doc, doc.Relations[100])
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Members) != 3 {
		t.Fatal(r.Members)
	}

	m := r.Members[0]
	if m.Type != osm.WayMember || m.ID != 10 || m.Role != "outer" {
		t.Error(m)
	}
	if m.Way == nil || m.Way.ID != 10 || len(m.Way.Nodes) != 3 || m.Element != &m.Way.Element {
		t.Error("way member not resolved", m)
	}

	m = r.Members[1]
	if m.Type != osm.NodeMember || m.ID != 9 || m.Node != nil || m.Element != nil {
		t.Error("unresolved member has element", m)
	}

	m = r.Members[2]
	if m.Type != osm.RelationMember || m.Role != "" || m.Element == nil || m.Element.ID != 101 {
		t.Error("relation member not resolved", m)
	}
}

func TestToOSM(t *testing.T) {
	doc := testDocument(t)
	nodes, ways, rels, err := ToOSM(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 || nodes[0].ID != 1 || nodes[1].ID != 2 {
		t.Error(nodes)
	}
	if len(ways) != 2 || ways[0].ID != 10 || ways[1].ID != 11 {
		t.Error(ways)
	}
	if len(rels) != 2 || rels[0].ID != 100 || rels[1].ID != 101 {
		t.Error(rels)
	}
	// cyclic relations point to each other
	if rels[0].Members[2].Element.ID != 101 || rels[1].Members[0].Element.ID != 100 {
		t.Error(rels)
	}

	doc.AddRelation(&element.Relation{ID: math.MaxInt64 + 2})
	if _, _, _, err := ToOSM(doc); !errors.Is(err, ErrIDOverflow) {
		t.Error("expected overflow error, got", err)
	}
}

func TestWriteJSON(t *testing.T) {
	doc := testDocument(t)
	out := &bytes.Buffer{}
	if err := WriteJSON(out, doc, mapping.DefaultRules()); err != nil {
		t.Fatal(err)
	}

	var records []map[string]interface{}
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		rec := map[string]interface{}{}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatal(err, scanner.Text())
		}
		records = append(records, rec)
	}
	if len(records) != 7 {
		t.Fatal(records)
	}
	var types []string
	for _, rec := range records {
		types = append(types, rec["type"].(string))
	}
	if strings.Join(types, ",") != "bounds,node,node,way,way,relation,relation" {
		t.Error(types)
	}
	if records[0]["maxlon"] != 4.0 {
		t.Error(records[0])
	}
	// closed way 10 is a polygon, way 11 is open but natural=water
	if records[3]["polygon"] != true || records[3]["unresolved"] != 1.0 {
		t.Error(records[3])
	}
	if records[4]["polygon"] != true {
		t.Error(records[4])
	}
	members := records[5]["members"].([]interface{})
	if m := members[1].(map[string]interface{}); m["resolved"] != false || m["type"] != "node" {
		t.Error(m)
	}
}
