package convert

import (
	"bufio"
	"encoding/json"
	"io"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/toba/osm-router/element"
	"github.com/toba/osm-router/mapping"
)

type boundsRecord struct {
	Type string `json:"type"`
	*element.Bounds
}

type nodeRecord struct {
	Type string   `json:"type"`
	ID   int64    `json:"id"`
	Lat  float64  `json:"lat"`
	Lon  float64  `json:"lon"`
	Tags osm.Tags `json:"tags,omitempty"`
}

type wayRecord struct {
	Type       string   `json:"type"`
	ID         int64    `json:"id"`
	Refs       []int64  `json:"refs"`
	Unresolved int      `json:"unresolved,omitempty"`
	Polygon    bool     `json:"polygon"`
	Tags       osm.Tags `json:"tags,omitempty"`
}

type memberRecord struct {
	Type     string `json:"type"`
	Ref      int64  `json:"ref"`
	Role     string `json:"role"`
	Resolved bool   `json:"resolved"`
}

type relationRecord struct {
	Type    string         `json:"type"`
	ID      int64          `json:"id"`
	Members []memberRecord `json:"members"`
	Tags    osm.Tags       `json:"tags,omitempty"`
}

var memberTypes = map[osm.MemberType]string{
	osm.NodeMember:     "node",
	osm.WayMember:      "way",
	osm.RelationMember: "relation",
}

// WriteJSON writes one JSON object per line for the bounds and each
// element of doc. Ways are classified with rules.
func WriteJSON(w io.Writer, doc *element.Document, rules mapping.Rules) error {
	nodes, ways, rels, err := ToOSM(doc)
	if err != nil {
		return err
	}

	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	if doc.Bounds != nil {
		if err := enc.Encode(boundsRecord{"bounds", doc.Bounds}); err != nil {
			return errors.Wrap(err, "writing bounds")
		}
	}
	for _, n := range nodes {
		if err := enc.Encode(nodeRecord{"node", n.ID, n.Lat, n.Long, n.Tags}); err != nil {
			return errors.Wrapf(err, "writing node %d", n.ID)
		}
	}
	for _, way := range ways {
		rec := wayRecord{
			Type:       "way",
			ID:         way.ID,
			Refs:       way.Refs,
			Unresolved: len(way.Refs) - len(way.Nodes),
			Polygon:    rules.IsPolygon(doc.Ways[element.ID(way.ID)]),
			Tags:       way.Tags,
		}
		if err := enc.Encode(rec); err != nil {
			return errors.Wrapf(err, "writing way %d", way.ID)
		}
	}
	for _, rel := range rels {
		rec := relationRecord{Type: "relation", ID: rel.ID, Tags: rel.Tags}
		rec.Members = make([]memberRecord, len(rel.Members))
		for i, m := range rel.Members {
			rec.Members[i] = memberRecord{
				Type:     memberTypes[m.Type],
				Ref:      m.ID,
				Role:     m.Role,
				Resolved: m.Element != nil,
			}
		}
		if err := enc.Encode(rec); err != nil {
			return errors.Wrapf(err, "writing relation %d", rel.ID)
		}
	}
	return buf.Flush()
}
