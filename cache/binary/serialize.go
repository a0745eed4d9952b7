package binary

import (
	"github.com/toba/osm-router/element"
)

func marshalTags(e *encoder, tags element.Tags) {
	arr := tagsAsArray(tags)
	e.uvarint(uint64(len(arr)))
	for _, s := range arr {
		e.string(s)
	}
}

func unmarshalTags(d *decoder) element.Tags {
	n := d.count(1)
	if n == 0 {
		return nil
	}
	arr := make([]string, n)
	for i := range arr {
		arr[i] = d.string()
	}
	if d.err != nil {
		return nil
	}
	tags, err := tagsFromArray(arr)
	if err != nil {
		d.err = err
	}
	return tags
}

// MarshalNode encodes the coordinates and tags of node. The ID is not
// included, it is the key of the cache entry.
func MarshalNode(node *element.Node) []byte {
	e := &encoder{}
	e.float(float64(node.Lat))
	e.float(float64(node.Lon))
	marshalTags(e, node.Tags)
	return e.Bytes()
}

func UnmarshalNode(data []byte) (*element.Node, error) {
	d := &decoder{buf: data}
	node := &element.Node{}
	node.Lat = element.Coordinate(d.float())
	node.Lon = element.Coordinate(d.float())
	node.Tags = unmarshalTags(d)
	if err := d.finish("node"); err != nil {
		return nil, err
	}
	return node, nil
}

// MarshalWay encodes the node refs as deltas to the previous ref, followed
// by the tags.
func MarshalWay(way *element.Way) []byte {
	e := &encoder{}
	e.uvarint(uint64(len(way.Refs)))
	var last uint64
	for _, ref := range way.Refs {
		e.varint(int64(uint64(ref) - last))
		last = uint64(ref)
	}
	marshalTags(e, way.Tags)
	return e.Bytes()
}

func UnmarshalWay(data []byte) (*element.Way, error) {
	d := &decoder{buf: data}
	way := &element.Way{}
	if n := d.count(1); n > 0 {
		way.Refs = make([]element.NodeRef, n)
		var last uint64
		for i := range way.Refs {
			last += uint64(d.varint())
			way.Refs[i] = element.NodeRef(last)
		}
	}
	way.Tags = unmarshalTags(d)
	if err := d.finish("way"); err != nil {
		return nil, err
	}
	return way, nil
}

// MarshalRelation encodes type, delta coded ID and role of each member,
// followed by the tags.
func MarshalRelation(rel *element.Relation) []byte {
	e := &encoder{}
	e.uvarint(uint64(len(rel.Members)))
	var last uint64
	for _, m := range rel.Members {
		id := uint64(m.Ref.RefID())
		e.byte(byte(m.Type()))
		e.varint(int64(id - last))
		e.string(m.Role)
		last = id
	}
	marshalTags(e, rel.Tags)
	return e.Bytes()
}

func UnmarshalRelation(data []byte) (*element.Relation, error) {
	d := &decoder{buf: data}
	rel := &element.Relation{}
	if n := d.count(3); n > 0 {
		rel.Members = make([]element.Member, n)
		var last uint64
		for i := range rel.Members {
			typ := element.MemberType(d.byte())
			last += uint64(d.varint())
			role := d.string()
			if d.err != nil {
				break
			}
			ref, err := element.NewRef(typ, element.ID(last))
			if err != nil {
				d.err = err
				break
			}
			rel.Members[i] = element.Member{Ref: ref, Role: role}
		}
	}
	rel.Tags = unmarshalTags(d)
	if err := d.finish("relation"); err != nil {
		return nil, err
	}
	return rel, nil
}

func MarshalBounds(b *element.Bounds) []byte {
	e := &encoder{}
	e.float(float64(b.MinLat))
	e.float(float64(b.MinLon))
	e.float(float64(b.MaxLat))
	e.float(float64(b.MaxLon))
	return e.Bytes()
}

func UnmarshalBounds(data []byte) (*element.Bounds, error) {
	d := &decoder{buf: data}
	b := &element.Bounds{}
	b.MinLat = element.Coordinate(d.float())
	b.MinLon = element.Coordinate(d.float())
	b.MaxLat = element.Coordinate(d.float())
	b.MaxLon = element.Coordinate(d.float())
	if err := d.finish("bounds"); err != nil {
		return nil, err
	}
	return b, nil
}
