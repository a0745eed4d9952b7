package parser

import "strings"

// Kind is the type of a recognized OSM XML element.
type Kind int

const (
	KindBounds Kind = iota
	KindNode
	KindWay
	KindRelation
	KindTag
	KindNodeRef
	KindMember
)

var kindNames = [...]string{
	KindBounds:   "bounds",
	KindNode:     "node",
	KindWay:      "way",
	KindRelation: "relation",
	KindTag:      "tag",
	KindNodeRef:  "nd",
	KindMember:   "member",
}

var kindValues = map[string]Kind{
	"bounds":   KindBounds,
	"node":     KindNode,
	"way":      KindWay,
	"relation": KindRelation,
	"tag":      KindTag,
	"nd":       KindNodeRef,
	"member":   KindMember,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Classify returns the kind of the element name. Names are compared
// case-insensitive. Returns false for all other elements.
func Classify(name string) (Kind, bool) {
	k, ok := kindValues[name]
	if !ok {
		k, ok = kindValues[strings.ToLower(name)]
	}
	return k, ok
}

