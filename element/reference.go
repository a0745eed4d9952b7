package element

import (
	"encoding/json"
	"fmt"
	"strings"
)

type MemberType int

const (
	NodeMember MemberType = iota
	WayMember
	RelationMember
)

func (t MemberType) String() string {
	switch t {
	case NodeMember:
		return "node"
	case WayMember:
		return "way"
	case RelationMember:
		return "relation"
	}
	return fmt.Sprintf("MemberType(%d)", int(t))
}

// ParseMemberType parses node, way or relation, ignoring case.
func ParseMemberType(s string) (MemberType, bool) {
	switch strings.ToLower(s) {
	case "node":
		return NodeMember, true
	case "way":
		return WayMember, true
	case "relation":
		return RelationMember, true
	}
	return 0, false
}

// UnresolvedRef is a typed reference to another element, recorded while
// parsing. It is never checked against the document, the target can be
// missing from an extract.
//
// Only NodeRef, WayRef and RelationRef implement UnresolvedRef.
type UnresolvedRef interface {
	RefID() ID
	Type() MemberType
	unresolved()
}

// NodeRef references a node by ID.
type NodeRef ID

// WayRef references a way by ID.
type WayRef ID

// RelationRef references a relation by ID.
type RelationRef ID

func (r NodeRef) RefID() ID        { return ID(r) }
func (r NodeRef) Type() MemberType { return NodeMember }
func (NodeRef) unresolved()        {}

func (r WayRef) RefID() ID        { return ID(r) }
func (r WayRef) Type() MemberType { return WayMember }
func (WayRef) unresolved()        {}

func (r RelationRef) RefID() ID        { return ID(r) }
func (r RelationRef) Type() MemberType { return RelationMember }
func (RelationRef) unresolved()        {}

// NewRef returns the reference of type t for id.
func NewRef(t MemberType, id ID) (UnresolvedRef, error) {
	switch t {
	case NodeMember:
		return NodeRef(id), nil
	case WayMember:
		return WayRef(id), nil
	case RelationMember:
		return RelationRef(id), nil
	}
	return nil, fmt.Errorf("unknown member type %d", int(t))
}

// A Member contains information about a single relation member.
type Member struct {
	// Ref is a NodeRef, WayRef or RelationRef. Note that the ID is only
	// unique within the type of the reference.
	Ref UnresolvedRef
	// Role of the member. Strings like "inner", "outer", "stop", etc.
	// The role is not validated.
	Role string
}

// Type returns whether the member references a node, way or relation.
func (m Member) Type() MemberType {
	return m.Ref.Type()
}

type memberJSON struct {
	Type string `json:"type"`
	Ref  ID     `json:"ref"`
	Role string `json:"role"`
}

func (m Member) MarshalJSON() ([]byte, error) {
	return json.Marshal(memberJSON{Type: m.Type().String(), Ref: m.Ref.RefID(), Role: m.Role})
}

// Reference is the result of resolving an UnresolvedRef against a Document.
// It is a *Node, *Way, *Relation, or Unresolved. Resolved elements point
// into the document and are shared, not copied.
type Reference interface {
	reference()
}

// Unresolved is returned for references to elements that are not part of
// the document.
type Unresolved struct {
	Ref UnresolvedRef
}

func (*Node) reference()      {}
func (*Way) reference()       {}
func (*Relation) reference()  {}
func (Unresolved) reference() {}
