package route

import (
	"github.com/pkg/errors"

	"github.com/toba/osm-router/element"
)

// sequence is the node groups of a turn restriction: the from member, all
// via members and the to member. After sort, the last node of each group
// is the first node of the next group.
type sequence [][]element.ID

func newSequence(doc *element.Document, r *element.Relation) (sequence, error) {
	var from, to []element.ID
	var via [][]element.ID
	for _, m := range r.Members {
		if m.Role != "from" && m.Role != "via" && m.Role != "to" {
			continue
		}
		if (m.Role == "from" && from != nil) || (m.Role == "to" && to != nil) {
			continue
		}
		nodes, err := memberNodes(doc, m)
		if err != nil {
			return nil, err
		}
		switch m.Role {
		case "from":
			from = nodes
		case "to":
			to = nodes
		default:
			via = append(via, nodes)
		}
	}
	if from == nil || to == nil {
		return nil, errors.New("missing from or to member")
	}

	s := make(sequence, 0, len(via)+2)
	s = append(s, from)
	s = append(s, via...)
	s = append(s, to)
	if err := s.sort(); err != nil {
		return nil, err
	}
	if len(s[0]) < 2 || len(s[len(s)-1]) < 2 {
		return nil, errors.New("from and to members need two nodes")
	}
	return s, nil
}

// memberNodes returns a copy of the node IDs of a node or way member.
func memberNodes(doc *element.Document, m element.Member) ([]element.ID, error) {
	switch e := doc.Resolve(m.Ref).(type) {
	case *element.Node:
		return []element.ID{e.ID}, nil
	case *element.Way:
		if len(e.Refs) == 0 {
			return nil, errors.Errorf("%s member way %d without nodes", m.Role, e.ID)
		}
		ids := make([]element.ID, len(e.Refs))
		for i, ref := range e.Refs {
			ids[i] = ref.RefID()
		}
		return ids, nil
	case element.Unresolved:
		return nil, errors.Errorf("%s member %s %d is missing", m.Role, m.Type(), m.Ref.RefID())
	}
	return nil, errors.Errorf("%s member %s %d is not supported", m.Role, m.Type(), m.Ref.RefID())
}

func sharedNode(a, b []element.ID) (element.ID, bool) {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return x, true
			}
		}
	}
	return 0, false
}

func reversed(ids []element.ID) []element.ID {
	r := make([]element.ID, len(ids))
	for i, id := range ids {
		r[len(ids)-1-i] = id
	}
	return r
}

// sort orients the groups so that shared nodes are adjacent:
//
//	[a b] [b c] [c] [c d e] [e f]
//
// Only the from group is reversed to match the second group, all other
// groups are reversed to match their predecessor.
func (s sequence) sort() error {
	for i := 0; i < len(s)-1; i++ {
		j := i + 1
		common, ok := sharedNode(s[i], s[j])
		if !ok {
			return errors.Errorf("members %d and %d are not connected", i, j)
		}
		if s[j][0] != common {
			s[j] = reversed(s[j])
		}
		if i == 0 && s[i][len(s[i])-1] != common {
			s[i] = reversed(s[i])
		}
		if s[i][len(s[i])-1] != s[j][0] {
			return errors.Errorf("members %d and %d do not connect at their ends", i, j)
		}
	}
	return nil
}

// fromNodes returns the last edge of the from group.
func (s sequence) fromNodes() []element.ID {
	from := s[0]
	return []element.ID{from[len(from)-2], from[len(from)-1]}
}

// viaNodes returns the nodes between the from and the to group, without
// the nodes that connect the groups.
func (s sequence) viaNodes() []element.ID {
	var via []element.ID
	for _, group := range s[1 : len(s)-1] {
		via = append(via, group[1:]...)
	}
	return via
}

// toNode returns the first node of the to group after the connecting node.
func (s sequence) toNode() element.ID {
	return s[len(s)-1][1]
}
