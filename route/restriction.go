package route

import (
	"strings"

	"github.com/toba/osm-router/element"
	"github.com/toba/osm-router/logging"
)

var log = logging.NewLogger("route")

type edge struct {
	from, to element.ID
}

// Restrictions are the turn restrictions of a mode of travel. A no_*
// restriction forbids a node sequence, an only_* restriction makes the
// nodes after its from edge mandatory.
type Restrictions struct {
	mode   Mode
	config Config
	// forbidden sequences keyed by their last edge
	forbidden map[edge][][]element.ID
	// mandatory nodes keyed by the last edge of the from member
	mandatory map[edge][]element.ID
	// maxLen is the length of the longest forbidden sequence
	maxLen int
}

func NewRestrictions(mode Mode, config Config) *Restrictions {
	return &Restrictions{
		mode:      mode,
		config:    config,
		forbidden: make(map[edge][][]element.ID),
		mandatory: make(map[edge][]element.ID),
	}
}

// kind returns the restriction value of tags that applies to the mode. A
// restriction:<mode> tag wins over the restriction tag. Restrictions for
// foot traffic need to be explicit.
func (rs *Restrictions) kind(tags element.Tags) string {
	specific := "restriction:" + string(rs.mode)
	value, ok := tags.Get(specific)
	if rs.mode == Foot {
		if typ, _ := tags.Get("type"); typ != specific && !ok {
			return ""
		}
	}
	if !ok {
		value, _ = tags.Get("restriction")
	}
	return value
}

// AddRelation adds the restriction r. Members are resolved against doc.
// Returns false if r does not restrict the mode or if its members do not
// form a connected sequence.
func (rs *Restrictions) AddRelation(doc *element.Document, r *element.Relation) bool {
	if excepted(r.Tags, rs.config.Access) {
		return false
	}
	kind := rs.kind(r.Tags)
	forbid := strings.HasPrefix(kind, "no_")
	if !forbid && !strings.HasPrefix(kind, "only_") {
		return false
	}

	s, err := newSequence(doc, r)
	if err != nil {
		log.Debugf("ignoring restriction %d: %v", r.ID, err)
		return false
	}
	from := s.fromNodes()
	via := s.viaNodes()
	to := s.toNode()

	if forbid {
		seq := make([]element.ID, 0, len(from)+len(via)+1)
		seq = append(seq, from...)
		seq = append(seq, via...)
		seq = append(seq, to)
		last := edge{seq[len(seq)-2], seq[len(seq)-1]}
		rs.forbidden[last] = append(rs.forbidden[last], seq)
		if len(seq) > rs.maxLen {
			rs.maxLen = len(seq)
		}
	} else {
		rs.mandatory[edge{from[0], from[1]}] = append(via, to)
	}
	return true
}

// Forbids reports whether path ends with a forbidden sequence.
func (rs *Restrictions) Forbids(path []element.ID) bool {
	n := len(path)
	if n < 2 {
		return false
	}
	for _, seq := range rs.forbidden[edge{path[n-2], path[n-1]}] {
		if n >= len(seq) && equalIDs(path[n-len(seq):], seq) {
			return true
		}
	}
	return false
}

// Mandatory returns the nodes that must follow after the edge from, to.
func (rs *Restrictions) Mandatory(from, to element.ID) ([]element.ID, bool) {
	nodes, ok := rs.mandatory[edge{from, to}]
	return nodes, ok
}

// Len returns the number of forbidden sequences and mandatory edges.
func (rs *Restrictions) Len() (forbidden, mandatory int) {
	for _, seqs := range rs.forbidden {
		forbidden += len(seqs)
	}
	return forbidden, len(rs.mandatory)
}

func equalIDs(a, b []element.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
