package element

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// An ID identifies a node, way or relation. Nodes, ways and relations each
// have their own range of IDs, the same number can denote unrelated
// elements of different types.
type ID uint64

// ParseID parses a decimal element ID. A single leading + is allowed.
func ParseID(s string) (ID, error) {
	digits := s
	if len(digits) > 1 && digits[0] == '+' && digits[1] != '+' {
		digits = digits[1:]
	}
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing id %q", s)
	}
	return ID(v), nil
}

// A Coordinate is a latitude or longitude in decimal degrees.
type Coordinate float64

var (
	errNotFinite  = errors.New("coordinate is not finite")
	errNotDecimal = errors.New("coordinate is not a decimal number")
)

// ParseCoordinate parses a decimal coordinate like -0.14, 1e-3 or .5.
// Empty, malformed and non-finite values are errors, as are the hex and
// underscore forms of Go float literals.
func ParseCoordinate(s string) (Coordinate, error) {
	if !isDecimal(s) {
		return 0, errors.Wrapf(errNotDecimal, "parsing coordinate %q", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing coordinate %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Wrapf(errNotFinite, "parsing coordinate %q", s)
	}
	return Coordinate(v), nil
}

// isDecimal reports whether s matches [+-]?(d+.?d*|.d+)([eE][+-]?d+)?
func isDecimal(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	mantissa := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		mantissa++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			mantissa++
		}
	}
	if mantissa == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// A Tag is a single key=value annotation.
type Tag struct {
	Key   string `json:"k"`
	Value string `json:"v"`
}

// Tags keeps all tags of an element in source order. Keys are not unique.
type Tags []Tag

// Get returns the value of the first tag with key.
func (t Tags) Get(key string) (string, bool) {
	for _, tag := range t {
		if tag.Key == key {
			return tag.Value, true
		}
	}
	return "", false
}

// Bounds is the bounding box of an extract.
type Bounds struct {
	MinLat Coordinate `json:"minlat"`
	MinLon Coordinate `json:"minlon"`
	MaxLat Coordinate `json:"maxlat"`
	MaxLon Coordinate `json:"maxlon"`
}

// A Node is a single point.
type Node struct {
	ID   ID         `json:"id"`
	Lat  Coordinate `json:"lat"`
	Lon  Coordinate `json:"lon"`
	Tags Tags       `json:"tags,omitempty"`
}

// A Way is an ordered list of node references. The order defines the
// polyline or ring.
type Way struct {
	ID   ID        `json:"id"`
	Refs []NodeRef `json:"refs"`
	Tags Tags      `json:"tags,omitempty"`
}

// IsRing returns whether the first and last node reference are the same.
// Refs are compared by ID, they are not resolved.
func (w *Way) IsRing() bool {
	return len(w.Refs) > 0 && w.Refs[0] == w.Refs[len(w.Refs)-1]
}

// A Relation is a collection of members of any type.
type Relation struct {
	ID      ID       `json:"id"`
	Members []Member `json:"members"`
	Tags    Tags     `json:"tags,omitempty"`
}
