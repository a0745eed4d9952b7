package parser

import (
	"github.com/toba/osm-router/element"
)

type state int

const (
	stateRoot state = iota
	stateInNode
	stateInWay
	stateInRelation
)

// kind returns the element kind that is open in state s and the error kind
// to report if that element gets aborted.
func (s state) kind() (Kind, ErrorKind) {
	switch s {
	case stateInNode:
		return KindNode, ErrMalformedNode
	case stateInWay:
		return KindWay, ErrMalformedWay
	case stateInRelation:
		return KindRelation, ErrMalformedRelation
	}
	return KindBounds, ErrUnrecognizedElement
}

// assembled is the result of a single assembler run. Exactly one element
// is set, unless eof is true.
type assembled struct {
	bounds *element.Bounds
	node   *element.Node
	way    *element.Way
	rel    *element.Relation
	eof    bool
}

// assembler turns the events of an EventSource into top-level elements.
// It assembles a single element at a time, the element under
// construction is kept in node, way or rel depending on state.
type assembler struct {
	src     EventSource
	state   state
	node    *element.Node
	way     *element.Way
	rel     *element.Relation
	eof     bool
	skipped func(error)
}

func newAssembler(src EventSource, skipped func(error)) *assembler {
	return &assembler{src: src, skipped: skipped}
}

// next reads events until the next top-level element is complete, or the
// input ends. Recoverable errors (*Error) abort the current element and
// reset the assembler to the root state; the caller can continue with the
// next call. A *TokenizerError is fatal.
func (a *assembler) next() (assembled, error) {
	if a.eof {
		return assembled{eof: true}, nil
	}
	for {
		ev, err := a.src.Next()
		if err != nil {
			return assembled{}, tokenizerError(err, "reading next event")
		}
		var done *assembled
		if a.state == stateRoot {
			done, err = a.root(ev)
		} else {
			done, err = a.inEntity(ev)
		}
		if err != nil {
			a.reset()
			return assembled{}, err
		}
		if done != nil {
			a.reset()
			return *done, nil
		}
	}
}

func (a *assembler) reset() {
	a.state = stateRoot
	a.node = nil
	a.way = nil
	a.rel = nil
}

func (a *assembler) root(ev Event) (*assembled, error) {
	switch ev.Type {
	case EndOfInput:
		a.eof = true
		return &assembled{eof: true}, nil
	case StartElement:
		kind, ok := Classify(ev.Name)
		if !ok {
			return nil, unrecognized(ev.Name)
		}
		switch kind {
		case KindBounds:
			b, err := parseBounds(ev.Attrs)
			if err != nil {
				return nil, err
			}
			return &assembled{bounds: b}, nil
		case KindNode:
			n, err := parseNode(ev.Attrs)
			if err != nil {
				return nil, err
			}
			a.node = n
			a.state = stateInNode
		case KindWay:
			id, err := idAttr(ev.Attrs, "id", ErrMalformedWay)
			if err != nil {
				return nil, err
			}
			a.way = &element.Way{ID: id}
			a.state = stateInWay
		case KindRelation:
			id, err := idAttr(ev.Attrs, "id", ErrMalformedRelation)
			if err != nil {
				return nil, err
			}
			a.rel = &element.Relation{ID: id}
			a.state = stateInRelation
		default:
			// tag, nd and member are only valid inside an element
			return nil, unrecognized(ev.Name)
		}
	}
	return nil, nil
}

func (a *assembler) inEntity(ev Event) (*assembled, error) {
	open, errKind := a.state.kind()

	switch ev.Type {
	case EndOfInput:
		a.eof = true
		return nil, missing(errKind, "</"+open.String()+">")
	case EndElement:
		kind, ok := Classify(ev.Name)
		if !ok {
			return nil, unrecognized(ev.Name)
		}
		if kind != open {
			// no depth tracking, only the closing tag of the open element
			// completes it
			return nil, nil
		}
		switch a.state {
		case stateInNode:
			return &assembled{node: a.node}, nil
		case stateInWay:
			return &assembled{way: a.way}, nil
		default:
			return &assembled{rel: a.rel}, nil
		}
	case StartElement:
		kind, ok := Classify(ev.Name)
		if !ok {
			return nil, nil
		}
		switch {
		case kind == KindTag:
			tag, err := parseTag(ev.Attrs)
			if err != nil {
				a.skip(err)
				return nil, nil
			}
			a.addTag(tag)
		case kind == KindNodeRef && a.state == stateInWay:
			ref, err := parseNodeRef(ev.Attrs)
			if err != nil {
				return nil, err
			}
			a.way.Refs = append(a.way.Refs, ref)
		case kind == KindMember && a.state == stateInRelation:
			m, err := parseMember(ev.Attrs)
			if err != nil {
				return nil, err
			}
			a.rel.Members = append(a.rel.Members, m)
		default:
			return nil, illegalNesting(errKind, ev.Name)
		}
	}
	return nil, nil
}

func (a *assembler) addTag(tag element.Tag) {
	switch a.state {
	case stateInNode:
		a.node.Tags = append(a.node.Tags, tag)
	case stateInWay:
		a.way.Tags = append(a.way.Tags, tag)
	case stateInRelation:
		a.rel.Tags = append(a.rel.Tags, tag)
	}
}

func (a *assembler) skip(err error) {
	if a.skipped != nil {
		a.skipped(err)
	}
}

func parseBounds(attrs []Attr) (*element.Bounds, error) {
	var err error
	b := &element.Bounds{}
	if b.MinLat, err = coordAttr(attrs, "minlat", ErrBoundsMissing); err != nil {
		return nil, err
	}
	if b.MinLon, err = coordAttr(attrs, "minlon", ErrBoundsMissing); err != nil {
		return nil, err
	}
	if b.MaxLat, err = coordAttr(attrs, "maxlat", ErrBoundsMissing); err != nil {
		return nil, err
	}
	if b.MaxLon, err = coordAttr(attrs, "maxlon", ErrBoundsMissing); err != nil {
		return nil, err
	}
	return b, nil
}

func parseNode(attrs []Attr) (*element.Node, error) {
	var err error
	n := &element.Node{}
	if n.ID, err = idAttr(attrs, "id", ErrMalformedNode); err != nil {
		return nil, err
	}
	if n.Lat, err = coordAttr(attrs, "lat", ErrMalformedNode); err != nil {
		return nil, err
	}
	if n.Lon, err = coordAttr(attrs, "lon", ErrMalformedNode); err != nil {
		return nil, err
	}
	return n, nil
}

func parseTag(attrs []Attr) (element.Tag, error) {
	k, ok := findAttr(attrs, "k")
	if !ok {
		return element.Tag{}, missing(ErrMalformedTag, "k")
	}
	v, ok := findAttr(attrs, "v")
	if !ok {
		return element.Tag{}, missing(ErrMalformedTag, "v")
	}
	return element.Tag{Key: k, Value: v}, nil
}

func parseNodeRef(attrs []Attr) (element.NodeRef, error) {
	id, err := idAttr(attrs, "ref", ErrMalformedWay)
	if err != nil {
		return 0, err
	}
	return element.NodeRef(id), nil
}

func parseMember(attrs []Attr) (element.Member, error) {
	typ, ok := findAttr(attrs, "type")
	if !ok {
		return element.Member{}, missing(ErrMalformedRelation, "type")
	}
	memberType, ok := element.ParseMemberType(typ)
	if !ok {
		return element.Member{}, &Error{Kind: ErrMalformedRelation, Reason: ReasonInvalid, Element: "type=" + typ}
	}
	id, err := idAttr(attrs, "ref", ErrMalformedRelation)
	if err != nil {
		return element.Member{}, err
	}
	ref, err := element.NewRef(memberType, id)
	if err != nil {
		return element.Member{}, invalid(ErrMalformedRelation, "type", err)
	}
	// role is optional
	role, _ := findAttr(attrs, "role")
	return element.Member{Ref: ref, Role: role}, nil
}

func idAttr(attrs []Attr, name string, kind ErrorKind) (element.ID, error) {
	raw, ok := findAttr(attrs, name)
	if !ok {
		return 0, missing(kind, name)
	}
	id, err := element.ParseID(raw)
	if err != nil {
		return 0, invalid(kind, name, err)
	}
	return id, nil
}

func coordAttr(attrs []Attr, name string, kind ErrorKind) (element.Coordinate, error) {
	raw, ok := findAttr(attrs, name)
	if !ok {
		return 0, missing(kind, name)
	}
	c, err := element.ParseCoordinate(raw)
	if err != nil {
		return 0, invalid(kind, name, err)
	}
	return c, nil
}
