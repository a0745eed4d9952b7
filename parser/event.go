package parser

import (
	"encoding/xml"
	"io"
)

type EventType int

const (
	// Other is any token the parser does not care about: text, comments,
	// processing instructions, directives.
	Other EventType = iota
	StartElement
	EndElement
	EndOfInput
)

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Event is a single token of the markup document.
type Event struct {
	Type EventType
	// Name is the local element name for StartElement and EndElement.
	Name string
	// Attrs are the attributes of a StartElement in document order.
	Attrs []Attr
}

// EventSource is a tokenizer for the markup document. Errors returned by
// Next are fatal for the whole parse.
type EventSource interface {
	Next() (Event, error)
}

// findAttr returns the value of the first attribute with name.
func findAttr(attrs []Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

type xmlSource struct {
	decoder *xml.Decoder
}

// NewXMLSource returns an EventSource reading XML from r.
func NewXMLSource(r io.Reader) EventSource {
	return &xmlSource{decoder: xml.NewDecoder(r)}
}

func (s *xmlSource) Next() (Event, error) {
	token, err := s.decoder.Token()
	if err == io.EOF {
		return Event{Type: EndOfInput}, nil
	}
	if err != nil {
		return Event{}, err
	}

	switch tok := token.(type) {
	case xml.StartElement:
		e := Event{Type: StartElement, Name: tok.Name.Local}
		if len(tok.Attr) > 0 {
			e.Attrs = make([]Attr, len(tok.Attr))
			for i, attr := range tok.Attr {
				e.Attrs[i] = Attr{Name: attr.Name.Local, Value: attr.Value}
			}
		}
		return e, nil
	case xml.EndElement:
		return Event{Type: EndElement, Name: tok.Name.Local}, nil
	}
	return Event{Type: Other}, nil
}
