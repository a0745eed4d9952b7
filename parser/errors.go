package parser

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the recoverable errors of the parser. All of them
// are absorbed by Parse.
type ErrorKind int

const (
	// ErrUnrecognizedElement is reported for elements that are unknown or
	// not allowed at the current position.
	ErrUnrecognizedElement ErrorKind = iota + 1
	// ErrBoundsMissing is reported for bounds with missing or invalid
	// coordinates. It clears the bounds of the document.
	ErrBoundsMissing
	// ErrMalformedTag is reported for tags without k or v. Only the tag is
	// dropped.
	ErrMalformedTag
	ErrMalformedNode
	ErrMalformedWay
	ErrMalformedRelation
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnrecognizedElement:
		return "unrecognized element"
	case ErrBoundsMissing:
		return "bounds missing"
	case ErrMalformedTag:
		return "malformed tag"
	case ErrMalformedNode:
		return "malformed node"
	case ErrMalformedWay:
		return "malformed way"
	case ErrMalformedRelation:
		return "malformed relation"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error implements error so that a kind can be the target of errors.Is.
func (k ErrorKind) Error() string {
	return k.String()
}

// Reason tells why an element was rejected.
type Reason int

const (
	// ReasonMissing is a missing mandatory attribute.
	ReasonMissing Reason = iota + 1
	// ReasonInvalid is a mandatory attribute that could not be parsed.
	ReasonInvalid
	// ReasonIllegalNesting is a structural element inside an element that
	// can not contain it.
	ReasonIllegalNesting
	// ReasonUnrecognized is an element name that is not known.
	ReasonUnrecognized
)

func (r Reason) String() string {
	switch r {
	case ReasonMissing:
		return "missing"
	case ReasonInvalid:
		return "invalid"
	case ReasonIllegalNesting:
		return "illegal nesting"
	case ReasonUnrecognized:
		return "unrecognized"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Error is a recoverable error. Parse absorbs these errors and continues
// with the next element; they are only visible through Config.Skipped.
type Error struct {
	Kind   ErrorKind
	Reason Reason
	// Element is the name of the offending element or attribute.
	Element string
	// Err is the underlying parse error for ReasonInvalid.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %s", e.Kind, e.Reason, e.Element)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the ErrorKind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// TokenizerError is returned by Parse if the underlying markup is not well
// formed. It is the only fatal error.
type TokenizerError struct {
	Err error
}

func (e *TokenizerError) Error() string {
	return "reading markup: " + e.Err.Error()
}

func (e *TokenizerError) Unwrap() error { return e.Err }

func tokenizerError(err error, msg string) error {
	return &TokenizerError{Err: errors.Wrap(err, msg)}
}

func missing(kind ErrorKind, attr string) *Error {
	return &Error{Kind: kind, Reason: ReasonMissing, Element: attr}
}

func invalid(kind ErrorKind, attr string, err error) *Error {
	return &Error{Kind: kind, Reason: ReasonInvalid, Element: attr, Err: err}
}

func illegalNesting(kind ErrorKind, name string) *Error {
	return &Error{Kind: kind, Reason: ReasonIllegalNesting, Element: name}
}

func unrecognized(name string) *Error {
	return &Error{Kind: ErrUnrecognizedElement, Reason: ReasonUnrecognized, Element: name}
}
