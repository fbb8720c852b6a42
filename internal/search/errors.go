// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"strings"
)

// ErrorKind classifies failures so the HTTP layer can map them to status
// codes without inspecting messages.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindMissingLocation: the query has no usable geographic center.
	KindMissingLocation
	// KindInvalidQuery: an enumerated code or paging parameter is out of range.
	KindInvalidQuery
	// KindProbeFailed: the count-discovery request failed.
	KindProbeFailed
	// KindAllPagesFailed: every fan-out page request failed.
	KindAllPagesFailed
	// KindCancelled: the caller's context ended before useful data was gathered.
	KindCancelled
	// KindUpstreamUnavailable: the credential is missing or rejected, or the
	// provider endpoint cannot be reached at all.
	KindUpstreamUnavailable
	// KindNotFound: a detail lookup matched no record.
	KindNotFound
)

var kindNames = map[ErrorKind]string{
	KindUnknown:             "unknown",
	KindMissingLocation:     "missing location",
	KindInvalidQuery:        "invalid query",
	KindProbeFailed:         "probe failed",
	KindAllPagesFailed:      "all pages failed",
	KindCancelled:           "cancelled",
	KindUpstreamUnavailable: "upstream unavailable",
	KindNotFound:            "not found",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// Slug returns the kind as a machine-readable token, e.g. "missing_location".
func (k ErrorKind) Slug() string {
	return strings.ReplaceAll(k.String(), " ", "_")
}

// Error is the typed failure returned by the aggregator and the provider.
type Error struct {
	Kind ErrorKind
	// Op names the operation that failed, e.g. "probe" or "detail".
	Op  string
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels below, so errors.Is(err, ErrProbeFailed)
// holds for any *Error of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrMissingLocation     = &Error{Kind: KindMissingLocation}
	ErrInvalidQuery        = &Error{Kind: KindInvalidQuery}
	ErrProbeFailed         = &Error{Kind: KindProbeFailed}
	ErrAllPagesFailed      = &Error{Kind: KindAllPagesFailed}
	ErrCancelled           = &Error{Kind: KindCancelled}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrNotFound            = &Error{Kind: KindNotFound}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
