// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jiter

import (
	"errors"
	"fmt"
)

// Kind classifies the errors reported by this package. Callers that need to
// distinguish failure modes should compare kinds rather than error strings;
// use [ErrorKind] to recover the kind from an error value.
type Kind int

// Constants defining the valid Kind values.
const (
	NoError          Kind = iota // not an error
	AllocFailed                  // buffer allocation failed
	CapacityExceeded             // capacity or batch-size ceiling exceeded
	EmptyInput                   // input is entirely whitespace
	BadEncoding                  // input is not valid UTF-8
	ControlCharacter             // unescaped control character in a string
	UnclosedString               // string literal with no closing quote
	MalformedValue               // value does not match any JSON production
	DepthExceeded                // nesting exceeds the configured maximum
	TypeMismatch                 // value has a different type than requested
	NoSuchField                  // object has no member with the given key
	TrailingContent              // non-whitespace input after the document
	OutOfOrder                   // cursor has already moved past this value
	ParserBusy                   // a document or stream is already in flight
)

var kindStr = [...]string{
	NoError:          "no error",
	AllocFailed:      "allocation failed",
	CapacityExceeded: "capacity exceeded",
	EmptyInput:       "empty input",
	BadEncoding:      "invalid UTF-8 encoding",
	ControlCharacter: "unescaped control character",
	UnclosedString:   "unclosed string",
	MalformedValue:   "malformed value",
	DepthExceeded:    "exceeded maximum depth",
	TypeMismatch:     "type mismatch",
	NoSuchField:      "no such field",
	TrailingContent:  "trailing content after document",
	OutOfOrder:       "out-of-order iteration",
	ParserBusy:       "parser has a document in flight",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return "invalid error kind"
	}
	return kindStr[k]
}

// Error is the concrete type of errors reported by a [Parser] and the
// documents and streams it produces.
type Error struct {
	Kind    Kind   // the classification of the failure
	Offset  int    // byte offset in the input where detected, or -1
	Message string // a human-readable description
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s (offset %d)", e.Message, e.Offset)
	}
	return e.Message
}

// ErrorKind reports the kind of err, or NoError if err is nil or was not
// produced by this package.
func ErrorKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return NoError
}

func errKind(kind Kind, offset int, msg string, args ...any) *Error {
	if len(args) != 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &Error{Kind: kind, Offset: offset, Message: msg}
}
