// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jiter

import (
	"errors"

	"github.com/creachadair/jiter/internal/structural"
)

// Defaults and limits for parser configuration.
const (
	// DefaultBatchSize is the batch size used by [Parser.IterateMany] when
	// the caller does not choose one.
	DefaultBatchSize = 1_000_000

	// MinBatchSize is the smallest batch size IterateMany accepts. No JSON
	// document of interest fits in fewer bytes, and very small windows make
	// the scanner behave pathologically.
	MinBatchSize = 32

	// DefaultMaxDepth is the default ceiling on nesting depth.
	DefaultMaxDepth = 1024

	// DefaultMaxCapacity is the default ceiling on automatic buffer growth,
	// the largest input a structural index of 32-bit offsets can describe.
	DefaultMaxCapacity = 1<<32 - Padding
)

// A Parser owns the reusable buffers needed to iterate JSON documents: the
// structural index produced by the first-stage scan, and the scratch space
// into which strings are unescaped. A Parser is cheap to create but reusing
// one across documents amortizes its allocations.
//
// At most one [Document] or [Stream] produced by a Parser may be live at a
// time, because the buffers are reused in place; a second call to Iterate or
// IterateMany before the previous result is closed reports ParserBusy. The
// methods of a Parser and of the documents it produces must not be used
// concurrently from multiple goroutines.
type Parser struct {
	capacity    int
	maxCapacity int
	maxDepth    int

	index   []uint32 // structural index for the document in flight
	spare   []uint32 // second index buffer, used by stream lookahead
	scratch []byte   // string unescape output, reset per document

	lookahead bool
	busy      bool

	audit auditTrail
}

// NewParser constructs a new parser with zero capacity and the default
// configuration. Buffers are allocated on first use, or explicitly via
// [Parser.Allocate].
func NewParser() *Parser {
	return &Parser{
		maxCapacity: DefaultMaxCapacity,
		maxDepth:    DefaultMaxDepth,
		lookahead:   true,
	}
}

// Capacity reports the largest document, in bytes, the parser's current
// buffers can accept without reallocation.
func (p *Parser) Capacity() int { return p.capacity }

// MaxCapacity reports the ceiling on automatic capacity growth.
func (p *Parser) MaxCapacity() int { return p.maxCapacity }

// MaxDepth reports the current ceiling on nesting depth.
func (p *Parser) MaxDepth() int { return p.maxDepth }

// SetMaxCapacity sets the ceiling on future capacity growth. It does not
// shrink buffers that are already allocated. It panics if n < 0.
func (p *Parser) SetMaxCapacity(n int) {
	if n < 0 {
		panic("jiter: negative max capacity")
	}
	p.maxCapacity = n
}

// SetLookahead enables (true) or disables (false) the background window
// lookahead used by streams from future IterateMany calls. Lookahead is
// enabled by default; disabling it yields the identical sequence of
// documents and errors, only without pipelining.
func (p *Parser) SetLookahead(ok bool) { p.lookahead = ok }

// Allocate ensures the parser has buffers for documents up to capacity bytes
// long and maxDepth levels of nesting. If maxDepth <= 0 the current depth
// ceiling is kept. Allocate is idempotent: if the current capacity already
// suffices, no allocation occurs and the configuration is unchanged.
func (p *Parser) Allocate(capacity, maxDepth int) error {
	if capacity < 0 {
		return errKind(CapacityExceeded, -1, "negative capacity %d", capacity)
	} else if capacity > p.maxCapacity {
		return errKind(CapacityExceeded, -1,
			"capacity %d exceeds maximum %d", capacity, p.maxCapacity)
	} else if capacity > DefaultMaxCapacity {
		return errKind(AllocFailed, -1, "capacity %d is not indexable", capacity)
	}
	if maxDepth > 0 {
		p.maxDepth = maxDepth
	}
	if capacity <= p.capacity {
		return nil
	}

	// Worst case, every input byte is a structural token. Unescaping never
	// grows text, so the combined strings of a document fit in capacity.
	p.index = make([]uint32, 0, capacity)
	p.scratch = make([]byte, 0, capacity+Padding)
	p.capacity = capacity
	return nil
}

// ensure grows the parser to at least n bytes of capacity, bounded by the
// configured maximum.
func (p *Parser) ensure(n int) error {
	if n <= p.capacity {
		return nil
	}
	return p.Allocate(n, 0)
}

// Iterate begins iterating a single JSON document contained in the padded
// span in. The input is not parsed or validated up front: Iterate runs only
// the structural scan, and value-level errors such as malformed numbers or
// invalid escapes are reported later, when the value is actually read. The
// returned document borrows the parser's buffers and must be closed before
// the parser is used again.
//
// Iterate reports an error of kind EmptyInput if the input is entirely
// whitespace, BadEncoding if it is not valid UTF-8, ControlCharacter or
// UnclosedString for structurally broken strings, CapacityExceeded if the
// input is larger than the configured maximum, and ParserBusy if a previous
// document or stream is still open.
func (p *Parser) Iterate(in Padded) (*Document, error) {
	if p.busy {
		return nil, errKind(ParserBusy, -1, "a document or stream is already in flight")
	}
	data := in.Bytes()
	if err := p.ensure(len(data)); err != nil {
		return nil, err
	}
	idx, err := structural.Scan(p.index[:0], data)
	if err != nil {
		return nil, scanError(err, 0)
	}
	p.index = idx
	p.scratch = p.scratch[:0]
	p.audit.reset()
	p.busy = true
	return &Document{
		it:    &iter{p: p, buf: data, tokens: idx},
		open:  true,
		owned: true,
	}, nil
}

// IterateBytes copies data into a padded buffer and iterates it, as
// [Parser.Iterate].
func (p *Parser) IterateBytes(data []byte) (*Document, error) { return p.Iterate(Pad(data)) }

// IterateString copies s into a padded buffer and iterates it, as
// [Parser.Iterate].
func (p *Parser) IterateString(s string) (*Document, error) { return p.Iterate(PadString(s)) }

// IterateMany begins iterating an input containing any number of
// concatenated JSON documents. Documents whose top-level value is an object
// or array may directly abut; documents whose top-level value is a primitive
// must be separated from what follows by whitespace. The input is processed
// in windows of at most batchSize bytes, and no single document may exceed
// batchSize; if batchSize <= 0 the [DefaultBatchSize] is used. An entirely
// empty input yields a stream of no documents rather than an error.
//
// The returned stream borrows the parser's buffers and must be closed before
// the parser is used again.
func (p *Parser) IterateMany(in Padded, batchSize int) (*Stream, error) {
	if p.busy {
		return nil, errKind(ParserBusy, -1, "a document or stream is already in flight")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize < MinBatchSize {
		return nil, errKind(CapacityExceeded, -1,
			"batch size %d is below the minimum %d", batchSize, MinBatchSize)
	} else if batchSize > p.maxCapacity {
		return nil, errKind(CapacityExceeded, -1,
			"batch size %d exceeds maximum capacity %d", batchSize, p.maxCapacity)
	}
	data := in.Bytes()
	if err := p.ensure(min(batchSize, len(data))); err != nil {
		return nil, err
	}
	p.scratch = p.scratch[:0]
	p.audit.reset()
	p.busy = true

	s := &Stream{p: p, data: data, batchSize: batchSize}
	if p.lookahead {
		if cap(p.spare) < cap(p.index) {
			p.spare = make([]uint32, 0, cap(p.index))
		}
		s.startLookahead()
	}
	return s, nil
}

// IterateManyBytes copies data into a padded buffer and streams it, as
// [Parser.IterateMany].
func (p *Parser) IterateManyBytes(data []byte, batchSize int) (*Stream, error) {
	return p.IterateMany(Pad(data), batchSize)
}

// release frees the single-document slot.
func (p *Parser) release() { p.busy = false }

// scanError translates a structural scanner error into an *Error, shifting
// any embedded offset by base.
func scanError(err error, base int) error {
	off := -1
	var pe *structural.PosError
	if errors.As(err, &pe) {
		off = pe.Offset + base
	}
	switch {
	case errors.Is(err, structural.ErrEmpty):
		return errKind(EmptyInput, off, "input is entirely whitespace")
	case errors.Is(err, structural.ErrEncoding):
		return errKind(BadEncoding, off, "input is not valid UTF-8")
	case errors.Is(err, structural.ErrControl):
		return errKind(ControlCharacter, off, "unescaped control character in string")
	case errors.Is(err, structural.ErrUnclosed):
		return errKind(UnclosedString, off, "string is missing its closing quote")
	}
	return err
}
