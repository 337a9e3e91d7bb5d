// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jiter

import (
	"go4.org/mem"

	"github.com/creachadair/jiter/internal/escape"
	"github.com/creachadair/jiter/internal/structural"
)

// An iter is a forward-only cursor over the structural index of one
// document. All value, object, and array proxies for the document share a
// single iter; the cursor position only ever moves forward, except through
// the container-local rewind the Object and Array types expose.
//
// Value-level validation happens here, at the moment a token is consumed.
// Tokens that are skipped are never decoded.
type iter struct {
	p      *Parser
	buf    []byte   // the input span (for a stream, the current window)
	tokens []uint32 // structural index, offsets into buf
	base   int      // offset of buf within the whole input, for errors
	pos    int      // index in tokens of the next unconsumed token
	depth  int      // current nesting depth

	err *Error // sticky structural error; the cursor is dead once set
}

func (it *iter) remaining() int { return len(it.tokens) - it.pos }

// head returns the first byte of the next unconsumed token.
// Precondition: it.remaining() > 0.
func (it *iter) head() byte { return it.buf[it.tokens[it.pos]] }

// offsetAt returns the input offset of the token at index tok.
func (it *iter) offsetAt(tok int) int { return it.base + int(it.tokens[tok]) }

// end returns the input offset just past the end of the span.
func (it *iter) end() int { return it.base + len(it.buf) }

func (it *iter) setPos(pos int) {
	it.p.audit.advanceTo(pos)
	it.pos = pos
}

func (it *iter) rewindTo(pos int) {
	it.p.audit.rewindTo(pos)
	it.pos = pos
}

// fail records err as the cursor's sticky error if none is set, and returns
// the error that now governs the cursor.
func (it *iter) fail(err *Error) *Error {
	if it.err == nil {
		it.err = err
	}
	return it.err
}

// enter moves the cursor past the open bracket of a container and increments
// the depth, reporting DepthExceeded if the new depth would pass the limit.
// Precondition: the head token is "{" or "[".
func (it *iter) enter() *Error {
	if it.depth+1 > it.p.maxDepth {
		return it.fail(errKind(DepthExceeded, it.offsetAt(it.pos),
			"nesting exceeds maximum depth %d", it.p.maxDepth))
	}
	it.setPos(it.pos + 1)
	it.depth++
	return nil
}

// skipValue advances the cursor past the value beginning at the current
// token without decoding any of its contents. Containers are skipped by
// counting brackets, so the cost is proportional to the number of tokens
// skipped. The cursor's depth is unchanged.
func (it *iter) skipValue() *Error {
	if it.err != nil {
		return it.err
	} else if it.remaining() == 0 {
		return it.fail(errKind(MalformedValue, it.end(), "unexpected end of input"))
	}
	switch c := it.head(); c {
	case '}', ']', ':', ',':
		return it.fail(errKind(MalformedValue, it.offsetAt(it.pos), "unexpected %q", c))
	case '{', '[':
		d := 0
		for it.remaining() > 0 {
			switch it.head() {
			case '{', '[':
				d++
			case '}', ']':
				d--
			}
			it.setPos(it.pos + 1)
			if d == 0 {
				return nil
			}
		}
		return it.fail(errKind(MalformedValue, it.end(), "unexpected end of input"))
	default:
		// A string or scalar is a single token.
		it.setPos(it.pos + 1)
		return nil
	}
}

// skipToDepth advances the cursor until its depth returns to d, consuming
// the remainder of any containers open above that depth.
func (it *iter) skipToDepth(d int) *Error {
	if it.err != nil {
		return it.err
	}
	for it.depth > d {
		if it.remaining() == 0 {
			return it.fail(errKind(MalformedValue, it.end(), "unexpected end of input"))
		}
		switch it.head() {
		case '{', '[':
			it.depth++
		case '}', ']':
			it.depth--
		}
		it.setPos(it.pos + 1)
	}
	return nil
}

// scalarText returns the raw text of the scalar token at index tok: the
// maximal run of bytes from its start that does not include whitespace, a
// structural character, or a quote.
func (it *iter) scalarText(tok int) []byte {
	off := int(it.tokens[tok])
	end := off + 1
	for end < len(it.buf) && !structural.IsDelimiter(it.buf[end]) {
		end++
	}
	return it.buf[off:end]
}

// stringText returns the raw (still escaped) contents of the string token at
// index tok, without its enclosing quotes. The scan established that every
// string token in the index has a closing quote.
func (it *iter) stringText(tok int) []byte {
	off := int(it.tokens[tok]) + 1
	end := off
	for {
		switch it.buf[end] {
		case '\\':
			end += 2
		case '"':
			return it.buf[off:end]
		default:
			end++
		}
	}
}

// unquote decodes the string token at index tok into the parser's scratch
// buffer and returns the decoded bytes. The result remains valid until the
// document is closed; each document starts with an empty scratch buffer.
func (it *iter) unquote(tok int) ([]byte, *Error) {
	p := it.p
	n0 := len(p.scratch)
	dec, err := escape.AppendUnquote(p.scratch, mem.B(it.stringText(tok)))
	if err != nil {
		return nil, errKind(MalformedValue, it.offsetAt(tok), "invalid string: %v", err)
	}
	p.scratch = dec
	return dec[n0:], nil
}
