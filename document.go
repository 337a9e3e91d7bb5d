// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jiter

// A Document is the root handle for one in-flight JSON document. It is a
// lease on the parser's buffers: the parser cannot begin another document
// until this one is closed. The input span bound to the document must
// remain live and unmodified for the document's lifetime.
//
// Documents produced by a [Stream] are closed implicitly when the stream
// advances; only documents from [Parser.Iterate] need to be closed by the
// caller, and closing one twice is harmless. Using a document after it is
// closed panics.
type Document struct {
	it    *iter
	root  int // token index of the document's root value
	open  bool
	owned bool // true if this document holds the parser slot itself
}

func (d *Document) mustOpen() {
	if !d.open {
		panic("jiter: use of closed document")
	}
}

// Root returns the document's root value. The value is subject to the usual
// forward-only discipline: once the root has been consumed, reading the
// result of a later Root call reports OutOfOrder.
func (d *Document) Root() Value {
	d.mustOpen()
	return Value{it: d.it, tok: d.root, depth: 0}
}

// Type reports the JSON type of the document's root value, or TypeInvalid
// once the root has been consumed.
func (d *Document) Type() Type { return d.Root().Type() }

// Object interprets the document's root as an object, as [Value.Object].
func (d *Document) Object() (*Object, error) { return d.Root().Object() }

// Array interprets the document's root as an array, as [Value.Array].
func (d *Document) Array() (*Array, error) { return d.Root().Array() }

// Close finishes the document and releases the parser for its next
// document. Whatever remains of the document is skipped, undecoded; if the
// skip exposes unbalanced structure the error is reported here. For a
// single-document parse, Close reports TrailingContent if non-whitespace
// input follows the document. Closing an already closed document is a
// no-op.
func (d *Document) Close() error {
	if !d.open {
		return nil
	}
	d.open = false
	it := d.it
	if d.owned {
		defer it.p.release()
	}
	if it.err != nil {
		return nil // already reported at the access that caused it
	}

	if it.pos == d.root {
		if err := it.skipValue(); err != nil {
			return err
		}
	} else if it.depth > 0 {
		if err := it.skipToDepth(0); err != nil {
			return err
		}
	}
	if d.owned && it.remaining() > 0 {
		return errKind(TrailingContent, it.offsetAt(it.pos),
			"unexpected content after document")
	}
	return nil
}
