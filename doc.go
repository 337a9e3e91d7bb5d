// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package jiter implements lazy, on-demand iteration of JSON documents.
//
// Parsing is split into two stages. The first stage makes a single pass
// over the input, recording the byte offsets of its structurally
// significant characters and checking that the input is valid UTF-8 and
// that its strings are well formed. The second stage is a forward-only
// cursor over that index: values, strings, and numbers are decoded only at
// the moment the caller reads them, and anything the caller passes over is
// skipped without being decoded at all. A structurally sound document with
// a malformed number buried inside it opens without error; the fault is
// reported only if that number is actually read.
//
// # Iterating
//
// A [Parser] owns the buffers both stages use and is intended to be reused.
// Iterate scans a single document and returns a [Document] positioned at
// its root:
//
//	p := jiter.NewParser()
//	doc, err := p.IterateString(`{"name": "Aloysius", "count": 3}`)
//	if err != nil {
//	    log.Fatalf("Iterate: %v", err)
//	}
//	defer doc.Close()
//
//	obj, err := doc.Object()
//	...
//	v, err := obj.Find("count")
//	...
//	n, err := v.Int()
//
// The cursor only moves forward. Fields are matched in order of appearance,
// and looking up a field skips undecoded past the fields before it; to scan
// a container's children again, rewind it with [Object.Rewind] or
// [Array.Rewind]. A parser admits one document at a time: close the current
// document before iterating the next.
//
// Because decoding happens while the caller navigates, the input bytes must
// remain live and unmodified until the document is closed. Inputs are bound
// through the [Padded] type, which guarantees scratch room past the logical
// end of the buffer; [Parser.IterateBytes] and [Parser.IterateString] pad
// by copying.
//
// # Streaming
//
// IterateMany iterates an input holding many concatenated documents,
// processed in batch windows of a configurable size:
//
//	s, err := p.IterateMany(in, jiter.DefaultBatchSize)
//	if err != nil {
//	    log.Fatalf("IterateMany: %v", err)
//	}
//	defer s.Close()
//	for {
//	    doc, err := s.Next()
//	    if err == io.EOF {
//	        break
//	    } else if err != nil {
//	        log.Fatalf("Next: %v", err)
//	    }
//	    // ... navigate doc
//	}
//
// Documents whose root is an object or array may abut directly; documents
// whose root is a primitive must be separated by whitespace. No document
// may exceed the batch size, and a partial document at the end of the
// input is reported as trailing content. While the caller consumes one
// window, a helper
// goroutine scans the next window's structural index so it is ready at the
// window boundary; [Parser.SetLookahead] disables this, which changes
// nothing but timing.
//
// # Errors
//
// Errors are reported as [*Error] values classified by [Kind]; use
// [ErrorKind] to dispatch on the failure mode. Value-level faults are
// deferred by design: they surface at the access that decodes them, while
// structural faults in the input surface when Iterate scans it. A parser
// remains usable after any error.
package jiter
