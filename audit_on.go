// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

//go:build jiterdebug

package jiter

import "fmt"

// auditTrail verifies the forward-only cursor discipline: outside an
// explicit container rewind, the token position must never decrease over
// the lifetime of a document. A violation is a bug in this package, not in
// the caller's input, so it panics rather than returning an error.
type auditTrail struct {
	high int
}

func (a *auditTrail) reset() { a.high = 0 }

func (a *auditTrail) advanceTo(pos int) {
	if pos < a.high {
		panic(fmt.Sprintf("jiter: cursor moved backward from %d to %d", a.high, pos))
	}
	a.high = pos
}

func (a *auditTrail) rewindTo(pos int) { a.high = pos }
