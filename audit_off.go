// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

//go:build !jiterdebug

package jiter

// auditTrail verifies the forward-only cursor discipline in builds with the
// jiterdebug tag. In ordinary builds it does nothing and occupies no space.
type auditTrail struct{}

func (auditTrail) reset()        {}
func (auditTrail) advanceTo(int) {}
func (auditTrail) rewindTo(int)  {}
