// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jiter

// Padding is the number of addressable bytes that must follow the logical end
// of an input span given to [Parser.Iterate]. The scanner is allowed to read
// (but never depend upon) bytes in the padding region.
const Padding = 32

// A Padded is an input span with at least [Padding] spare bytes of capacity
// beyond its logical length. The zero Padded is an empty input.
//
// Construct a Padded with [Pad] or [PadInPlace]; the padding invariant is
// established at construction so that a [Document] or [Stream] can never be
// bound to an improperly sized buffer.
type Padded struct {
	buf []byte // len(buf) == logical length; cap(buf) >= len(buf)+Padding
}

// Pad copies data into a freshly allocated buffer with [Padding] spare bytes
// of capacity and returns the padded span. The input slice is not retained.
func Pad(data []byte) Padded {
	buf := make([]byte, len(data), len(data)+Padding)
	copy(buf, data)
	return Padded{buf: buf}
}

// PadString copies the contents of s into a padded span, as [Pad].
func PadString(s string) Padded {
	buf := make([]byte, len(s), len(s)+Padding)
	copy(buf, s)
	return Padded{buf: buf}
}

// PadInPlace returns a padded span sharing the storage of data if its
// capacity already provides [Padding] spare bytes beyond its length.
// Otherwise it copies, as [Pad]. The caller must not modify data while any
// document bound to the span is live.
func PadInPlace(data []byte) Padded {
	if cap(data)-len(data) >= Padding {
		return Padded{buf: data}
	}
	return Pad(data)
}

// Bytes returns the logical contents of the span, without padding.
func (p Padded) Bytes() []byte { return p.buf }

// Len reports the logical length of the span in bytes.
func (p Padded) Len() int { return len(p.buf) }
