// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package structural implements the first stage of on-demand parsing: a
// single pass over an input span that records the byte offsets of all
// structurally significant characters and checks encoding and string
// well-formedness. It performs no value-level validation; numbers and
// literals are recorded by their start offset and validated only when they
// are decoded.
package structural

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Sentinel errors reported by the scanner. Errors carrying position
// information wrap these values; use errors.Is to classify them.
var (
	ErrEmpty    = errors.New("input is entirely whitespace")
	ErrEncoding = errors.New("input is not valid UTF-8")
	ErrControl  = errors.New("unescaped control character in string")
	ErrUnclosed = errors.New("string is missing its closing quote")
)

// A PosError associates a scanner error with the byte offset at which the
// problem was detected.
type PosError struct {
	Offset int
	Err    error
}

func (p *PosError) Error() string {
	return fmt.Sprintf("%s (offset %d)", p.Err.Error(), p.Offset)
}

func (p *PosError) Unwrap() error { return p.Err }

// Scan appends to dst the structural index of buf: the offsets of all "{",
// "}", "[", "]", ":" and "," characters outside strings, the opening quote
// of each string, and the first byte of each other scalar run. It reports an
// error if buf is not valid UTF-8, if a string contains an unescaped control
// character or is unterminated, or if buf holds no tokens at all.
func Scan(dst []uint32, buf []byte) ([]uint32, error) {
	idx, _, err := scan(dst, buf, false)
	if err != nil {
		return nil, err
	} else if len(idx) == 0 {
		return nil, &PosError{Offset: 0, Err: ErrEmpty}
	}
	return idx, nil
}

// ScanWindow is a variant of Scan for a batch window of a multi-document
// input. An all-whitespace window is not an error, and unless final is true
// content cut off by the end of the window does not fail the scan: a string
// left unterminated is presumed to continue in a later window, its opening
// quote is omitted from the index, and its offset is reported as trunc; a
// multibyte rune split by the window edge likewise defers the bytes from the
// start of the rune. When the window is complete, trunc is -1.
func ScanWindow(dst []uint32, buf []byte, final bool) (idx []uint32, trunc int, err error) {
	return scan(dst, buf, !final)
}

func scan(dst []uint32, buf []byte, window bool) ([]uint32, int, error) {
	n := len(buf)
	if i := invalidAt(buf); i >= 0 {
		if !window || !runeCut(buf, i) {
			return nil, -1, &PosError{Offset: i, Err: ErrEncoding}
		}
		n = i // the rune completes in a later window, scan short of it
	}
	i := 0
	for i < n {
		c := buf[i]
		switch {
		case IsSpace(c):
			i++

		case isStructural(c):
			dst = append(dst, uint32(i))
			i++

		case c == '"':
			start := i
			dst = append(dst, uint32(i))
			i++
			for i < n {
				c = buf[i]
				if c == '\\' {
					i += 2 // skip the escaped byte, validated at decode time
					continue
				} else if c == '"' {
					break
				} else if c < 0x20 {
					return nil, -1, &PosError{Offset: i, Err: ErrControl}
				}
				i++
			}
			if i >= n {
				if window {
					return dst[:len(dst)-1], start, nil
				}
				return nil, -1, &PosError{Offset: start, Err: ErrUnclosed}
			}
			i++ // closing quote

		default:
			// A number, literal, or garbage: record the start and consume the
			// run. Whatever it turns out to be is decided at decode time.
			dst = append(dst, uint32(i))
			for i < n && !IsDelimiter(buf[i]) {
				i++
			}
		}
	}
	if n < len(buf) {
		return dst, n, nil
	}
	return dst, -1, nil
}

// runeCut reports whether buf[i:] is a truncated prefix of a single
// multibyte UTF-8 sequence, a rune split by the end of the buffer.
func runeCut(buf []byte, i int) bool {
	var size int
	switch c := buf[i]; {
	case c&0xe0 == 0xc0:
		size = 2
	case c&0xf0 == 0xe0:
		size = 3
	case c&0xf8 == 0xf0:
		size = 4
	default:
		return false
	}
	if i+size <= len(buf) {
		return false
	}
	for _, c := range buf[i+1:] {
		if c&0xc0 != 0x80 {
			return false
		}
	}
	return true
}

// IsSpace reports whether c is JSON whitespace.
func IsSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isStructural(c byte) bool {
	switch c {
	case '{', '}', '[', ']', ':', ',':
		return true
	}
	return false
}

// IsDelimiter reports whether c terminates a scalar run: whitespace, a
// structural character, or a quote.
func IsDelimiter(c byte) bool { return IsSpace(c) || isStructural(c) || c == '"' }

// invalidAt returns the offset of the first invalid UTF-8 sequence in buf,
// or -1 if buf is entirely valid.
func invalidAt(buf []byte) int {
	if utf8.Valid(buf) {
		return -1
	}
	for i := 0; i < len(buf); {
		r, n := utf8.DecodeRune(buf[i:])
		if r == utf8.RuneError && n <= 1 {
			return i
		}
		i += n
	}
	return 0
}
