// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package escape handles decoding of JSON string escape sequences.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// AppendUnquote appends to dst the decoded contents of src, a JSON string
// value with the enclosing double quotation marks already removed, and
// returns the extended slice.
//
// Escape sequences are replaced with their unescaped equivalents, and
// surrogate pairs written as consecutive \u escapes are combined. Decoding
// never grows the text, so the result appended to dst is at most src.Len()
// bytes. An invalid, incomplete, or unpaired escape is reported as an error.
func AppendUnquote(dst []byte, src mem.RO) ([]byte, error) {
	for {
		i := mem.IndexByte(src, '\\')
		if i < 0 {
			return mem.Append(dst, src), nil
		}
		dst = mem.Append(dst, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return dst, errors.New("incomplete escape sequence")
		}

		c := src.At(0)
		src = src.SliceFrom(1)
		switch c {
		case '"', '\\', '/':
			dst = append(dst, c)
		case 'b':
			dst = append(dst, '\b')
		case 'f':
			dst = append(dst, '\f')
		case 'n':
			dst = append(dst, '\n')
		case 'r':
			dst = append(dst, '\r')
		case 't':
			dst = append(dst, '\t')
		case 'u':
			r, rest, err := decodeHexRune(src)
			if err != nil {
				return dst, err
			}
			var rbuf [utf8.UTFMax]byte
			n := utf8.EncodeRune(rbuf[:], r)
			dst = append(dst, rbuf[:n]...)
			src = rest
		default:
			return dst, fmt.Errorf("invalid character %q after escape", c)
		}
	}
}

// decodeHexRune decodes the four hex digits following a "\u" escape. If the
// value is a surrogate half, the following escape is consumed as well and
// the pair is combined. It returns the decoded rune and the unconsumed
// remainder of src.
func decodeHexRune(src mem.RO) (rune, mem.RO, error) {
	v, err := parseHex4(src)
	if err != nil {
		return 0, src, err
	}
	src = src.SliceFrom(4)
	if !utf16.IsSurrogate(v) {
		return v, src, nil
	}

	// The high half of a surrogate pair must be immediately followed by the
	// escaped low half.
	if src.Len() < 6 || src.At(0) != '\\' || src.At(1) != 'u' {
		return 0, src, errors.New("unpaired surrogate escape")
	}
	v2, err := parseHex4(src.SliceFrom(2))
	if err != nil {
		return 0, src, err
	}
	r := utf16.DecodeRune(v, v2)
	if r == utf8.RuneError {
		return 0, src, fmt.Errorf("invalid surrogate pair %04x %04x", v, v2)
	}
	return r, src.SliceFrom(6), nil
}

// parseHex4 decodes exactly four hexadecimal digits from the front of data.
func parseHex4(data mem.RO) (rune, error) {
	if data.Len() < 4 {
		return 0, errors.New("incomplete Unicode escape")
	}
	var v rune
	for i := 0; i < 4; i++ {
		b := data.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += rune(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += rune(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += rune(b - 'A' + 10)
		} else {
			return 0, fmt.Errorf("invalid hex digit %q", b)
		}
	}
	return v, nil
}
