// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jiter

import (
	"bytes"
	"io"
	"strconv"

	"go4.org/mem"

	"github.com/creachadair/jiter/internal/structural"
)

// Type identifies the JSON type of a value. The type of a value is decided
// by its first byte alone, so classifying a value is cheap and does not
// validate its contents.
type Type byte

// Constants defining the valid Type values.
const (
	TypeInvalid Type = iota // not a value
	TypeNull                // null
	TypeBool                // true or false
	TypeNumber              // a number, integer or floating
	TypeString              // a quoted string
	TypeArray               // [ ... ]
	TypeObject              // { ... }
)

var typeStr = [...]string{
	TypeInvalid: "invalid",
	TypeNull:    "null",
	TypeBool:    "boolean",
	TypeNumber:  "number",
	TypeString:  "string",
	TypeArray:   "array",
	TypeObject:  "object",
}

func (t Type) String() string {
	if int(t) >= len(typeStr) {
		return typeStr[TypeInvalid]
	}
	return typeStr[t]
}

// typeOf classifies a token by its first byte.
func typeOf(c byte) Type {
	switch c {
	case '{':
		return TypeObject
	case '[':
		return TypeArray
	case '"':
		return TypeString
	case 't', 'f':
		return TypeBool
	case 'n':
		return TypeNull
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return TypeNumber
	}
	return TypeInvalid
}

// A Value is a lazy view of a single JSON value that has been reached but
// not yet decoded. A Value holds no storage of its own: it is a snapshot of
// a cursor position, and its accessors decode the underlying token at the
// moment they are called.
//
// Each accessor interprets the value as a particular type and reports
// TypeMismatch if the token is not compatible. A successful read consumes
// the value; the cursor then stands at whatever follows it. Reading a value
// the cursor has already moved past reports OutOfOrder.
type Value struct {
	it    *iter
	tok   int
	depth int
}

// ready confirms the cursor still stands at v.
func (v Value) ready() *Error {
	it := v.it
	if it == nil {
		return errKind(OutOfOrder, -1, "value is not bound to a document")
	} else if it.err != nil {
		return it.err
	} else if it.pos != v.tok || it.depth != v.depth {
		return errKind(OutOfOrder, -1, "cursor has moved past this value")
	}
	return nil
}

// Type reports the JSON type of v, decided by its first byte without
// decoding. It reports TypeInvalid if the token begins no valid value, or if
// the cursor has already moved past v.
func (v Value) Type() Type {
	if v.ready() != nil {
		return TypeInvalid
	}
	return typeOf(v.it.head())
}

func (v Value) mismatch(want string) *Error {
	return errKind(TypeMismatch, v.it.offsetAt(v.tok),
		"value is %v, not %s", typeOf(v.it.head()), want)
}

// Int decodes v as a signed integer. A number with a fraction or exponent
// reports TypeMismatch; a non-number reports TypeMismatch without consuming
// v, so a different accessor may be tried.
func (v Value) Int() (int64, error) {
	if err := v.ready(); err != nil {
		return 0, err
	}
	switch typeOf(v.it.head()) {
	case TypeNumber:
		// fall through to decode
	case TypeInvalid:
		return 0, v.malformedToken()
	default:
		return 0, v.mismatch("an integer")
	}
	text := v.it.scalarText(v.tok)
	if !validNumber(text) {
		return 0, errKind(MalformedValue, v.it.offsetAt(v.tok), "invalid number %q", text)
	}
	z, err := strconv.ParseInt(string(text), 10, 64)
	if err != nil {
		if _, ferr := strconv.ParseFloat(string(text), 64); ferr == nil {
			return 0, v.mismatch("an integer")
		}
		return 0, errKind(MalformedValue, v.it.offsetAt(v.tok), "invalid number %q", text)
	}
	v.it.setPos(v.tok + 1)
	return z, nil
}

// Uint decodes v as an unsigned integer, as [Value.Int].
func (v Value) Uint() (uint64, error) {
	if err := v.ready(); err != nil {
		return 0, err
	}
	switch typeOf(v.it.head()) {
	case TypeNumber:
	case TypeInvalid:
		return 0, v.malformedToken()
	default:
		return 0, v.mismatch("an unsigned integer")
	}
	text := v.it.scalarText(v.tok)
	if !validNumber(text) {
		return 0, errKind(MalformedValue, v.it.offsetAt(v.tok), "invalid number %q", text)
	}
	z, err := strconv.ParseUint(string(text), 10, 64)
	if err != nil {
		if _, ferr := strconv.ParseFloat(string(text), 64); ferr == nil {
			return 0, v.mismatch("an unsigned integer")
		}
		return 0, errKind(MalformedValue, v.it.offsetAt(v.tok), "invalid number %q", text)
	}
	v.it.setPos(v.tok + 1)
	return z, nil
}

// Float decodes v as a floating-point number.
func (v Value) Float() (float64, error) {
	if err := v.ready(); err != nil {
		return 0, err
	}
	switch typeOf(v.it.head()) {
	case TypeNumber:
	case TypeInvalid:
		return 0, v.malformedToken()
	default:
		return 0, v.mismatch("a number")
	}
	text := v.it.scalarText(v.tok)
	if !validNumber(text) {
		return 0, errKind(MalformedValue, v.it.offsetAt(v.tok), "invalid number %q", text)
	}
	f, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return 0, errKind(MalformedValue, v.it.offsetAt(v.tok), "invalid number %q", text)
	}
	v.it.setPos(v.tok + 1)
	return f, nil
}

// Bool decodes v as a boolean.
func (v Value) Bool() (bool, error) {
	if err := v.ready(); err != nil {
		return false, err
	}
	switch typeOf(v.it.head()) {
	case TypeBool:
	case TypeInvalid:
		return false, v.malformedToken()
	default:
		return false, v.mismatch("a boolean")
	}
	text := mem.B(v.it.scalarText(v.tok))
	var b bool
	if text.Equal(mem.S("true")) {
		b = true
	} else if !text.Equal(mem.S("false")) {
		return false, errKind(MalformedValue, v.it.offsetAt(v.tok),
			"unknown literal %q", text.StringCopy())
	}
	v.it.setPos(v.tok + 1)
	return b, nil
}

// IsNull reports whether v is the null literal, consuming it if so. If v is
// any other valid value it is left unconsumed and IsNull reports false.
func (v Value) IsNull() (bool, error) {
	if err := v.ready(); err != nil {
		return false, err
	}
	switch typeOf(v.it.head()) {
	case TypeNull:
	case TypeInvalid:
		return false, v.malformedToken()
	default:
		return false, nil
	}
	if text := mem.B(v.it.scalarText(v.tok)); !text.Equal(mem.S("null")) {
		return false, errKind(MalformedValue, v.it.offsetAt(v.tok),
			"unknown literal %q", text.StringCopy())
	}
	v.it.setPos(v.tok + 1)
	return true, nil
}

// RawString returns the raw, still-escaped view of v as a string value,
// consuming it. The view remains readable after the cursor moves on.
func (v Value) RawString() (RawString, error) {
	if err := v.ready(); err != nil {
		return RawString{}, err
	}
	if v.it.head() != '"' {
		return RawString{}, v.mismatch("a string")
	}
	r := RawString{it: v.it, tok: v.tok}
	v.it.setPos(v.tok + 1)
	return r, nil
}

// StringBytes decodes v as a string, consuming it. The returned bytes alias
// the parser's scratch buffer: they remain valid until the document is
// closed, or for a stream, until the next document is produced.
func (v Value) StringBytes() ([]byte, error) {
	if err := v.ready(); err != nil {
		return nil, err
	}
	if v.it.head() != '"' {
		return nil, v.mismatch("a string")
	}
	dec, uerr := v.it.unquote(v.tok)
	if uerr != nil {
		return nil, uerr
	}
	v.it.setPos(v.tok + 1)
	return dec, nil
}

// StringCopy decodes v as a string and returns an independent copy, as
// [Value.StringBytes].
func (v Value) StringCopy() (string, error) {
	dec, err := v.StringBytes()
	if err != nil {
		return "", err
	}
	return string(dec), nil
}

// Object interprets v as an object and positions the cursor at its first
// member, reporting DepthExceeded if entering it would pass the depth limit.
func (v Value) Object() (*Object, error) {
	if err := v.ready(); err != nil {
		return nil, err
	}
	if v.it.head() != '{' {
		return nil, v.mismatch("an object")
	}
	if err := v.it.enter(); err != nil {
		return nil, err
	}
	return &Object{it: v.it, start: v.it.pos, depth: v.it.depth, pend: -1, end: -1}, nil
}

// Array interprets v as an array and positions the cursor at its first
// element, reporting DepthExceeded if entering it would pass the depth
// limit.
func (v Value) Array() (*Array, error) {
	if err := v.ready(); err != nil {
		return nil, err
	}
	if v.it.head() != '[' {
		return nil, v.mismatch("an array")
	}
	if err := v.it.enter(); err != nil {
		return nil, err
	}
	return &Array{it: v.it, start: v.it.pos, depth: v.it.depth, pend: -1, end: -1}, nil
}

// Skip advances the cursor past v without decoding any of its contents.
func (v Value) Skip() error {
	if err := v.ready(); err != nil {
		return err
	}
	if err := v.it.skipValue(); err != nil {
		return err
	}
	return nil
}

// Raw consumes v and returns its undecoded text, including all nested
// content. The result aliases the input buffer.
func (v Value) Raw() ([]byte, error) {
	if err := v.ready(); err != nil {
		return nil, err
	}
	start := int(v.it.tokens[v.tok])
	if err := v.it.skipValue(); err != nil {
		return nil, err
	}
	end := len(v.it.buf)
	if v.it.remaining() > 0 {
		end = int(v.it.tokens[v.it.pos])
	}
	for end > start && structural.IsSpace(v.it.buf[end-1]) {
		end--
	}
	return v.it.buf[start:end], nil
}

func (v Value) malformedToken() *Error {
	return errKind(MalformedValue, v.it.offsetAt(v.tok),
		"%q does not begin a value", v.it.head())
}

// A RawString is the raw, still-escaped contents of a JSON string value.
// Unlike a [Value] it is a stable view of the input: it can be read at any
// time during the lifetime of its document, independent of the cursor.
type RawString struct {
	it  *iter
	tok int
}

// Raw returns the undecoded contents of the string, without quotes.
func (r RawString) Raw() []byte { return r.it.stringText(r.tok) }

// String returns the undecoded contents of the string as text.
// For a string needing no escapes this is the decoded value.
func (r RawString) String() string { return string(r.Raw()) }

// Unquote decodes the string into the parser's scratch buffer and returns
// the decoded bytes, which remain valid until the document is closed.
func (r RawString) Unquote() ([]byte, error) {
	dec, err := r.it.unquote(r.tok)
	if err != nil {
		return nil, err
	}
	return dec, nil
}

// Equal reports whether the decoded contents of r equal s.
//
// When the raw text contains no escape sequences the comparison is a plain
// bytewise check against s and no decoding occurs; the string is unescaped
// only when an escape forces a full comparison.
func (r RawString) Equal(s string) (bool, error) {
	raw := r.Raw()
	if bytes.IndexByte(raw, '\\') < 0 {
		return mem.B(raw).Equal(mem.S(s)), nil
	}
	p := r.it.p
	n0 := len(p.scratch)
	dec, err := r.it.unquote(r.tok)
	if err != nil {
		return false, err
	}
	eq := mem.B(dec).Equal(mem.S(s))
	p.scratch = p.scratch[:n0] // the decoded copy was only needed transiently
	return eq, nil
}

// A Field is a single object member: a key and its value. The value is
// pending at the cursor; reading or skipping it (or requesting the next
// field) consumes it.
type Field struct {
	Key   RawString
	Value Value
}

// An Object is a lazy view of the members of a JSON object. Members are
// visited in order of appearance by Next; a member's value is decoded only
// if the caller reads it, and is otherwise skipped undecoded when the
// cursor moves on.
type Object struct {
	it    *iter
	start int // token index of the first member
	depth int // depth of the object's children
	pend  int // token index of the last value handed out, or -1
	end   int // token index just past the closing brace, or -1
	done  bool
}

// finish moves the cursor past the most recently produced member value if
// the caller has not already consumed it.
func (o *Object) finish() *Error {
	it := o.it
	if o.pend < 0 {
		return nil
	}
	pend := o.pend
	o.pend = -1
	if it.depth > o.depth {
		return it.skipToDepth(o.depth) // a partially iterated container
	} else if it.pos == pend {
		return it.skipValue() // an untouched value
	}
	return nil
}

// Next returns the next member of the object, or io.EOF when the members
// are exhausted. Advancing past a member whose value was not read skips the
// value without decoding it.
func (o *Object) Next() (Field, error) {
	it := o.it
	if it.err != nil {
		return Field{}, it.err
	}
	if o.done {
		if it.pos == o.end && it.depth == o.depth-1 {
			return Field{}, io.EOF
		}
		return Field{}, errKind(OutOfOrder, -1, "cursor has moved past this object")
	}
	if it.depth < o.depth {
		return Field{}, errKind(OutOfOrder, -1, "cursor has left this object")
	}
	if err := o.finish(); err != nil {
		return Field{}, err
	}
	if it.remaining() == 0 {
		return Field{}, it.fail(errKind(MalformedValue, it.end(), "unexpected end of input"))
	}

	switch c := it.head(); {
	case c == '}':
		it.setPos(it.pos + 1)
		it.depth--
		o.done, o.end = true, it.pos
		return Field{}, io.EOF
	case it.pos == o.start:
		// the first member has no separator
	case c == ',':
		it.setPos(it.pos + 1)
		if it.remaining() == 0 {
			return Field{}, it.fail(errKind(MalformedValue, it.end(), "unexpected end of input"))
		}
	default:
		return Field{}, it.fail(errKind(MalformedValue, it.offsetAt(it.pos),
			`expected "," or "}", found %q`, c))
	}

	if it.head() != '"' {
		return Field{}, it.fail(errKind(MalformedValue, it.offsetAt(it.pos),
			"object key must be a string"))
	}
	key := RawString{it: it, tok: it.pos}
	it.setPos(it.pos + 1)
	if it.remaining() == 0 || it.head() != ':' {
		return Field{}, it.fail(errKind(MalformedValue, it.offsetAt(it.pos-1),
			`expected ":" after object key`))
	}
	it.setPos(it.pos + 1)
	if it.remaining() == 0 {
		return Field{}, it.fail(errKind(MalformedValue, it.end(), "unexpected end of input"))
	}
	o.pend = it.pos
	return Field{
		Key:   key,
		Value: Value{it: it, tok: it.pos, depth: it.depth},
	}, nil
}

// Find returns the value of the first member at or after the cursor whose
// key decodes to name, skipping the members before it. If no member
// matches, Find consumes the remaining members and reports NoSuchField,
// which is distinct from any parse error: the object itself is well formed.
//
// Find searches forward only. To look up several fields without regard to
// their order, rewind the object between lookups.
func (o *Object) Find(name string) (Value, error) {
	for {
		f, err := o.Next()
		if err == io.EOF {
			return Value{}, errKind(NoSuchField, -1, "no field %q", name)
		} else if err != nil {
			return Value{}, err
		}
		ok, err := f.Key.Equal(name)
		if err != nil {
			return Value{}, err
		} else if ok {
			return f.Value, nil
		}
	}
}

// Rewind moves the cursor back to the object's first member so that its
// members can be scanned again. Rewinding is permitted while the cursor
// remains within the object or parked just past its closing brace; once the
// cursor has moved beyond that point the members are unrecoverable and
// Rewind reports OutOfOrder.
func (o *Object) Rewind() error {
	it := o.it
	if it.err != nil {
		return it.err
	}
	switch {
	case o.done:
		if it.pos != o.end || it.depth != o.depth-1 {
			return errKind(OutOfOrder, -1, "cursor has moved past this object")
		}
		it.depth++
	case it.depth < o.depth:
		return errKind(OutOfOrder, -1, "cursor has left this object")
	default:
		it.depth = o.depth
	}
	it.rewindTo(o.start)
	o.pend, o.end, o.done = -1, -1, false
	return nil
}

// An Array is a lazy view of the elements of a JSON array. Elements are
// produced in order by Next; an element is decoded only if the caller reads
// it, and is otherwise skipped undecoded when the cursor moves on.
type Array struct {
	it    *iter
	start int // token index of the first element
	depth int // depth of the array's children
	pend  int // token index of the last value handed out, or -1
	end   int // token index just past the closing bracket, or -1
	done  bool
}

func (a *Array) finish() *Error {
	it := a.it
	if a.pend < 0 {
		return nil
	}
	pend := a.pend
	a.pend = -1
	if it.depth > a.depth {
		return it.skipToDepth(a.depth)
	} else if it.pos == pend {
		return it.skipValue()
	}
	return nil
}

// Next returns the next element of the array, or io.EOF when the elements
// are exhausted. Advancing past an element that was not read skips it
// without decoding.
func (a *Array) Next() (Value, error) {
	it := a.it
	if it.err != nil {
		return Value{}, it.err
	}
	if a.done {
		if it.pos == a.end && it.depth == a.depth-1 {
			return Value{}, io.EOF
		}
		return Value{}, errKind(OutOfOrder, -1, "cursor has moved past this array")
	}
	if it.depth < a.depth {
		return Value{}, errKind(OutOfOrder, -1, "cursor has left this array")
	}
	if err := a.finish(); err != nil {
		return Value{}, err
	}
	if it.remaining() == 0 {
		return Value{}, it.fail(errKind(MalformedValue, it.end(), "unexpected end of input"))
	}

	switch c := it.head(); {
	case c == ']':
		it.setPos(it.pos + 1)
		it.depth--
		a.done, a.end = true, it.pos
		return Value{}, io.EOF
	case it.pos == a.start:
		// the first element has no separator
	case c == ',':
		it.setPos(it.pos + 1)
		if it.remaining() == 0 {
			return Value{}, it.fail(errKind(MalformedValue, it.end(), "unexpected end of input"))
		}
	default:
		return Value{}, it.fail(errKind(MalformedValue, it.offsetAt(it.pos),
			`expected "," or "]", found %q`, c))
	}

	switch it.head() {
	case ']', '}', ':', ',':
		return Value{}, it.fail(errKind(MalformedValue, it.offsetAt(it.pos),
			"unexpected %q", it.head()))
	}
	a.pend = it.pos
	return Value{it: it, tok: it.pos, depth: it.depth}, nil
}

// Rewind moves the cursor back to the array's first element, under the same
// conditions as [Object.Rewind].
func (a *Array) Rewind() error {
	it := a.it
	if it.err != nil {
		return it.err
	}
	switch {
	case a.done:
		if it.pos != a.end || it.depth != a.depth-1 {
			return errKind(OutOfOrder, -1, "cursor has moved past this array")
		}
		it.depth++
	case it.depth < a.depth:
		return errKind(OutOfOrder, -1, "cursor has left this array")
	default:
		it.depth = a.depth
	}
	it.rewindTo(a.start)
	a.pend, a.end, a.done = -1, -1, false
	return nil
}

// validNumber reports whether text matches the JSON number production
//
//	-? (0 | [1-9][0-9]*) ('.' [0-9]+)? ([eE] [-+]? [0-9]+)?
//
// The numeric conversions accept forms JSON forbids, a bare trailing
// point among them, so the grammar is checked in full before conversion.
//
// OK: 0, 0.1, -1.0e3. Bad: 01, 1., 2.e3, .5, 1e, Infinity.
func validNumber(text []byte) bool {
	i, n := 0, len(text)
	if i < n && text[i] == '-' {
		i++
	}
	switch {
	case i < n && text[i] == '0':
		i++
	case i < n && isDigit(text[i]):
		for i < n && isDigit(text[i]) {
			i++
		}
	default:
		return false
	}
	if i < n && text[i] == '.' {
		i++
		if i >= n || !isDigit(text[i]) {
			return false
		}
		for i < n && isDigit(text[i]) {
			i++
		}
	}
	if i < n && (text[i] == 'e' || text[i] == 'E') {
		i++
		if i < n && (text[i] == '-' || text[i] == '+') {
			i++
		}
		if i >= n || !isDigit(text[i]) {
			return false
		}
		for i < n && isDigit(text[i]) {
			i++
		}
	}
	return i == n
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
