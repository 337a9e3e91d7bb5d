// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jiter_test

import (
	"testing"

	"github.com/creachadair/jiter"
	"github.com/creachadair/mds/mtest"
)

func TestAllocate(t *testing.T) {
	p := jiter.NewParser()
	if got := p.Capacity(); got != 0 {
		t.Errorf("Capacity of new parser: got %d, want 0", got)
	}
	if err := p.Allocate(1000, 48); err != nil {
		t.Fatalf("Allocate(1000, 48): unexpected error: %v", err)
	}
	if got := p.Capacity(); got != 1000 {
		t.Errorf("Capacity: got %d, want 1000", got)
	}
	if got := p.MaxDepth(); got != 48 {
		t.Errorf("MaxDepth: got %d, want 48", got)
	}

	// A smaller request must not shrink existing buffers.
	if err := p.Allocate(500, 0); err != nil {
		t.Fatalf("Allocate(500, 0): unexpected error: %v", err)
	}
	if got := p.Capacity(); got != 1000 {
		t.Errorf("Capacity after smaller request: got %d, want 1000", got)
	}

	if err := p.Allocate(2000, 0); err != nil {
		t.Fatalf("Allocate(2000, 0): unexpected error: %v", err)
	}
	if got := p.Capacity(); got != 2000 {
		t.Errorf("Capacity after growth: got %d, want 2000", got)
	}

	// Requests past the ceiling fail without disturbing the buffers.
	p.SetMaxCapacity(100)
	if err := p.Allocate(5000, 0); jiter.ErrorKind(err) != jiter.CapacityExceeded {
		t.Errorf("Allocate(5000, 0): got %v, want CapacityExceeded", err)
	}
	if got := p.Capacity(); got != 2000 {
		t.Errorf("Capacity after failed request: got %d, want 2000", got)
	}

	mtest.MustPanic(t, func() { p.SetMaxCapacity(-1) })
}

func TestCapacityLimit(t *testing.T) {
	p := jiter.NewParser()
	p.SetMaxCapacity(16)
	_, err := p.IterateString(`{"key": "a value longer than sixteen bytes"}`)
	if jiter.ErrorKind(err) != jiter.CapacityExceeded {
		t.Errorf("Iterate oversize input: got %v, want CapacityExceeded", err)
	}

	// The parser must remain usable after a refused input.
	doc, err := p.IterateString(`{"ok":true}`)
	if err != nil {
		t.Fatalf("Iterate: unexpected error: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Errorf("Close: unexpected error: %v", err)
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		input string
		want  jiter.Kind
	}{
		{"", jiter.EmptyInput},
		{" \t\r\n ", jiter.EmptyInput},
		{"\"\xff\"", jiter.BadEncoding},
		{"[\"ab\x01cd\"]", jiter.ControlCharacter},
		{`"abc`, jiter.UnclosedString},
		{`{"key": "open`, jiter.UnclosedString},
	}
	p := jiter.NewParser()
	for _, test := range tests {
		doc, err := p.IterateString(test.input)
		if err == nil {
			doc.Close()
			t.Errorf("Iterate %#q: got no error, want %v", test.input, test.want)
			continue
		}
		if got := jiter.ErrorKind(err); got != test.want {
			t.Errorf("Iterate %#q: got error kind %v, want %v", test.input, got, test.want)
		}
	}
}

func TestParserBusy(t *testing.T) {
	p := jiter.NewParser()
	doc, err := p.IterateString(`[1,2,3]`)
	if err != nil {
		t.Fatalf("Iterate: unexpected error: %v", err)
	}
	if _, err := p.IterateString(`true`); jiter.ErrorKind(err) != jiter.ParserBusy {
		t.Errorf("Iterate while busy: got %v, want ParserBusy", err)
	}
	if _, err := p.IterateManyBytes([]byte(`true`), 0); jiter.ErrorKind(err) != jiter.ParserBusy {
		t.Errorf("IterateMany while busy: got %v, want ParserBusy", err)
	}
	if err := doc.Close(); err != nil {
		t.Errorf("Close: unexpected error: %v", err)
	}

	// Closing the document must release the parser.
	doc, err = p.IterateString(`true`)
	if err != nil {
		t.Fatalf("Iterate after close: unexpected error: %v", err)
	}
	doc.Close()
}

func TestParserReuse(t *testing.T) {
	p := jiter.NewParser()
	for i, input := range []string{`{"a":1}`, `[true, false]`, `"text"`, `3.5`} {
		doc, err := p.IterateString(input)
		if err != nil {
			t.Fatalf("Iterate %#q (round %d): unexpected error: %v", input, i, err)
		}
		if err := doc.Close(); err != nil {
			t.Errorf("Close %#q (round %d): unexpected error: %v", input, i, err)
		}
	}

	// A scan failure must not leave the parser wedged.
	if _, err := p.IterateString("  "); jiter.ErrorKind(err) != jiter.EmptyInput {
		t.Fatalf("Iterate empty: got %v, want EmptyInput", err)
	}
	doc, err := p.IterateString(`null`)
	if err != nil {
		t.Fatalf("Iterate after failure: unexpected error: %v", err)
	}
	doc.Close()
}

func TestTrailingContent(t *testing.T) {
	p := jiter.NewParser()
	t.Run("AfterRead", func(t *testing.T) {
		doc, err := p.IterateString(`true false`)
		if err != nil {
			t.Fatalf("Iterate: unexpected error: %v", err)
		}
		if got, err := doc.Root().Bool(); err != nil || !got {
			t.Errorf("Root.Bool: got %v, %v; want true, nil", got, err)
		}
		if err := doc.Close(); jiter.ErrorKind(err) != jiter.TrailingContent {
			t.Errorf("Close: got %v, want TrailingContent", err)
		}
	})
	t.Run("Unread", func(t *testing.T) {
		doc, err := p.IterateString(`{"a":1} 2`)
		if err != nil {
			t.Fatalf("Iterate: unexpected error: %v", err)
		}
		if err := doc.Close(); jiter.ErrorKind(err) != jiter.TrailingContent {
			t.Errorf("Close: got %v, want TrailingContent", err)
		}
	})
	t.Run("OnlySpace", func(t *testing.T) {
		doc, err := p.IterateString("17 \n ")
		if err != nil {
			t.Fatalf("Iterate: unexpected error: %v", err)
		}
		if err := doc.Close(); err != nil {
			t.Errorf("Close: unexpected error: %v", err)
		}
	})
}

func TestClosedDocument(t *testing.T) {
	p := jiter.NewParser()
	doc, err := p.IterateString(`{"a":1}`)
	if err != nil {
		t.Fatalf("Iterate: unexpected error: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: unexpected error: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Errorf("Second Close: got %v, want nil", err)
	}
	mtest.MustPanic(t, func() { doc.Root() })
	mtest.MustPanic(t, func() { doc.Object() })
}

func TestPadding(t *testing.T) {
	t.Run("Pad", func(t *testing.T) {
		data := []byte(`[1]`)
		in := jiter.Pad(data)
		if got := in.Len(); got != len(data) {
			t.Errorf("Len: got %d, want %d", got, len(data))
		}
		if free := cap(in.Bytes()) - in.Len(); free < jiter.Padding {
			t.Errorf("Padding: got %d spare bytes, want at least %d", free, jiter.Padding)
		}
	})
	t.Run("InPlaceReuses", func(t *testing.T) {
		buf := make([]byte, 3, 3+jiter.Padding)
		copy(buf, `[1]`)
		in := jiter.PadInPlace(buf)
		if got := in.Bytes(); &got[0] != &buf[0] {
			t.Error("PadInPlace copied a buffer that already had room")
		}
	})
	t.Run("InPlaceCopies", func(t *testing.T) {
		buf := []byte(`[1]`)
		in := jiter.PadInPlace(buf)
		if free := cap(in.Bytes()) - in.Len(); free < jiter.Padding {
			t.Errorf("Padding: got %d spare bytes, want at least %d", free, jiter.Padding)
		}
	})
	t.Run("Zero", func(t *testing.T) {
		var in jiter.Padded
		p := jiter.NewParser()
		if _, err := p.Iterate(in); jiter.ErrorKind(err) != jiter.EmptyInput {
			t.Errorf("Iterate zero Padded: got %v, want EmptyInput", err)
		}
	})
}
