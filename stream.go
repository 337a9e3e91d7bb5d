// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jiter

import (
	"io"

	"github.com/creachadair/jiter/internal/structural"
)

// A Stream iterates the documents of an input containing any number of
// concatenated JSON documents, produced by [Parser.IterateMany]. The input
// is processed in windows of at most the stream's batch size, and each
// window is structurally scanned once; the documents within a window are
// then handed out one at a time, each as lazy as a single-document parse.
//
// Obtaining the next document implicitly finishes the current one, so at
// most one document from a stream is usable at a time. Errors are reported
// in input order; an error from Next is terminal for the stream.
type Stream struct {
	p         *Parser
	data      []byte
	batchSize int

	it    iter      // cursor over the current window
	cur   *Document // document most recently produced
	start int       // input offset of the next window (sequential mode)
	index int       // input offset of the current document
	trail error     // trailing-content error pending at the end of the window
	err   error     // terminal error, once reported
	eof   bool

	ready chan batch    // lookahead handoff; nil means sequential
	quit  chan struct{} // closed to stop the lookahead worker
}

// A batch is one scanned window: its bytes, the structural index covering
// the complete documents inside it, and where the next window begins.
type batch struct {
	base  int      // input offset of the window
	buf   []byte   // the window bytes; nil when the input is exhausted
	idx   []uint32 // token offsets, relative to buf
	next  int      // input offset of the following window
	trail error    // trailing content after the window's last document
	err   error    // error reported at this position, if any
}

// Next returns the next document of the stream, or io.EOF when the input is
// exhausted. The previous document, if any, is finished first: whatever the
// caller did not read of it is skipped undecoded, and a structural fault
// exposed by that skip is reported here, in input order.
func (s *Stream) Next() (*Document, error) {
	if s.err != nil {
		return nil, s.err
	} else if s.eof {
		return nil, io.EOF
	}
	if s.cur != nil {
		d := s.cur
		s.cur = nil
		if err := d.Close(); err != nil {
			s.err = err
			return nil, err
		}
	}
	for {
		if s.it.remaining() > 0 {
			s.index = s.it.offsetAt(s.it.pos)
			s.p.scratch = s.p.scratch[:0]
			s.cur = &Document{it: &s.it, root: s.it.pos, open: true}
			return s.cur, nil
		}
		if s.trail != nil {
			s.err = s.trail
			return nil, s.err
		}
		b, ok := s.nextBatch()
		if !ok {
			s.eof = true
			return nil, io.EOF
		}
		if b.err != nil {
			s.err = b.err
			return nil, b.err
		}
		s.trail = b.trail
		s.p.audit.reset()
		s.it = iter{p: s.p, buf: b.buf, tokens: b.idx, base: b.base}
	}
}

// Index reports the byte offset within the input of the document most
// recently returned by Next.
func (s *Stream) Index() int { return s.index }

// Close stops the stream and releases the parser for its next document.
// Any current document becomes unusable. Close is idempotent.
func (s *Stream) Close() {
	if s.quit != nil {
		close(s.quit)
		for range s.ready {
		}
		s.quit, s.ready = nil, nil
	}
	if s.cur != nil {
		s.cur.open = false
		s.cur = nil
	}
	if s.p != nil {
		s.p.release()
		s.p, s.eof = nil, true
	}
}

// nextBatch obtains the next scanned window, either from the lookahead
// worker or by scanning inline.
func (s *Stream) nextBatch() (batch, bool) {
	if s.ready != nil {
		b, ok := <-s.ready
		return b, ok
	}
	b := s.scanWindow(s.start, s.p.index)
	if b.buf == nil && b.err == nil {
		return batch{}, false
	}
	s.start = b.next
	return b, true
}

// startLookahead launches the helper goroutine that keeps one window of
// structural scanning in flight ahead of the caller. The worker alternates
// between the parser's two index buffers: while the caller consumes the
// window in one buffer, the worker scans the next window into the other.
// The unbuffered handoff keeps the pipeline exactly two deep: the worker
// cannot begin window N+2 until the caller has accepted window N+1 and
// thereby abandoned the buffer that window N occupies.
//
// A scan error found by the worker is carried in its batch and surfaces
// only when the caller reaches that window, so the sequence of documents
// and errors is identical to the sequential fallback.
func (s *Stream) startLookahead() {
	s.ready = make(chan batch)
	s.quit = make(chan struct{})
	bufs := [2][]uint32{s.p.index, s.p.spare}
	go func() {
		defer close(s.ready)
		start, turn := 0, 0
		for {
			b := s.scanWindow(start, bufs[turn])
			turn = 1 - turn
			if b.buf == nil && b.err == nil {
				return
			}
			select {
			case s.ready <- b:
			case <-s.quit:
				return
			}
			if b.err != nil {
				return
			}
			start = b.next
		}
	}()
}

// scanWindow scans the window beginning at input offset start into dst and
// reports the batch covering its complete documents. A nil buf with a nil
// err means the input is exhausted.
func (s *Stream) scanWindow(start int, dst []uint32) batch {
	data := s.data
	for start < len(data) && structural.IsSpace(data[start]) {
		start++
	}
	if start >= len(data) {
		return batch{base: start, next: start}
	}
	end := start + s.batchSize
	final := end >= len(data)
	if final {
		end = len(data)
	}
	win := data[start:end]

	idx, trunc, err := structural.ScanWindow(dst[:0], win, final)
	if err != nil {
		return batch{base: start, err: scanError(err, start)}
	}
	if final {
		// The last window: the complete documents are yielded, and any
		// partial document left at the end of the input is trailing garbage.
		ntok, consumed := completeDocs(win, idx, len(win), true)
		b := batch{base: start, buf: win, idx: idx[:ntok], next: len(data)}
		for consumed < len(win) {
			if !structural.IsSpace(win[consumed]) {
				b.trail = errKind(TrailingContent, start+consumed,
					"incomplete content at end of input")
				break
			}
			consumed++
		}
		return b
	}

	cut := len(win)
	if trunc >= 0 {
		cut = trunc
	}
	ntok, consumed := completeDocs(win, idx, cut, false)
	if ntok == 0 {
		return batch{base: start, err: errKind(CapacityExceeded, start,
			"document exceeds batch size %d", s.batchSize)}
	}
	return batch{base: start, buf: win, idx: idx[:ntok], next: start + consumed}
}

// completeDocs walks the token index of a window and reports the number of
// leading tokens that form whole documents, along with the number of window
// bytes those documents cover. A trailing document that cannot be proven
// complete within the window, whether an unclosed container or a scalar run
// flush against the cut point that may continue in the next window, is
// excluded, to be rescanned at the start of the next window. In the final
// window nothing follows the cut, so a scalar run ending there is complete.
func completeDocs(win []byte, idx []uint32, cut int, final bool) (ntok, consumed int) {
	i := 0
	for i < len(idx) {
		d := 0
		j := i
		complete, endOff := false, 0
		for j < len(idx) {
			off := int(idx[j])
			c := win[off]
			switch c {
			case '{', '[':
				d++
			case '}', ']':
				d--
			}
			j++
			if d < 0 {
				// A stray close bracket at top level: make it a document of
				// its own, reported as malformed when read.
				complete, endOff, d = true, off+1, 0
				break
			}
			if d != 0 {
				continue
			}
			switch c {
			case '"':
				complete, endOff = true, off+stringTokenLen(win, off)
			case '{', '[', '}', ']', ':', ',':
				// A balanced container, or a stray separator that will be
				// reported as malformed when the document is read.
				complete, endOff = true, off+1
			default:
				sEnd := off + 1
				for sEnd < len(win) && !structural.IsDelimiter(win[sEnd]) {
					sEnd++
				}
				if sEnd < cut || final {
					complete, endOff = true, sEnd
				} else {
					complete = false // possibly truncated at the window edge
				}
			}
			break
		}
		if !complete || d != 0 {
			break
		}
		ntok, consumed = j, endOff
		i = j
	}
	return ntok, consumed
}

// stringTokenLen returns the length in bytes of the complete string token
// beginning at off, including both quotes.
func stringTokenLen(win []byte, off int) int {
	i := off + 1
	for {
		switch win[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1 - off
		default:
			i++
		}
	}
}
