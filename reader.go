// Copyright 2019 Yegor Myskin. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tailsafe

import (
	"io"
	"iter"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// Reader turns a Stream into a lazy sequence of decoded text lines, handling
// lines that straddle block boundaries. The line terminator is derived from
// the configured encoding's representation of '\n', so multi-byte encodings
// split correctly; don't pass an encoding whose encoder prepends a byte-order
// mark (use the unicode.IgnoreBOM variants), a decoded leading BOM is stripped
// from the text instead.
//
// A Reader assumes exclusive ownership by one consumer; it does no internal
// locking.
type Reader struct {
	src Stream

	dec        *encoding.Decoder
	term       []byte
	blockSize  int
	maxLineLen int

	pos int64
}

// NewReader wraps src. See WithEncoding, WithBlockSize and WithMaxLineLength
// for the defaults.
func NewReader(src Stream, opts ...ReaderOption) (*Reader, error) {
	if src == nil {
		return nil, errors.New("nil stream to read")
	}

	var o readerOptions
	for _, p := range [][]ReaderOption{withDefaultReaderOptions(), opts} {
		for _, opt := range p {
			opt(&o)
		}
	}
	if o.blockSize <= 0 {
		return nil, errors.Errorf("invalid block size %d", o.blockSize)
	}
	if o.maxLineLen < 0 {
		return nil, errors.Errorf("invalid maximum line length %d", o.maxLineLen)
	}

	term, err := o.encoding.NewEncoder().Bytes([]byte("\n"))
	if err != nil {
		return nil, errors.Wrap(err, "encoding line terminator")
	}

	return &Reader{
		src:        src,
		dec:        o.encoding.NewDecoder(),
		term:       term,
		blockSize:  o.blockSize,
		maxLineLen: o.maxLineLen,
	}, nil
}

// Position reports how many bytes of the source have been resolved into
// emitted lines. It only moves forward.
func (r *Reader) Position() int64 {
	return r.pos
}

// Lines returns a forward-only sequence of decoded lines. Lines are emitted
// BOM-stripped and without trailing '\r'/'\n'; when a maximum line length is
// configured, longer lines come out as consecutive chunks with the true
// remainder last. A trailing line without terminator is emitted once the
// source reports no further bytes.
//
// The sequence is not restartable: iterating again resumes from wherever the
// previous iteration stopped, which for a resilient source that vanished
// means an empty sequence until the file reappears and grows past the
// current position.
func (r *Reader) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		pos, err := r.src.Seek(0, io.SeekCurrent)
		if err != nil {
			yield("", errors.Wrap(err, "reading source position"))
			return
		}
		r.pos = pos

		var remainder []byte
		defer func() {
			// park the source at the resolved-line boundary so the next
			// iteration re-reads bytes still sitting in the remainder
			_, _ = r.src.Seek(r.pos, io.SeekStart)
		}()

		block := make([]byte, r.blockSize)
		for {
			total, err := r.src.Length()
			if err != nil {
				yield("", errors.Wrap(err, "reading source length"))
				return
			}
			if r.pos+int64(len(remainder)) >= total {
				break
			}

			n, err := r.src.Read(block)
			if err != nil && err != io.EOF {
				yield("", errors.Wrap(err, "reading source block"))
				return
			}
			if n == 0 {
				break
			}

			remainder = append(remainder, block[:n]...)
			offset := 0
			for {
				i := IndexSeq(remainder, r.term, offset)
				if i < 0 {
					break
				}

				end := i + len(r.term)
				line, err := r.decode(remainder[offset:end])
				if err != nil {
					yield("", err)
					return
				}
				r.pos += int64(end - offset)
				offset = end

				if !r.emit(line, yield) {
					return
				}
			}
			remainder = append([]byte(nil), remainder[offset:]...)
		}

		if len(remainder) > 0 {
			line, err := r.decode(remainder)
			if err != nil {
				yield("", err)
				return
			}
			r.pos += int64(len(remainder))
			r.emit(line, yield)
		}
	}
}

// emit yields line, chunked when a maximum line length is set. It reports
// whether the consumer wants more.
func (r *Reader) emit(line string, yield func(string, error) bool) bool {
	if r.maxLineLen <= 0 {
		return yield(line, nil)
	}

	runes := []rune(line)
	for len(runes) > r.maxLineLen {
		if !yield(string(runes[:r.maxLineLen]), nil) {
			return false
		}
		runes = runes[r.maxLineLen:]
	}
	return yield(string(runes), nil)
}

func (r *Reader) decode(raw []byte) (string, error) {
	text, err := r.dec.Bytes(raw)
	if err != nil {
		return "", errors.Wrap(err, "decoding line")
	}
	return trimEOL(strings.TrimPrefix(string(text), "\uFEFF")), nil
}

// trimEOL cuts the trailing \r and \n sequences from a decoded line.
func trimEOL(s string) string {
	// inline optimization with goto instead of for
Loop:
	if len(s) == 0 {
		return s
	}

	switch s[len(s)-1] {
	case '\n', '\r':
		s = s[:len(s)-1]
		goto Loop
	}

	return s
}
