// Package engine implements the Reverse Line Scanner and the Search
// Engine: together they turn a ChunkReader's byte windows into filtered,
// newest-first log lines.
package engine

import (
	"bytes"

	"github.com/coffersTech/logserv/internal/model"
	"github.com/coffersTech/logserv/internal/storage"
)

// Scanner produces a finite, non-restartable sequence of model.Line values
// in descending offset order out of a ChunkReader's chunks. It is a pull
// iterator: call Next repeatedly until ok is false, then stop.
type Scanner struct {
	cr *storage.ChunkReader

	chunk     model.Chunk
	haveChunk bool
	lineEnd   int // exclusive search boundary within chunk.Bytes
	firstLoad bool

	partial []byte // accumulated, possibly-capped prefix of the line in progress
	done    bool
}

// NewScanner wraps cr in a line-emitting iterator. cr is owned by the
// Scanner from this point on; callers should not call cr.Next directly.
func NewScanner(cr *storage.ChunkReader) *Scanner {
	return &Scanner{cr: cr, firstLoad: true}
}

// Next returns the next line in descending offset order. ok is false once
// the sequence is exhausted; err is non-nil only if the underlying chunk
// read failed.
func (s *Scanner) Next() (line model.Line, ok bool, err error) {
	if s.done {
		return model.Line{}, false, nil
	}

	for {
		if !s.haveChunk {
			chunk, more, err := s.cr.Next()
			if err != nil {
				s.done = true
				return model.Line{}, false, err
			}
			if !more {
				s.done = true
				if len(s.partial) > 0 {
					line := model.Line{Offset: 0, Bytes: s.partial}
					s.partial = nil
					return line, true, nil
				}
				return model.Line{}, false, nil
			}

			s.chunk = chunk
			s.haveChunk = true
			s.lineEnd = len(chunk.Bytes)

			// The very first window of any scan ends either at true EOF
			// or at a byte offset that is itself the start of a
			// previously-returned line — in both cases the byte right
			// before that boundary is a newline that has already been
			// accounted for, and must not be rediscovered as the
			// terminator of a phantom empty line.
			if s.firstLoad {
				s.firstLoad = false
				if s.lineEnd > 0 && s.chunk.Bytes[s.lineEnd-1] == '\n' {
					s.lineEnd--
				}
			}
		}

		window := s.chunk.Bytes[:s.lineEnd]
		p := bytes.LastIndexByte(window, '\n')
		if p == -1 {
			s.partial = combineCapped(window, s.partial, model.MaxResultEntryLength)
			s.haveChunk = false
			continue
		}

		tail := s.chunk.Bytes[p+1 : s.lineEnd]
		lineBytes := combineCapped(tail, s.partial, model.MaxResultEntryLength)
		offset := s.chunk.Offset + int64(p) + 1
		s.partial = nil
		s.lineEnd = p
		return model.Line{Offset: offset, Bytes: lineBytes}, true, nil
	}
}

// Close releases the underlying ChunkReader's file handle.
func (s *Scanner) Close() error {
	return s.cr.Close()
}

// combineCapped concatenates front (discovered in the chunk just
// processed, always closer to the line's true start) with back (whatever
// had already been accumulated from chunks processed earlier, always
// closer to the line's end), capping the result at maxLen bytes and
// dropping any overflow from the back — i.e. from the end of the line.
func combineCapped(front, back []byte, maxLen int) []byte {
	if len(front) >= maxLen {
		out := make([]byte, maxLen)
		copy(out, front[:maxLen])
		return out
	}

	total := len(front) + len(back)
	if total > maxLen {
		total = maxLen
	}
	out := make([]byte, total)
	n := copy(out, front)
	copy(out[n:], back[:total-n])
	return out
}
