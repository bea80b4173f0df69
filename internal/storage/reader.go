// Package storage implements the Chunk Reader: it opens a log file
// read-only and yields fixed-size byte windows from the end of the file
// toward the start, in strictly decreasing offset order.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/coffersTech/logserv/internal/model"
)

// ChunkSize is the maximum size of a single Chunk.
const ChunkSize = 64 * 1024

// ErrNotFound is returned when the requested path does not resolve to a
// regular file the process can read.
var ErrNotFound = errors.New("not found")

// ErrInvalidOffset is returned when the caller-supplied end offset exceeds
// the file's current size.
var ErrInvalidOffset = errors.New("invalid offset")

// ErrUnexpectedEOF is returned when a chunk read hits end-of-file before
// filling the requested window; the file is not supposed to shrink during
// a scan.
var ErrUnexpectedEOF = io.ErrUnexpectedEOF

// ChunkReader yields Chunks of a file in decreasing-offset order, starting
// at an optional end boundary and terminating after the chunk whose start
// offset is 0. It is a non-restartable pull iterator: call Next until it
// reports done, then Close exactly once.
type ChunkReader struct {
	file *os.File
	next int64 // exclusive end of the next chunk to read
	done bool
}

// Open opens path read-only and positions a ChunkReader so its first chunk
// covers [max(0, end-ChunkSize), end). Pass end < 0 to default to the
// file's current size.
func Open(path string, end int64) (*ChunkReader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, ErrNotFound
	}

	size := info.Size()
	if end < 0 {
		end = size
	} else if end > size {
		f.Close()
		return nil, ErrInvalidOffset
	}

	return &ChunkReader{file: f, next: end, done: false}, nil
}

// Next returns the next chunk, or ok=false once the chunk starting at
// offset 0 has already been returned.
func (cr *ChunkReader) Next() (chunk model.Chunk, ok bool, err error) {
	if cr.done {
		return model.Chunk{}, false, nil
	}

	end := cr.next
	start := end - ChunkSize
	if start < 0 {
		start = 0
	}

	buf := make([]byte, end-start)
	section := io.NewSectionReader(cr.file, start, end-start)
	if _, err := io.ReadFull(section, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return model.Chunk{}, false, fmt.Errorf("chunk read at offset %d: %w", start, ErrUnexpectedEOF)
		}
		return model.Chunk{}, false, err
	}

	cr.next = start
	if start == 0 {
		cr.done = true
	}

	return model.Chunk{Offset: start, Bytes: buf}, true, nil
}

// Close releases the underlying file handle. Safe to call once Next has
// been exhausted or on any error exit path.
func (cr *ChunkReader) Close() error {
	return cr.file.Close()
}
