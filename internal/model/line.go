// Package model holds the data types shared across LogServ's scanning,
// search and HTTP layers. None of these types carry behavior beyond small
// helpers; the logic that produces and consumes them lives in the engine,
// storage, token, validate, server and cluster packages.
package model

// MaxResultEntryLength is the byte cap applied to any single emitted Line.
// Lines longer than this are truncated, keeping the first bytes.
const MaxResultEntryLength = 2048

// Chunk is a contiguous slice of a file, tagged with the file offset of its
// first byte. Produced by the Chunk Reader and consumed by the Scanner.
type Chunk struct {
	Offset int64
	Bytes  []byte
}

// Line is a complete log entry, exclusive of its trailing newline. Offset is
// the byte position in the file of the line's first byte.
type Line struct {
	Offset int64
	Bytes  []byte
}
