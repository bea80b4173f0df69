package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestOpen_NotFound(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(filepath.Join(dir, "missing.log"), -1); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpen_Directory(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir, -1); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for a directory, got %v", err)
	}
}

func TestOpen_InvalidOffset(t *testing.T) {
	path := writeTemp(t, "hello")
	if _, err := Open(path, 100); err != ErrInvalidOffset {
		t.Fatalf("expected ErrInvalidOffset, got %v", err)
	}
}

func TestChunkReader_SingleChunk(t *testing.T) {
	content := "AAA\nBBB\nCCC"
	path := writeTemp(t, content)

	cr, err := Open(path, -1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cr.Close()

	chunk, ok, err := cr.Next()
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	if chunk.Offset != 0 || string(chunk.Bytes) != content {
		t.Fatalf("unexpected chunk: offset=%d bytes=%q", chunk.Offset, chunk.Bytes)
	}

	if _, ok, err := cr.Next(); ok || err != nil {
		t.Fatalf("expected exhaustion, got ok=%v err=%v", ok, err)
	}
}

func TestChunkReader_MultipleChunks(t *testing.T) {
	content := make([]byte, ChunkSize*2+10)
	for i := range content {
		content[i] = byte('a' + i%26)
	}
	path := writeTemp(t, string(content))

	cr, err := Open(path, -1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cr.Close()

	var offsets []int64
	for {
		chunk, ok, err := cr.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		offsets = append(offsets, chunk.Offset)
	}

	if len(offsets) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(offsets), offsets)
	}
	if offsets[0] != ChunkSize*2+10-ChunkSize {
		t.Errorf("first chunk offset = %d", offsets[0])
	}
	if offsets[len(offsets)-1] != 0 {
		t.Errorf("last chunk must start at offset 0, got %d", offsets[len(offsets)-1])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] >= offsets[i-1] {
			t.Errorf("offsets not strictly decreasing: %v", offsets)
		}
	}
}

func TestChunkReader_ResumeBoundary(t *testing.T) {
	content := "AAA\nBBB\nCCC\n"
	path := writeTemp(t, content)

	cr, err := Open(path, 8)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cr.Close()

	chunk, ok, err := cr.Next()
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	if string(chunk.Bytes) != "AAA\nBBB\n" {
		t.Fatalf("expected window up to the resume boundary, got %q", chunk.Bytes)
	}
}
