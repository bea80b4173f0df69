package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coffersTech/logserv/internal/model"
	"github.com/coffersTech/logserv/internal/storage"
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

func drain(t *testing.T, path string, end int64) []model.Line {
	t.Helper()
	cr, err := storage.Open(path, end)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s := NewScanner(cr)
	defer s.Close()

	var lines []model.Line
	for {
		line, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		lines = append(lines, line)
	}
	return lines
}

func TestScanner_ReverseLineFidelity(t *testing.T) {
	content := "AAA\nBBB\nCCC"
	path := writeTemp(t, content)

	lines := drain(t, path, -1)

	var texts []string
	for _, l := range lines {
		texts = append(texts, string(l.Bytes))
	}
	if got := strings.Join(texts, "\n"); got != "CCC\nBBB\nAAA" {
		t.Fatalf("unexpected reverse order: %q", got)
	}
	if lines[len(lines)-1].Offset != 0 {
		t.Fatalf("oldest line must start at offset 0, got %d", lines[len(lines)-1].Offset)
	}
}

func TestScanner_TrailingNewlineNoPhantomLine(t *testing.T) {
	path := writeTemp(t, "ABC\n")

	lines := drain(t, path, -1)
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line, got %d: %v", len(lines), lines)
	}
	if string(lines[0].Bytes) != "ABC" {
		t.Fatalf("unexpected line: %q", lines[0].Bytes)
	}
}

func TestScanner_OffsetResumability(t *testing.T) {
	content := "AAA\nBBB\nCCC\nDDD"
	path := writeTemp(t, content)

	all := drain(t, path, -1)
	if len(all) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(all))
	}

	// Resuming at the second-newest line's offset must reproduce exactly
	// the lines strictly older than it, in the same order.
	resumeFrom := all[1].Offset
	older := drain(t, path, resumeFrom)

	if len(older) != len(all)-2 {
		t.Fatalf("expected %d older lines, got %d", len(all)-2, len(older))
	}
	for i, l := range older {
		want := all[i+2]
		if l.Offset != want.Offset || string(l.Bytes) != string(want.Bytes) {
			t.Errorf("line %d: got {%d,%q}, want {%d,%q}", i, l.Offset, l.Bytes, want.Offset, want.Bytes)
		}
	}
}

func TestScanner_CrossChunkLineReassembly(t *testing.T) {
	long := strings.Repeat("x", storage.ChunkSize+500)
	content := "HEAD\n" + long
	path := writeTemp(t, content)

	lines := drain(t, path, -1)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	// The reassembled line is longer than the entry cap, so only its first
	// MaxResultEntryLength bytes come back.
	if string(lines[0].Bytes) != long[:model.MaxResultEntryLength] {
		t.Fatalf("cross-chunk line mismatch: got len %d, want len %d", len(lines[0].Bytes), model.MaxResultEntryLength)
	}
	if string(lines[1].Bytes) != "HEAD" || lines[1].Offset != 0 {
		t.Fatalf("unexpected head line: %q offset=%d", lines[1].Bytes, lines[1].Offset)
	}
}

func TestScanner_LongLineTruncatedFromEnd(t *testing.T) {
	long := strings.Repeat("y", model.MaxResultEntryLength+100)
	content := "HEAD\n" + long
	path := writeTemp(t, content)

	lines := drain(t, path, -1)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	got := lines[0]
	if len(got.Bytes) != model.MaxResultEntryLength {
		t.Fatalf("expected truncation to %d bytes, got %d", model.MaxResultEntryLength, len(got.Bytes))
	}
	if string(got.Bytes) != long[:model.MaxResultEntryLength] {
		t.Fatalf("truncated line must keep the first bytes of the original line")
	}
	// The offset returned for a truncated line is its true start, not
	// shifted by the truncation.
	if got.Offset != int64(len("HEAD\n")) {
		t.Fatalf("expected true line start offset %d, got %d", len("HEAD\n"), got.Offset)
	}
}

func TestScanner_EmptyFile(t *testing.T) {
	path := writeTemp(t, "")
	lines := drain(t, path, -1)
	if len(lines) != 0 {
		t.Fatalf("expected no lines from an empty file, got %d", len(lines))
	}
}
