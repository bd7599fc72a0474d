package textsplit

import (
	"strings"
	"testing"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	chunks := Split("short note", DefaultChunkSize, DefaultOverlap)
	if len(chunks) != 1 || chunks[0] != "short note" {
		t.Fatalf("Split() = %v, want single untouched chunk", chunks)
	}
}

func TestSplitChunkSizeAndOverlap(t *testing.T) {
	text := strings.Repeat("a", 100)
	chunks := Split(text, 40, 10)

	// step is 30: chunks start at 0, 30, 60 and the last one ends the text
	if len(chunks) != 3 {
		t.Fatalf("Split() produced %d chunks, want 3", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) != 40 {
			t.Errorf("chunk %d length = %d, want 40", i, len(chunk))
		}
	}
}

func TestSplitOverlapPreservesBoundaries(t *testing.T) {
	text := "abcdefghij"
	chunks := Split(text, 6, 2)

	if chunks[0] != "abcdef" {
		t.Errorf("first chunk = %q, want abcdef", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "ef") {
		t.Errorf("second chunk = %q, want overlap with first", chunks[1])
	}
}

func TestSplitDegenerateOverlap(t *testing.T) {
	// overlap >= chunkSize must not loop forever
	chunks := Split(strings.Repeat("b", 50), 10, 10)
	if len(chunks) != 5 {
		t.Fatalf("Split() produced %d chunks, want 5", len(chunks))
	}
}

func TestSplitMultibyteSafe(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 10)
	chunks := Split(text, 20, 5)

	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk)
		rebuilt.WriteString(string(runes[5:]))
	}
	if rebuilt.String() != text {
		t.Error("chunks do not reassemble to the original text")
	}
}
