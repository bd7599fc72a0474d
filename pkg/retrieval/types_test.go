package retrieval

import (
	"strings"
	"testing"
	"unicode/utf8"

	"doc-intelligence-be/internal/entity"

	"github.com/google/uuid"
)

func TestPreviewBoundsByCharacters(t *testing.T) {
	doc := &entity.Document{
		Id:          uuid.New(),
		Kind:        entity.DocumentKindNote,
		Title:       "Meeting notes",
		Description: strings.Repeat("日本語テキスト内容", 40), // 320 three-byte runes
	}

	got := Preview(doc, 200)

	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: last bytes %q", got[len(got)-6:])
	}
	if utf8.RuneCountInString(got) != 203 {
		t.Fatalf("preview rune count = %d, want 203 (200 + ellipsis)", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated preview missing ellipsis marker: %q", got)
	}
}

func TestPreviewShortContentUntouched(t *testing.T) {
	doc := &entity.Document{
		Id:          uuid.New(),
		Kind:        entity.DocumentKindNote,
		Description: "short note",
	}

	if got := Preview(doc, 200); got != "short note" {
		t.Fatalf("Preview = %q, want %q", got, "short note")
	}
}

func TestTruncateChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxChars int
		want     string
	}{
		{name: "under limit", input: "hello", maxChars: 10, want: "hello"},
		{name: "at limit", input: "hello", maxChars: 5, want: "hello"},
		{name: "ascii cut", input: "hello world", maxChars: 5, want: "hello..."},
		{name: "multibyte cut", input: "héllo wörld", maxChars: 6, want: "héllo ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateChars(tt.input, tt.maxChars)
			if got != tt.want {
				t.Fatalf("TruncateChars(%q, %d) = %q, want %q", tt.input, tt.maxChars, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("TruncateChars produced invalid UTF-8: %q", got)
			}
		})
	}
}
