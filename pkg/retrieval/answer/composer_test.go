package answer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/pkg/apperror"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/pkg/llm"
	"doc-intelligence-be/pkg/retrieval"

	"github.com/google/uuid"
)

type stubLLM struct {
	response string
	err      error
	calls    int
	history  []llm.Message
	options  llm.Options
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	s.history = history
	for _, opt := range options {
		opt(&s.options)
	}
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func newTestComposer(provider llm.LLMProvider) *Composer {
	return NewComposer(provider, 5*time.Second, logger.NewNopLogger())
}

func scoredNote(title, description string) *retrieval.ScoredDocument {
	return &retrieval.ScoredDocument{
		Document: &entity.Document{
			Id:          uuid.New(),
			Kind:        entity.DocumentKindNote,
			Title:       title,
			Description: description,
		},
	}
}

func TestComposeNoResultsSkipsProvider(t *testing.T) {
	provider := &stubLLM{response: "should not be used"}
	composer := newTestComposer(provider)

	got, err := composer.Compose(context.Background(), "anything", nil)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if got != NoContentMessage {
		t.Errorf("Compose() = %q, want the no-content message", got)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times, want 0", provider.calls)
	}
}

func TestComposeBuildsGroundedPrompt(t *testing.T) {
	provider := &stubLLM{response: "  The budget is 50k. (Source: Budget Notes)  "}
	composer := newTestComposer(provider)

	results := []*retrieval.ScoredDocument{
		scoredNote("Budget Notes", "Budget is 50k for Q1."),
	}

	got, err := composer.Compose(context.Background(), "what is the budget?", results)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if got != "The budget is 50k. (Source: Budget Notes)" {
		t.Errorf("Compose() = %q, want trimmed provider response", got)
	}

	if len(provider.history) != 2 {
		t.Fatalf("provider got %d messages, want system + user", len(provider.history))
	}
	if provider.history[0].Role != "system" {
		t.Errorf("first message role = %q, want system", provider.history[0].Role)
	}
	prompt := provider.history[1].Content
	for _, fragment := range []string{
		"Note 1 (Budget Notes):",
		"Budget is 50k for Q1.",
		"what is the budget?",
		"(Source: Document Name)",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}

	if provider.options.Temperature != 0.1 {
		t.Errorf("temperature = %v, want 0.1", provider.options.Temperature)
	}
	if provider.options.MaxTokens != 1000 {
		t.Errorf("max tokens = %v, want 1000", provider.options.MaxTokens)
	}
}

func TestComposeCapsContextDocuments(t *testing.T) {
	provider := &stubLLM{response: "answer"}
	composer := newTestComposer(provider)

	results := []*retrieval.ScoredDocument{
		scoredNote("First", "a"),
		scoredNote("Second", "b"),
		scoredNote("Third", "c"),
		scoredNote("Fourth", "d"),
	}

	if _, err := composer.Compose(context.Background(), "q", results); err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	prompt := provider.history[1].Content
	if !strings.Contains(prompt, "Note 3 (Third):") {
		t.Error("prompt missing third document")
	}
	if strings.Contains(prompt, "Fourth") {
		t.Error("prompt includes fourth document, want top three only")
	}
}

func TestComposeTruncatesLongExcerpts(t *testing.T) {
	provider := &stubLLM{response: "answer"}
	composer := newTestComposer(provider)

	long := strings.Repeat("x", 1500)
	results := []*retrieval.ScoredDocument{scoredNote("Long", long)}

	if _, err := composer.Compose(context.Background(), "q", results); err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	prompt := provider.history[1].Content
	if !strings.Contains(prompt, strings.Repeat("x", 1000)+"...") {
		t.Error("prompt missing truncated excerpt with ellipsis")
	}
	if strings.Contains(prompt, strings.Repeat("x", 1001)) {
		t.Error("excerpt exceeds 1000 characters")
	}
}

func TestComposeTruncatesMultibyteExcerptCleanly(t *testing.T) {
	provider := &stubLLM{response: "answer"}
	composer := newTestComposer(provider)

	long := strings.Repeat("会議の議事録です。", 200) // 1800 three-byte runes
	results := []*retrieval.ScoredDocument{scoredNote("Minutes", long)}

	if _, err := composer.Compose(context.Background(), "q", results); err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	prompt := provider.history[1].Content
	if !utf8.ValidString(prompt) {
		t.Fatal("prompt contains invalid UTF-8 after excerpt truncation")
	}
	want := string([]rune(long)[:1000]) + "..."
	if !strings.Contains(prompt, want) {
		t.Error("prompt missing rune-bounded excerpt with ellipsis")
	}
}

func TestComposeProviderFailure(t *testing.T) {
	provider := &stubLLM{err: errors.New("rate limited")}
	composer := newTestComposer(provider)

	results := []*retrieval.ScoredDocument{scoredNote("Doc", "content")}

	_, err := composer.Compose(context.Background(), "q", results)
	if !apperror.IsKind(err, apperror.KindComposition) {
		t.Fatalf("Compose() error = %v, want composition failure", err)
	}
}
