package embedding

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
)

// maxInputChars keeps the input comfortably under the embedding model's
// token limit (~8192 tokens for ada-002).
const maxInputChars = 6000

// OpenAIProvider implements EmbeddingProvider using the OpenAI embeddings API
type OpenAIProvider struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIProvider(apiKey string, model string) EmbeddingProvider {
	if model == "" {
		model = string(openai.AdaEmbeddingV2)
	}
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(model),
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	cleaned := strings.TrimSpace(text)
	// Rune-bounded cut: a byte slice could split a multibyte character and
	// send invalid UTF-8 to the API.
	if utf8.RuneCountInString(cleaned) > maxInputChars {
		cleaned = string([]rune(cleaned)[:maxInputChars]) + "..."
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{cleaned},
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embedding response contained no data")
	}

	return resp.Data[0].Embedding, nil
}
