package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
// Implementations may truncate very long input internally. Failures are
// errors, never empty vectors.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}
