package semantic

import (
	"context"
	"errors"
	"testing"
	"time"

	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/pkg/apperror"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/internal/repository/contract"
	"doc-intelligence-be/internal/repository/unitofwork/uowtest"
	"doc-intelligence-be/pkg/retrieval"

	"github.com/google/uuid"
)

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (s *stubEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func scoredChunk(docId uuid.UUID, chunkIndex int, similarity float64) *contract.ScoredDocumentEmbedding {
	return &contract.ScoredDocumentEmbedding{
		Embedding: &entity.DocumentEmbedding{
			Id:         uuid.New(),
			DocumentId: docId,
			ChunkIndex: chunkIndex,
		},
		Similarity: similarity,
	}
}

func newTestRetriever(embedder *stubEmbedder) *Retriever {
	return NewRetriever(embedder, 5*time.Second, logger.NewNopLogger())
}

func TestRetrieveOrdersAndDeduplicates(t *testing.T) {
	userId := uuid.New()
	docA := &entity.Document{Id: uuid.New(), UserId: userId, Kind: entity.DocumentKindNote, Title: "A"}
	docB := &entity.Document{Id: uuid.New(), UserId: userId, Kind: entity.DocumentKindNote, Title: "B"}

	uow := uowtest.New()
	uow.Documents.Docs = []*entity.Document{docB, docA} // hydration order differs from score order
	uow.Embeddings.Scored = []*contract.ScoredDocumentEmbedding{
		scoredChunk(docA.Id, 0, 0.9),
		scoredChunk(docA.Id, 1, 0.85), // same document, weaker chunk
		scoredChunk(docB.Id, 0, 0.5),
	}

	r := newTestRetriever(&stubEmbedder{vector: []float32{0.1, 0.2}})

	got, err := r.Retrieve(context.Background(), uow, userId, "query", 10, DefaultThreshold)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Retrieve() returned %d results, want 2", len(got))
	}
	if got[0].Document.Id != docA.Id || got[1].Document.Id != docB.Id {
		t.Errorf("Retrieve() order = [%s %s], want [%s %s]",
			got[0].Document.Id, got[1].Document.Id, docA.Id, docB.Id)
	}
	if got[0].SemanticScore != 0.9 {
		t.Errorf("best chunk score = %v, want 0.9", got[0].SemanticScore)
	}
	if got[0].Provenance != retrieval.ProvenanceSemantic {
		t.Errorf("provenance = %q, want %q", got[0].Provenance, retrieval.ProvenanceSemantic)
	}
}

func TestRetrieveClampsSimilarity(t *testing.T) {
	userId := uuid.New()
	docHigh := &entity.Document{Id: uuid.New(), UserId: userId, Kind: entity.DocumentKindNote}
	docLow := &entity.Document{Id: uuid.New(), UserId: userId, Kind: entity.DocumentKindNote}

	uow := uowtest.New()
	uow.Documents.Docs = []*entity.Document{docHigh, docLow}
	uow.Embeddings.Scored = []*contract.ScoredDocumentEmbedding{
		scoredChunk(docHigh.Id, 0, 1.3),
		scoredChunk(docLow.Id, 0, -0.1),
	}

	r := newTestRetriever(&stubEmbedder{vector: []float32{1}})

	got, err := r.Retrieve(context.Background(), uow, userId, "query", 10, DefaultThreshold)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if got[0].SemanticScore != 1.0 {
		t.Errorf("over-range similarity = %v, want clamped to 1.0", got[0].SemanticScore)
	}
	if got[1].SemanticScore != 0.0 {
		t.Errorf("under-range similarity = %v, want clamped to 0.0", got[1].SemanticScore)
	}
}

func TestRetrieveWrapsEmbeddingFailure(t *testing.T) {
	uow := uowtest.New()
	r := newTestRetriever(&stubEmbedder{err: errors.New("provider down")})

	_, err := r.Retrieve(context.Background(), uow, uuid.New(), "query", 10, DefaultThreshold)
	if !apperror.IsRetrieval(err, "semantic") {
		t.Fatalf("Retrieve() error = %v, want semantic retrieval failure", err)
	}
}

func TestRetrieveWrapsSearchFailure(t *testing.T) {
	uow := uowtest.New()
	uow.Embeddings.SearchErr = errors.New("pgvector offline")

	r := newTestRetriever(&stubEmbedder{vector: []float32{1}})

	_, err := r.Retrieve(context.Background(), uow, uuid.New(), "query", 10, DefaultThreshold)
	if !apperror.IsRetrieval(err, "semantic") {
		t.Fatalf("Retrieve() error = %v, want semantic retrieval failure", err)
	}
}

func TestRetrieveCachesQueryEmbedding(t *testing.T) {
	uow := uowtest.New()
	embedder := &stubEmbedder{vector: []float32{0.5}}
	r := newTestRetriever(embedder)

	for i := 0; i < 3; i++ {
		if _, err := r.Retrieve(context.Background(), uow, uuid.New(), "same query", 10, DefaultThreshold); err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
	}
	if embedder.calls != 1 {
		t.Errorf("embedder called %d times, want 1 (cached)", embedder.calls)
	}
}

func TestRetrieveNoMatches(t *testing.T) {
	uow := uowtest.New()
	r := newTestRetriever(&stubEmbedder{vector: []float32{1}})

	got, err := r.Retrieve(context.Background(), uow, uuid.New(), "query", 10, DefaultThreshold)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Retrieve() returned %d results, want 0", len(got))
	}
}
