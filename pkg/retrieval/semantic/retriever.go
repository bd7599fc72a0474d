// Package semantic wraps the external embedding and nearest-neighbor
// services behind the retrieval core's contract.
package semantic

import (
	"context"
	"time"

	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/pkg/apperror"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/internal/repository/specification"
	"doc-intelligence-be/internal/repository/unitofwork"
	"doc-intelligence-be/pkg/embedding"
	"doc-intelligence-be/pkg/retrieval"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultThreshold is the minimum cosine similarity a hit must clear.
const DefaultThreshold = 0.2

// Retriever obtains a query vector from the embedding provider and runs an
// owner-scoped nearest-neighbor lookup. Failures of either external call
// propagate as retrieval errors; the fusion engine decides whether to
// degrade, not this component.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	queryCache        *gocache.Cache // query text -> vector, avoids re-embedding repeats
	timeout           time.Duration
	logger            logger.ILogger
}

func NewRetriever(embeddingProvider embedding.EmbeddingProvider, timeout time.Duration, log logger.ILogger) *Retriever {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Retriever{
		embeddingProvider: embeddingProvider,
		queryCache:        gocache.New(5*time.Minute, 10*time.Minute),
		timeout:           timeout,
		logger:            log,
	}
}

// Retrieve returns up to limit documents with similarity >= threshold,
// richest match first. Chunk hits for the same document are deduplicated,
// keeping the best similarity.
func (r *Retriever) Retrieve(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	userId uuid.UUID,
	query string,
	limit int,
	threshold float64,
) ([]*retrieval.ScoredDocument, error) {

	queryVector, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, apperror.Retrieval("semantic", err)
	}

	scoredResults, err := uow.DocumentEmbeddingRepository().SearchSimilarWithScore(
		ctx, queryVector, limit, userId, threshold,
	)
	if err != nil {
		return nil, apperror.Retrieval("semantic", err)
	}

	// Deduplicate chunks per document. Results arrive sorted by similarity
	// descending, so the first hit per document is its best.
	ids := make([]uuid.UUID, 0, len(scoredResults))
	scoreByDoc := make(map[uuid.UUID]float64)
	for _, sr := range scoredResults {
		docId := sr.Embedding.DocumentId
		if _, seen := scoreByDoc[docId]; seen {
			continue
		}
		ids = append(ids, docId)
		scoreByDoc[docId] = clamp01(sr.Similarity)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByIDs{IDs: ids},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperror.Retrieval("semantic", err)
	}

	docById := make(map[uuid.UUID]*entity.Document, len(documents))
	for _, doc := range documents {
		docById[doc.Id] = doc
	}

	// Preserve similarity order from the nearest-neighbor service.
	results := make([]*retrieval.ScoredDocument, 0, len(ids))
	for _, id := range ids {
		doc, ok := docById[id]
		if !ok {
			// Embedding row without a live document (e.g. deleted mid-query)
			r.logger.Warn("semantic", "dropping stale embedding hit", map[string]interface{}{
				"document_id": id,
			})
			continue
		}
		results = append(results, &retrieval.ScoredDocument{
			Document:      doc,
			SemanticScore: scoreByDoc[id],
			Provenance:    retrieval.ProvenanceSemantic,
		})
	}

	return results, nil
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if cached, found := r.queryCache.Get(query); found {
		return cached.([]float32), nil
	}

	// The embedding call is an external network hop; bound it so a stalled
	// provider cannot block the whole search.
	embedCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	vector, err := r.embeddingProvider.Generate(embedCtx, query)
	if err != nil {
		return nil, err
	}

	r.queryCache.Set(query, vector, gocache.DefaultExpiration)
	return vector, nil
}

// clamp01 defends against similarity values outside the service's promised
// [0,1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
