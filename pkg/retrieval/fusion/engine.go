// Package fusion merges keyword and semantic retrieval into a single ranked
// result list and hosts the mode dispatch for all search strategies.
package fusion

import (
	"context"
	"sort"
	"sync"

	"doc-intelligence-be/internal/pkg/apperror"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/internal/repository/specification"
	"doc-intelligence-be/internal/repository/unitofwork"
	"doc-intelligence-be/pkg/retrieval"
	"doc-intelligence-be/pkg/retrieval/lexical"
	"doc-intelligence-be/pkg/retrieval/semantic"

	"github.com/google/uuid"
)

// SearchType selects the retrieval strategy.
type SearchType string

const (
	SearchTypeSemantic SearchType = "semantic"
	SearchTypeKeyword  SearchType = "keyword"
	SearchTypeHybrid   SearchType = "hybrid"
)

// Ranking weights for hybrid fusion. Lexical scores saturate at the
// normalization cap before weighting so a single keyword-stuffed document
// cannot dominate the blend.
const (
	semanticWeight          = 0.7
	keywordWeight           = 0.3
	lexicalNormalizationCap = 100.0
)

// Engine coordinates the lexical scorer and the semantic retriever. In
// hybrid mode a semantic outage degrades to keyword-only results; in
// semantic mode the failure propagates to the caller.
type Engine struct {
	scorer    *lexical.Scorer
	retriever *semantic.Retriever
	threshold float64
	logger    logger.ILogger
}

func NewEngine(scorer *lexical.Scorer, retriever *semantic.Retriever, threshold float64, log logger.ILogger) *Engine {
	if threshold <= 0 {
		threshold = semantic.DefaultThreshold
	}
	return &Engine{
		scorer:    scorer,
		retriever: retriever,
		threshold: threshold,
		logger:    log,
	}
}

// Search dispatches to the requested strategy and returns at most limit
// documents, best first.
func (e *Engine) Search(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	userId uuid.UUID,
	query string,
	searchType SearchType,
	limit int,
) ([]*retrieval.ScoredDocument, error) {

	switch searchType {
	case SearchTypeSemantic:
		results, err := e.retriever.Retrieve(ctx, uow, userId, query, limit, e.threshold)
		if err != nil {
			return nil, err
		}
		return truncate(results, limit), nil
	case SearchTypeKeyword:
		results, err := e.keywordSearch(ctx, uow, userId, query)
		if err != nil {
			return nil, err
		}
		return truncate(results, limit), nil
	case SearchTypeHybrid:
		return e.hybridSearch(ctx, uow, userId, query, limit)
	default:
		return nil, apperror.Validation("unsupported search type: %s", searchType)
	}
}

func (e *Engine) keywordSearch(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	userId uuid.UUID,
	query string,
) ([]*retrieval.ScoredDocument, error) {

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.NotDeleted{},
	)
	if err != nil {
		return nil, apperror.Retrieval("keyword", err)
	}
	return e.scorer.Score(documents, query)
}

// hybridSearch runs both strategies concurrently and fuses the results. The
// semantic side is allowed to fail; the keyword side is not, since it only
// depends on the local database.
func (e *Engine) hybridSearch(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	userId uuid.UUID,
	query string,
	limit int,
) ([]*retrieval.ScoredDocument, error) {

	var (
		wg              sync.WaitGroup
		semanticResults []*retrieval.ScoredDocument
		semanticErr     error
		keywordResults  []*retrieval.ScoredDocument
		keywordErr      error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		semanticResults, semanticErr = e.retriever.Retrieve(ctx, uow, userId, query, limit, e.threshold)
	}()
	go func() {
		defer wg.Done()
		keywordResults, keywordErr = e.keywordSearch(ctx, uow, userId, query)
	}()
	wg.Wait()

	if keywordErr != nil {
		return nil, keywordErr
	}
	if semanticErr != nil {
		e.logger.Warn("fusion", "semantic retrieval failed, falling back to keyword results", map[string]interface{}{
			"query": query,
			"error": semanticErr.Error(),
		})
		semanticResults = nil
	}

	return truncate(Fuse(semanticResults, keywordResults), limit), nil
}

// Fuse unions the two result sets by document id and ranks them by the
// weighted blend of both signals. Semantic hits keep their insertion order
// ahead of keyword-only hits so equal combined scores preserve the
// stronger signal's ordering.
func Fuse(semanticResults, keywordResults []*retrieval.ScoredDocument) []*retrieval.ScoredDocument {
	merged := make([]*retrieval.ScoredDocument, 0, len(semanticResults)+len(keywordResults))
	byId := make(map[uuid.UUID]*retrieval.ScoredDocument)

	for _, sd := range semanticResults {
		fused := &retrieval.ScoredDocument{
			Document:      sd.Document,
			SemanticScore: sd.SemanticScore,
			Provenance:    retrieval.ProvenanceSemantic,
		}
		merged = append(merged, fused)
		byId[sd.Document.Id] = fused
	}

	for _, kd := range keywordResults {
		if existing, ok := byId[kd.Document.Id]; ok {
			existing.LexicalScore = kd.LexicalScore
			existing.Provenance = retrieval.ProvenanceHybrid
			continue
		}
		fused := &retrieval.ScoredDocument{
			Document:     kd.Document,
			LexicalScore: kd.LexicalScore,
			Provenance:   retrieval.ProvenanceKeyword,
		}
		merged = append(merged, fused)
		byId[kd.Document.Id] = fused
	}

	for _, sd := range merged {
		sd.CombinedScore = semanticWeight*sd.SemanticScore + keywordWeight*normalizeLexical(sd.LexicalScore)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CombinedScore > merged[j].CombinedScore
	})
	return merged
}

func normalizeLexical(score int) float64 {
	normalized := float64(score) / lexicalNormalizationCap
	if normalized > 1.0 {
		return 1.0
	}
	return normalized
}

func truncate(results []*retrieval.ScoredDocument, limit int) []*retrieval.ScoredDocument {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
