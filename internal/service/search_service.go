package service

import (
	"context"
	"sync"

	"doc-intelligence-be/internal/dto"
	"doc-intelligence-be/internal/pkg/apperror"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/internal/repository/unitofwork"
	"doc-intelligence-be/pkg/retrieval"
	"doc-intelligence-be/pkg/retrieval/answer"
	"doc-intelligence-be/pkg/retrieval/fusion"

	"github.com/google/uuid"
)

const (
	defaultSearchLimit = 10
	previewMaxChars    = 200
)

type ISearchService interface {
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error)
	Compare(ctx context.Context, userId uuid.UUID, query string, limit int) (*dto.SearchComparisonResponse, error)
}

type searchService struct {
	uowFactory unitofwork.RepositoryFactory
	engine     *fusion.Engine
	composer   *answer.Composer
	logger     logger.ILogger
}

func NewSearchService(
	uowFactory unitofwork.RepositoryFactory,
	engine *fusion.Engine,
	composer *answer.Composer,
	log logger.ILogger,
) ISearchService {
	return &searchService{
		uowFactory: uowFactory,
		engine:     engine,
		composer:   composer,
		logger:     log,
	}
}

// Search retrieves documents with the requested strategy and composes a
// grounded answer from the strongest matches.
func (s *searchService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	if req.Query == "" {
		return nil, apperror.Validation("query is required")
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}
	if limit < 0 {
		return nil, apperror.Validation("limit must be positive")
	}

	searchType := fusion.SearchType(req.SearchType)
	if searchType == "" {
		searchType = fusion.SearchTypeHybrid
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	results, err := s.engine.Search(ctx, uow, userId, req.Query, searchType, limit)
	if err != nil {
		return nil, err
	}

	aiResponse, err := s.composer.Compose(ctx, req.Query, results)
	if err != nil {
		return nil, err
	}

	relevant := make([]dto.RelevantDocument, 0, len(results))
	for _, sd := range results {
		relevant = append(relevant, toRelevantDocument(sd))
	}

	return &dto.SearchResponse{
		Query:             req.Query,
		SearchType:        string(searchType),
		DocumentsFound:    len(results),
		RelevantDocuments: relevant,
		AiResponse:        aiResponse,
	}, nil
}

// Compare runs every strategy against the same query so their rankings can
// be inspected side by side. A failing strategy is reported in place; the
// others still return their results.
func (s *searchService) Compare(ctx context.Context, userId uuid.UUID, query string, limit int) (*dto.SearchComparisonResponse, error) {
	if query == "" {
		return nil, apperror.Validation("query is required")
	}

	strategies := []fusion.SearchType{
		fusion.SearchTypeSemantic,
		fusion.SearchTypeKeyword,
		fusion.SearchTypeHybrid,
	}

	items := make([]*dto.ComparisonStrategyItem, len(strategies))
	var wg sync.WaitGroup
	wg.Add(len(strategies))
	for i, strategy := range strategies {
		go func(i int, strategy fusion.SearchType) {
			defer wg.Done()
			result, err := s.Search(ctx, userId, &dto.SearchRequest{
				Query:      query,
				Limit:      limit,
				SearchType: string(strategy),
			})
			if err != nil {
				s.logger.Warn("search", "comparison strategy failed", map[string]interface{}{
					"strategy": string(strategy),
					"query":    query,
					"error":    err.Error(),
				})
				items[i] = &dto.ComparisonStrategyItem{Error: err.Error()}
				return
			}
			items[i] = &dto.ComparisonStrategyItem{Result: result}
		}(i, strategy)
	}
	wg.Wait()

	return &dto.SearchComparisonResponse{
		Query:          query,
		SemanticSearch: items[0],
		KeywordSearch:  items[1],
		HybridSearch:   items[2],
	}, nil
}

func toRelevantDocument(sd *retrieval.ScoredDocument) dto.RelevantDocument {
	// Single-strategy results never had their scores blended; surface the
	// one signal they do carry as the combined score.
	combined := sd.CombinedScore
	if combined == 0 {
		if sd.SemanticScore > 0 {
			combined = sd.SemanticScore
		} else {
			combined = float64(sd.LexicalScore)
		}
	}

	return dto.RelevantDocument{
		Id:            sd.Document.Id,
		Title:         sd.Document.DisplayTitle(),
		DocumentType:  string(sd.Document.Kind),
		Filename:      sd.Document.Filename,
		SemanticScore: sd.SemanticScore,
		KeywordScore:  float64(sd.LexicalScore),
		CombinedScore: combined,
		SearchType:    string(sd.Provenance),
		Preview:       retrieval.Preview(sd.Document, previewMaxChars),
	}
}
