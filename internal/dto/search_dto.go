package dto

import (
	"github.com/google/uuid"
)

type SearchRequest struct {
	Query      string `json:"query" validate:"required"`
	Limit      int    `json:"limit"`
	SearchType string `json:"search_type" validate:"omitempty,oneof=semantic keyword hybrid"`
}

// RelevantDocument carries the per-document scoring breakdown so clients can
// see which signal produced each hit.
type RelevantDocument struct {
	Id            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	DocumentType  string    `json:"document_type"`
	Filename      string    `json:"filename,omitempty"`
	SemanticScore float64   `json:"semantic_score"`
	KeywordScore  float64   `json:"keyword_score"`
	CombinedScore float64   `json:"combined_score"`
	SearchType    string    `json:"search_type"`
	Preview       string    `json:"preview"`
}

type SearchResponse struct {
	Query             string             `json:"query"`
	SearchType        string             `json:"search_type"`
	DocumentsFound    int                `json:"documents_found"`
	RelevantDocuments []RelevantDocument `json:"relevant_documents"`
	AiResponse        string             `json:"ai_response"`
}

// SearchComparisonResponse holds one full search result per strategy. A
// strategy that failed is reported through its Error field instead of
// failing the whole comparison.
type SearchComparisonResponse struct {
	Query          string                  `json:"query"`
	SemanticSearch *ComparisonStrategyItem `json:"semantic_search"`
	KeywordSearch  *ComparisonStrategyItem `json:"keyword_search"`
	HybridSearch   *ComparisonStrategyItem `json:"hybrid_search"`
}

type ComparisonStrategyItem struct {
	Result *SearchResponse `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}
