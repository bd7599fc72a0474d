// Package lexical scores documents by raw term-frequency matching.
package lexical

import (
	"sort"
	"strings"

	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/pkg/retrieval"
)

// Scorer ranks documents by summing, over every whitespace-delimited query
// token, that token's occurrence count in the document's searchable text.
// Substring counting, case-insensitive, no stemming, no stop words.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns documents with at least one token occurrence, descending by
// score. The sort is stable: equal scores keep input order. An empty query
// has zero tokens and therefore matches nothing.
func (s *Scorer) Score(documents []*entity.Document, query string) ([]*retrieval.ScoredDocument, error) {
	tokens := strings.Fields(strings.ToLower(query))

	var matches []*retrieval.ScoredDocument
	for _, doc := range documents {
		searchable, err := retrieval.SearchableText(doc)
		if err != nil {
			return nil, err
		}
		if searchable == "" {
			continue
		}

		score := 0
		for _, token := range tokens {
			score += strings.Count(searchable, token)
		}

		if score > 0 {
			matches = append(matches, &retrieval.ScoredDocument{
				Document:     doc,
				LexicalScore: score,
				Provenance:   retrieval.ProvenanceKeyword,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].LexicalScore > matches[j].LexicalScore
	})

	return matches, nil
}
