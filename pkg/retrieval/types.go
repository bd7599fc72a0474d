// Package retrieval holds the shared vocabulary of the search core:
// per-query scored documents and the searchable-text derivation that the
// lexical and semantic stages agree on.
package retrieval

import (
	"strings"
	"unicode/utf8"

	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/pkg/apperror"
)

// Provenance records which scoring stage(s) produced a result item.
type Provenance string

const (
	ProvenanceSemantic Provenance = "semantic"
	ProvenanceKeyword  Provenance = "keyword"
	ProvenanceHybrid   Provenance = "hybrid"
)

// ScoredDocument is created fresh for each search call and discarded after
// the response is built. It is never persisted.
type ScoredDocument struct {
	Document      *entity.Document
	LexicalScore  int     // raw term-occurrence count
	SemanticScore float64 // cosine similarity in [0,1]
	CombinedScore float64 // fusion output
	Provenance    Provenance
}

// SearchableText derives the lowercased searchable text for a document.
// Notes search over title+description; pdf and audio search over the
// extracted text, but only once the upstream OCR/transcription stage has
// completed. An unknown kind is an invariant violation, never silently
// "no text".
func SearchableText(doc *entity.Document) (string, error) {
	switch doc.Kind {
	case entity.DocumentKindNote:
		return strings.ToLower(doc.Title + " " + doc.Description), nil
	case entity.DocumentKindPDF, entity.DocumentKindAudio:
		if doc.ProcessingStatus != entity.ProcessingStatusCompleted {
			return "", nil
		}
		return strings.ToLower(doc.ExtractedText), nil
	default:
		return "", apperror.Internal("unknown document kind %q for document %s", doc.Kind, doc.Id)
	}
}

// ContentText returns the raw (case-preserved) content used for answer
// grounding and previews: description for notes, extracted text otherwise.
func ContentText(doc *entity.Document) (string, error) {
	switch doc.Kind {
	case entity.DocumentKindNote:
		return doc.Description, nil
	case entity.DocumentKindPDF, entity.DocumentKindAudio:
		return doc.ExtractedText, nil
	default:
		return "", apperror.Internal("unknown document kind %q for document %s", doc.Kind, doc.Id)
	}
}

// Preview returns a bounded excerpt of the document content for result
// summaries.
func Preview(doc *entity.Document, maxChars int) string {
	content, err := ContentText(doc)
	if err != nil {
		return ""
	}
	return TruncateChars(content, maxChars)
}

// TruncateChars bounds s to maxChars characters, appending an ellipsis
// marker when content was cut. The bound counts runes, not bytes, so the
// cut never leaves a partial UTF-8 sequence behind.
func TruncateChars(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	return string([]rune(s)[:maxChars]) + "..."
}
