package fusion

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/pkg/apperror"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/internal/repository/contract"
	"doc-intelligence-be/internal/repository/unitofwork/uowtest"
	"doc-intelligence-be/pkg/retrieval"
	"doc-intelligence-be/pkg/retrieval/lexical"
	"doc-intelligence-be/pkg/retrieval/semantic"

	"github.com/google/uuid"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func newTestEngine(embedder *stubEmbedder) *Engine {
	log := logger.NewNopLogger()
	scorer := lexical.NewScorer()
	retriever := semantic.NewRetriever(embedder, 5*time.Second, log)
	return NewEngine(scorer, retriever, semantic.DefaultThreshold, log)
}

func semanticHit(doc *entity.Document, score float64) *retrieval.ScoredDocument {
	return &retrieval.ScoredDocument{
		Document:      doc,
		SemanticScore: score,
		Provenance:    retrieval.ProvenanceSemantic,
	}
}

func keywordHit(doc *entity.Document, score int) *retrieval.ScoredDocument {
	return &retrieval.ScoredDocument{
		Document:     doc,
		LexicalScore: score,
		Provenance:   retrieval.ProvenanceKeyword,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFuseBlendsBothSignals(t *testing.T) {
	doc := &entity.Document{Id: uuid.New(), Kind: entity.DocumentKindNote}

	fused := Fuse(
		[]*retrieval.ScoredDocument{semanticHit(doc, 0.8)},
		[]*retrieval.ScoredDocument{keywordHit(doc, 50)},
	)

	if len(fused) != 1 {
		t.Fatalf("Fuse() returned %d results, want 1", len(fused))
	}
	got := fused[0]
	if got.Provenance != retrieval.ProvenanceHybrid {
		t.Errorf("provenance = %q, want %q", got.Provenance, retrieval.ProvenanceHybrid)
	}
	want := 0.7*0.8 + 0.3*0.5
	if !almostEqual(got.CombinedScore, want) {
		t.Errorf("combined score = %v, want %v", got.CombinedScore, want)
	}
}

func TestFuseLexicalSaturation(t *testing.T) {
	doc := &entity.Document{Id: uuid.New(), Kind: entity.DocumentKindNote}

	// Scores past the normalization cap contribute no extra weight.
	fused := Fuse(nil, []*retrieval.ScoredDocument{keywordHit(doc, 250)})

	want := 0.3 * 1.0
	if !almostEqual(fused[0].CombinedScore, want) {
		t.Errorf("combined score = %v, want %v", fused[0].CombinedScore, want)
	}
}

func TestFuseKeywordOnlyWeakScore(t *testing.T) {
	doc := &entity.Document{Id: uuid.New(), Kind: entity.DocumentKindNote}

	fused := Fuse(nil, []*retrieval.ScoredDocument{keywordHit(doc, 2)})

	want := 0.3 * 0.02
	if !almostEqual(fused[0].CombinedScore, want) {
		t.Errorf("combined score = %v, want %v", fused[0].CombinedScore, want)
	}
	if fused[0].Provenance != retrieval.ProvenanceKeyword {
		t.Errorf("provenance = %q, want %q", fused[0].Provenance, retrieval.ProvenanceKeyword)
	}
}

func TestFuseUnionOrdering(t *testing.T) {
	strong := &entity.Document{Id: uuid.New(), Kind: entity.DocumentKindNote}
	weak := &entity.Document{Id: uuid.New(), Kind: entity.DocumentKindNote}
	keywordOnly := &entity.Document{Id: uuid.New(), Kind: entity.DocumentKindNote}

	fused := Fuse(
		[]*retrieval.ScoredDocument{semanticHit(strong, 0.9), semanticHit(weak, 0.3)},
		[]*retrieval.ScoredDocument{keywordHit(keywordOnly, 300), keywordHit(strong, 10)},
	)

	if len(fused) != 3 {
		t.Fatalf("Fuse() returned %d results, want 3", len(fused))
	}
	// strong: 0.7*0.9 + 0.3*0.1 = 0.66; keywordOnly: 0.3; weak: 0.21
	wantOrder := []uuid.UUID{strong.Id, keywordOnly.Id, weak.Id}
	for i, want := range wantOrder {
		if fused[i].Document.Id != want {
			t.Errorf("position %d: got %s, want %s", i, fused[i].Document.Id, want)
		}
	}
}

func TestFuseIdempotentOrderingOnTies(t *testing.T) {
	first := &entity.Document{Id: uuid.New(), Kind: entity.DocumentKindNote}
	second := &entity.Document{Id: uuid.New(), Kind: entity.DocumentKindNote}

	semanticResults := []*retrieval.ScoredDocument{semanticHit(first, 0.5), semanticHit(second, 0.5)}

	for run := 0; run < 5; run++ {
		fused := Fuse(semanticResults, nil)
		if fused[0].Document.Id != first.Id || fused[1].Document.Id != second.Id {
			t.Fatalf("run %d: tie ordering changed", run)
		}
	}
}

func TestSearchSemanticModePropagatesFailure(t *testing.T) {
	engine := newTestEngine(&stubEmbedder{err: errors.New("provider down")})
	uow := uowtest.New()

	_, err := engine.Search(context.Background(), uow, uuid.New(), "query", SearchTypeSemantic, 10)
	if !apperror.IsRetrieval(err, "semantic") {
		t.Fatalf("Search() error = %v, want semantic retrieval failure", err)
	}
}

func TestSearchHybridFallsBackOnSemanticFailure(t *testing.T) {
	userId := uuid.New()
	doc := &entity.Document{
		Id:               uuid.New(),
		UserId:           userId,
		Kind:             entity.DocumentKindNote,
		Title:            "Invoice notes",
		Description:      "invoice details for march",
		ProcessingStatus: entity.ProcessingStatusCompleted,
	}

	engine := newTestEngine(&stubEmbedder{err: errors.New("provider down")})
	uow := uowtest.New()
	uow.Documents.Docs = []*entity.Document{doc}

	got, err := engine.Search(context.Background(), uow, userId, "invoice", SearchTypeHybrid, 10)
	if err != nil {
		t.Fatalf("Search() error = %v, want graceful fallback", err)
	}
	if len(got) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(got))
	}
	if got[0].SemanticScore != 0 {
		t.Errorf("semantic score = %v, want 0 after fallback", got[0].SemanticScore)
	}
	// Fallback results still carry fused scoring: 0.3 * (2/100).
	if !almostEqual(got[0].CombinedScore, 0.006) {
		t.Errorf("combined score = %v, want 0.006", got[0].CombinedScore)
	}
}

func TestSearchHybridMergesBothStages(t *testing.T) {
	userId := uuid.New()
	doc := &entity.Document{
		Id:               uuid.New(),
		UserId:           userId,
		Kind:             entity.DocumentKindNote,
		Title:            "Roadmap",
		Description:      "roadmap for the quarter",
		ProcessingStatus: entity.ProcessingStatusCompleted,
	}

	engine := newTestEngine(&stubEmbedder{vector: []float32{0.1}})
	uow := uowtest.New()
	uow.Documents.Docs = []*entity.Document{doc}
	uow.Embeddings.Scored = []*contract.ScoredDocumentEmbedding{
		{
			Embedding:  &entity.DocumentEmbedding{Id: uuid.New(), DocumentId: doc.Id},
			Similarity: 0.8,
		},
	}

	got, err := engine.Search(context.Background(), uow, userId, "roadmap", SearchTypeHybrid, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(got))
	}
	if got[0].Provenance != retrieval.ProvenanceHybrid {
		t.Errorf("provenance = %q, want %q", got[0].Provenance, retrieval.ProvenanceHybrid)
	}
	want := 0.7*0.8 + 0.3*0.02
	if !almostEqual(got[0].CombinedScore, want) {
		t.Errorf("combined score = %v, want %v", got[0].CombinedScore, want)
	}
}

func TestSearchTruncatesToLimit(t *testing.T) {
	userId := uuid.New()
	var docs []*entity.Document
	for i := 0; i < 5; i++ {
		docs = append(docs, &entity.Document{
			Id:               uuid.New(),
			UserId:           userId,
			Kind:             entity.DocumentKindNote,
			Description:      "shared term",
			ProcessingStatus: entity.ProcessingStatusCompleted,
		})
	}

	engine := newTestEngine(&stubEmbedder{vector: []float32{0.1}})
	uow := uowtest.New()
	uow.Documents.Docs = docs

	got, err := engine.Search(context.Background(), uow, userId, "shared", SearchTypeKeyword, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Search() returned %d results, want 2", len(got))
	}
}

func TestSearchRejectsUnknownType(t *testing.T) {
	engine := newTestEngine(&stubEmbedder{vector: []float32{0.1}})
	uow := uowtest.New()

	_, err := engine.Search(context.Background(), uow, uuid.New(), "query", SearchType("fuzzy"), 10)
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("Search() error = %v, want validation error", err)
	}
}

func TestSearchUnknownTypeMessageKeepsVerbs(t *testing.T) {
	engine := newTestEngine(&stubEmbedder{vector: []float32{0.1}})
	uow := uowtest.New()

	// A stray formatting verb in the input must survive into the message
	// verbatim, not get interpreted as a directive.
	_, err := engine.Search(context.Background(), uow, uuid.New(), "query", SearchType("100%match"), 10)
	if err == nil {
		t.Fatal("Search() expected an error")
	}
	if !strings.Contains(err.Error(), "100%match") {
		t.Fatalf("error message %q does not carry the raw search type", err.Error())
	}
}
