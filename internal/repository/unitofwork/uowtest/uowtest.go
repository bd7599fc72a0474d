// Package uowtest provides in-memory unit-of-work doubles for service and
// retrieval tests. Repositories return their configured data and ignore
// query specifications; tests stage exactly the rows a call should see.
package uowtest

import (
	"context"

	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/repository/contract"
	"doc-intelligence-be/internal/repository/specification"
	"doc-intelligence-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var (
	_ unitofwork.UnitOfWork                = (*UnitOfWork)(nil)
	_ contract.DocumentRepository          = (*DocumentRepo)(nil)
	_ contract.DocumentEmbeddingRepository = (*EmbeddingRepo)(nil)
)

type Factory struct {
	UOW *UnitOfWork
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.UOW
}

type UnitOfWork struct {
	Documents  *DocumentRepo
	Embeddings *EmbeddingRepo

	BeginErr  error
	CommitErr error
	Commits   int
	Rollbacks int
}

func New() *UnitOfWork {
	return &UnitOfWork{
		Documents:  &DocumentRepo{},
		Embeddings: &EmbeddingRepo{},
	}
}

func (u *UnitOfWork) Begin(ctx context.Context) error { return u.BeginErr }

func (u *UnitOfWork) Commit() error {
	u.Commits++
	return u.CommitErr
}

func (u *UnitOfWork) Rollback() error {
	u.Rollbacks++
	return nil
}

func (u *UnitOfWork) DocumentRepository() contract.DocumentRepository { return u.Documents }

func (u *UnitOfWork) DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository {
	return u.Embeddings
}

// DocumentRepo serves Docs for every read and records writes. Reads also
// record the specifications they were given so tests can assert on the
// filters a service applied.
type DocumentRepo struct {
	Docs          []*entity.Document
	Err           error
	Created       []*entity.Document
	Updated       []*entity.Document
	Deleted       []uuid.UUID
	LastFindSpecs []specification.Specification
}

func (r *DocumentRepo) Create(ctx context.Context, document *entity.Document) error {
	if r.Err != nil {
		return r.Err
	}
	r.Created = append(r.Created, document)
	return nil
}

func (r *DocumentRepo) Update(ctx context.Context, document *entity.Document) error {
	if r.Err != nil {
		return r.Err
	}
	r.Updated = append(r.Updated, document)
	return nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.Err != nil {
		return r.Err
	}
	r.Deleted = append(r.Deleted, id)
	return nil
}

func (r *DocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if len(r.Docs) == 0 {
		return nil, nil
	}
	return r.Docs[0], nil
}

func (r *DocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.LastFindSpecs = specs
	return r.Docs, nil
}

func (r *DocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.Docs)), nil
}

// EmbeddingRepo serves Scored for similarity searches and records writes.
type EmbeddingRepo struct {
	Scored     []*contract.ScoredDocumentEmbedding
	Rows       []*entity.DocumentEmbedding
	Err        error
	SearchErr  error
	Created    []*entity.DocumentEmbedding
	DeletedFor []uuid.UUID
}

func (r *EmbeddingRepo) Create(ctx context.Context, embedding *entity.DocumentEmbedding) error {
	if r.Err != nil {
		return r.Err
	}
	r.Created = append(r.Created, embedding)
	return nil
}

func (r *EmbeddingRepo) CreateBulk(ctx context.Context, embeddings []*entity.DocumentEmbedding) error {
	if r.Err != nil {
		return r.Err
	}
	r.Created = append(r.Created, embeddings...)
	return nil
}

func (r *EmbeddingRepo) Update(ctx context.Context, embedding *entity.DocumentEmbedding) error {
	return r.Err
}

func (r *EmbeddingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.Err
}

func (r *EmbeddingRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	if r.Err != nil {
		return r.Err
	}
	r.DeletedFor = append(r.DeletedFor, documentId)
	return nil
}

func (r *EmbeddingRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentEmbedding, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if len(r.Rows) == 0 {
		return nil, nil
	}
	return r.Rows[0], nil
}

func (r *EmbeddingRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentEmbedding, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Rows, nil
}

func (r *EmbeddingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.Rows)), nil
}

func (r *EmbeddingRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*contract.ScoredDocumentEmbedding, error) {
	if r.SearchErr != nil {
		return nil, r.SearchErr
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Scored, nil
}
