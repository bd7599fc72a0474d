package unitofwork

import "context"

// RepositoryFactory hands out a fresh unit of work per request or message.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
