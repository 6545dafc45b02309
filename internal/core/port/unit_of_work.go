package port

import "context"

// RepositorySet exposes the repositories participating in one transaction.
type RepositorySet interface {
	Users() UserRepository
	WorkOrders() WorkOrderRepository
	TimeEntries() TimeEntryRepository
	Roles() RoleRepository
}

// UnitOfWork runs fn inside a single storage transaction. Every write made
// through the provided RepositorySet commits atomically or not at all; the
// clock-out conversion and scheduling mutations depend on this.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos RepositorySet) error) error
}
