package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldpoint/fieldservice/internal/core/port"
)

// Repositories groups concrete PostgreSQL repository implementations and
// implements port.UnitOfWork.
type Repositories struct {
	pool        *pgxpool.Pool
	users       *UserRepository
	roles       *RoleRepository
	workOrders  *WorkOrderRepository
	timeEntries *TimeEntryRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		pool:        pool,
		users:       NewUserRepository(pool),
		roles:       NewRoleRepository(pool),
		workOrders:  NewWorkOrderRepository(pool),
		timeEntries: NewTimeEntryRepository(pool),
	}
}

// Users returns the user repository.
func (r *Repositories) Users() port.UserRepository { return r.users }

// Roles returns the role repository.
func (r *Repositories) Roles() port.RoleRepository { return r.roles }

// WorkOrders returns the work order repository.
func (r *Repositories) WorkOrders() port.WorkOrderRepository { return r.workOrders }

// TimeEntries returns the time entry repository.
func (r *Repositories) TimeEntries() port.TimeEntryRepository { return r.timeEntries }

// Do runs fn inside one transaction. The RepositorySet handed to fn shares
// that transaction, so every write commits atomically or not at all.
func (r *Repositories) Do(ctx context.Context, fn func(ctx context.Context, repos port.RepositorySet) error) error {
	if err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(ctx, r.withTx(tx))
	}); err != nil {
		return fmt.Errorf("unit of work: %w", err)
	}
	return nil
}

func (r *Repositories) withTx(tx pgx.Tx) port.RepositorySet {
	return &txRepositories{
		users:       r.users.WithTx(tx),
		roles:       r.roles.WithTx(tx),
		workOrders:  r.workOrders.WithTx(tx),
		timeEntries: r.timeEntries.WithTx(tx),
	}
}

type txRepositories struct {
	users       *UserRepository
	roles       *RoleRepository
	workOrders  *WorkOrderRepository
	timeEntries *TimeEntryRepository
}

func (t *txRepositories) Users() port.UserRepository            { return t.users }
func (t *txRepositories) Roles() port.RoleRepository            { return t.roles }
func (t *txRepositories) WorkOrders() port.WorkOrderRepository  { return t.workOrders }
func (t *txRepositories) TimeEntries() port.TimeEntryRepository { return t.timeEntries }

var _ port.UnitOfWork = (*Repositories)(nil)
