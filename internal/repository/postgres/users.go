package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/repository"
)

// UserRepository implements user persistence. The active timer lives in two
// nullable columns on the user row, which keeps the at-most-one invariant
// structural and lets clock mutations lock a single row.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		exec:    tx,
		builder: r.builder,
	}
}

const userColumns = "id, tenant_id, email, display_name, status, is_technician, " +
	"active_timer_work_order_id, active_timer_started_at, created_at, updated_at"

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	var (
		timerWorkOrderID *string
		timerStartedAt   *time.Time
	)
	if user.ActiveTimer != nil {
		timerWorkOrderID = &user.ActiveTimer.WorkOrderID
		timerStartedAt = &user.ActiveTimer.StartedAt
	}

	stmt, args, err := r.builder.Insert("fs.users").
		Columns("id", "tenant_id", "email", "display_name", "status", "is_technician",
			"active_timer_work_order_id", "active_timer_started_at", "created_at", "updated_at").
		Values(user.ID, user.TenantID, user.Email, user.DisplayName, user.Status, user.IsTechnician,
			timerWorkOrderID, timerStartedAt, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate retrieves a user under a row-level lock. Must run inside a
// transaction; it serialises concurrent clock-in/clock-out attempts.
func (r *UserRepository) GetForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, id, true)
}

func (r *UserRepository) get(ctx context.Context, id string, forUpdate bool) (*domain.User, error) {
	query := r.builder.Select(userColumns).
		From("fs.users").
		Where(squirrel.Eq{"id": id}).
		Limit(1)
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// SetActiveTimer writes the embedded timer columns; a nil timer clears them.
func (r *UserRepository) SetActiveTimer(ctx context.Context, userID string, timer *domain.ActiveTimer) error {
	var (
		workOrderID *string
		startedAt   *time.Time
	)
	if timer != nil {
		workOrderID = &timer.WorkOrderID
		startedAt = &timer.StartedAt
	}

	stmt, args, err := r.builder.Update("fs.users").
		Set("active_timer_work_order_id", workOrderID).
		Set("active_timer_started_at", startedAt).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set active timer sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set active timer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListTechnicians retrieves a tenant's active technicians sorted by name.
func (r *UserRepository) ListTechnicians(ctx context.Context, tenantID string) ([]domain.User, error) {
	stmt, args, err := r.builder.Select(userColumns).
		From("fs.users").
		Where(squirrel.Eq{
			"tenant_id":     tenantID,
			"is_technician": true,
			"status":        domain.UserStatusActive,
		}).
		OrderBy("display_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list technicians sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query technicians: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate technicians: %w", err)
	}

	return users, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	user, err := scanUserRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUserRow(row pgx.Row) (*domain.User, error) {
	var (
		user             domain.User
		tenantID         sql.NullString
		timerWorkOrderID sql.NullString
		timerStartedAt   sql.NullTime
	)

	if err := row.Scan(&user.ID, &tenantID, &user.Email, &user.DisplayName, &user.Status,
		&user.IsTechnician, &timerWorkOrderID, &timerStartedAt, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if tenantID.Valid {
		user.TenantID = &tenantID.String
	}
	if timerWorkOrderID.Valid && timerStartedAt.Valid {
		user.ActiveTimer = &domain.ActiveTimer{
			WorkOrderID: timerWorkOrderID.String,
			StartedAt:   timerStartedAt.Time,
		}
	}

	return &user, nil
}
