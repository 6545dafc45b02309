package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/core/port"
	"github.com/fieldpoint/fieldservice/internal/repository"
)

// TimeEntryRepository implements time entry persistence. Entries are
// append-only; there is no update statement.
type TimeEntryRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTimeEntryRepository constructs a PostgreSQL-backed time entry repository.
func NewTimeEntryRepository(exec pgExecutor) *TimeEntryRepository {
	return &TimeEntryRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *TimeEntryRepository) WithTx(tx pgx.Tx) *TimeEntryRepository {
	if tx == nil {
		return r
	}
	return &TimeEntryRepository{
		exec:    tx,
		builder: r.builder,
	}
}

const timeEntryColumns = "id, tenant_id, user_id, work_order_id, start_time, end_time, " +
	"duration_hours, entry_type, notes, created_at"

// Create inserts a new time entry.
func (r *TimeEntryRepository) Create(ctx context.Context, entry domain.TimeEntry) error {
	stmt, args, err := r.builder.Insert("fs.time_entries").
		Columns("id", "tenant_id", "user_id", "work_order_id", "start_time", "end_time",
			"duration_hours", "entry_type", "notes", "created_at").
		Values(entry.ID, entry.TenantID, entry.UserID, entry.WorkOrderID, entry.StartTime,
			entry.EndTime, entry.DurationHours, entry.EntryType, entry.Notes, entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert time entry sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert time entry: %w", err)
	}

	return nil
}

// GetByID retrieves a time entry within the tenant.
func (r *TimeEntryRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.TimeEntry, error) {
	stmt, args, err := r.builder.Select(timeEntryColumns).
		From("fs.time_entries").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select time entry sql: %w", err)
	}

	entry, err := scanTimeEntryRow(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return entry, nil
}

// List retrieves time entries matching the filter within the tenant,
// newest first.
func (r *TimeEntryRepository) List(ctx context.Context, tenantID string, filter port.TimeEntryFilter) ([]domain.TimeEntry, error) {
	query := r.builder.Select(timeEntryColumns).
		From("fs.time_entries").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("start_time DESC")

	if filter.UserID != nil {
		query = query.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.WorkOrderID != nil {
		query = query.Where(squirrel.Eq{"work_order_id": *filter.WorkOrderID})
	}
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"start_time": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"start_time": *filter.To})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list time entries sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query time entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time entries: %w", err)
	}

	return entries, nil
}

func scanTimeEntryRow(row pgx.Row) (*domain.TimeEntry, error) {
	var (
		entry domain.TimeEntry
		notes sql.NullString
	)

	if err := row.Scan(&entry.ID, &entry.TenantID, &entry.UserID, &entry.WorkOrderID,
		&entry.StartTime, &entry.EndTime, &entry.DurationHours, &entry.EntryType,
		&notes, &entry.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan time entry: %w", err)
	}

	if notes.Valid {
		entry.Notes = &notes.String
	}

	return &entry, nil
}
