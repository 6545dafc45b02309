package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/core/port"
	"github.com/fieldpoint/fieldservice/internal/repository"
)

// WorkOrderRepository implements work order persistence. Every read is
// tenant scoped so a foreign tenant's work order resolves to ErrNotFound.
type WorkOrderRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewWorkOrderRepository constructs a PostgreSQL-backed work order repository.
func NewWorkOrderRepository(exec pgExecutor) *WorkOrderRepository {
	return &WorkOrderRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *WorkOrderRepository) WithTx(tx pgx.Tx) *WorkOrderRepository {
	if tx == nil {
		return r
	}
	return &WorkOrderRepository{
		exec:    tx,
		builder: r.builder,
	}
}

const workOrderColumns = "id, tenant_id, customer_id, location_id, equipment_id, " +
	"assigned_technician_id, status, priority, summary, scheduled_at, started_at, " +
	"completed_at, notes, created_by, created_at, updated_at"

// Create inserts a new work order.
func (r *WorkOrderRepository) Create(ctx context.Context, wo domain.WorkOrder) error {
	notes, err := json.Marshal(wo.Notes)
	if err != nil {
		return fmt.Errorf("marshal work order notes: %w", err)
	}

	stmt, args, err := r.builder.Insert("fs.work_orders").
		Columns("id", "tenant_id", "customer_id", "location_id", "equipment_id",
			"assigned_technician_id", "status", "priority", "summary", "scheduled_at",
			"started_at", "completed_at", "notes", "created_by", "created_at", "updated_at").
		Values(wo.ID, wo.TenantID, wo.CustomerID, wo.LocationID, wo.EquipmentID,
			wo.AssignedTechnicianID, wo.Status, wo.Priority, wo.Summary, wo.ScheduledAt,
			wo.StartedAt, wo.CompletedAt, notes, wo.CreatedBy, wo.CreatedAt, wo.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert work order sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert work order: %w", err)
	}

	return nil
}

// GetByID retrieves a work order within the tenant.
func (r *WorkOrderRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.WorkOrder, error) {
	return r.get(ctx, tenantID, id, false)
}

// GetForUpdate retrieves a work order under a row-level lock for transition
// mutations inside a transaction.
func (r *WorkOrderRepository) GetForUpdate(ctx context.Context, tenantID, id string) (*domain.WorkOrder, error) {
	return r.get(ctx, tenantID, id, true)
}

func (r *WorkOrderRepository) get(ctx context.Context, tenantID, id string, forUpdate bool) (*domain.WorkOrder, error) {
	query := r.builder.Select(workOrderColumns).
		From("fs.work_orders").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		Limit(1)
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select work order sql: %w", err)
	}

	wo, err := scanWorkOrderRow(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return wo, nil
}

// Update rewrites the mutable columns of a work order in a single statement
// so a transition's side-effect fields land atomically with the status.
func (r *WorkOrderRepository) Update(ctx context.Context, wo domain.WorkOrder) error {
	notes, err := json.Marshal(wo.Notes)
	if err != nil {
		return fmt.Errorf("marshal work order notes: %w", err)
	}

	stmt, args, err := r.builder.Update("fs.work_orders").
		Set("equipment_id", wo.EquipmentID).
		Set("assigned_technician_id", wo.AssignedTechnicianID).
		Set("status", wo.Status).
		Set("priority", wo.Priority).
		Set("summary", wo.Summary).
		Set("scheduled_at", wo.ScheduledAt).
		Set("started_at", wo.StartedAt).
		Set("completed_at", wo.CompletedAt).
		Set("notes", notes).
		Set("updated_at", wo.UpdatedAt).
		Where(squirrel.Eq{"id": wo.ID, "tenant_id": wo.TenantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update work order sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update work order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List retrieves work orders matching the filter within the tenant.
func (r *WorkOrderRepository) List(ctx context.Context, tenantID string, filter port.WorkOrderFilter) ([]domain.WorkOrder, error) {
	query := r.builder.Select(workOrderColumns).
		From("fs.work_orders").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC")

	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.TechnicianID != nil {
		query = query.Where(squirrel.Eq{"assigned_technician_id": *filter.TechnicianID})
	}
	if filter.CustomerID != nil {
		query = query.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list work orders sql: %w", err)
	}

	return r.queryWorkOrders(ctx, stmt, args)
}

// ListUnscheduled retrieves the dispatch pool: no technician assigned and
// status new or on-hold, oldest first.
func (r *WorkOrderRepository) ListUnscheduled(ctx context.Context, tenantID string) ([]domain.WorkOrder, error) {
	stmt, args, err := r.builder.Select(workOrderColumns).
		From("fs.work_orders").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where("assigned_technician_id IS NULL").
		Where(squirrel.Eq{"status": []domain.WorkOrderStatus{
			domain.WorkOrderStatusNew,
			domain.WorkOrderStatusOnHold,
		}}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list unscheduled sql: %w", err)
	}

	return r.queryWorkOrders(ctx, stmt, args)
}

// ListForTechnicianDay retrieves a technician's assignments scheduled on
// the given calendar day.
func (r *WorkOrderRepository) ListForTechnicianDay(ctx context.Context, tenantID, technicianID string, day time.Time) ([]domain.WorkOrder, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	stmt, args, err := r.builder.Select(workOrderColumns).
		From("fs.work_orders").
		Where(squirrel.Eq{"tenant_id": tenantID, "assigned_technician_id": technicianID}).
		Where(squirrel.GtOrEq{"scheduled_at": dayStart}).
		Where(squirrel.Lt{"scheduled_at": dayEnd}).
		OrderBy("scheduled_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list technician day sql: %w", err)
	}

	return r.queryWorkOrders(ctx, stmt, args)
}

func (r *WorkOrderRepository) queryWorkOrders(ctx context.Context, stmt string, args []any) ([]domain.WorkOrder, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query work orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrderRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *wo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work orders: %w", err)
	}

	return orders, nil
}

func scanWorkOrderRow(row pgx.Row) (*domain.WorkOrder, error) {
	var (
		wo           domain.WorkOrder
		equipmentID  sql.NullString
		technicianID sql.NullString
		scheduledAt  sql.NullTime
		startedAt    sql.NullTime
		completedAt  sql.NullTime
		notes        []byte
	)

	if err := row.Scan(&wo.ID, &wo.TenantID, &wo.CustomerID, &wo.LocationID, &equipmentID,
		&technicianID, &wo.Status, &wo.Priority, &wo.Summary, &scheduledAt, &startedAt,
		&completedAt, &notes, &wo.CreatedBy, &wo.CreatedAt, &wo.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan work order: %w", err)
	}

	if equipmentID.Valid {
		wo.EquipmentID = &equipmentID.String
	}
	if technicianID.Valid {
		wo.AssignedTechnicianID = &technicianID.String
	}
	if scheduledAt.Valid {
		wo.ScheduledAt = &scheduledAt.Time
	}
	if startedAt.Valid {
		wo.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		wo.CompletedAt = &completedAt.Time
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &wo.Notes); err != nil {
			return nil, fmt.Errorf("unmarshal work order notes: %w", err)
		}
	}

	return &wo, nil
}
