package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/repository"
)

// RoleRepository implements role and assignment persistence. Permission
// maps are stored as JSONB, preserving the boolean-or-object shorthand.
type RoleRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRoleRepository constructs a PostgreSQL-backed role repository.
func NewRoleRepository(exec pgExecutor) *RoleRepository {
	return &RoleRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *RoleRepository) WithTx(tx pgx.Tx) *RoleRepository {
	if tx == nil {
		return r
	}
	return &RoleRepository{
		exec:    tx,
		builder: r.builder,
	}
}

const roleColumns = "id, tenant_id, name, description, permissions, created_at, updated_at"

// Create inserts a new role.
func (r *RoleRepository) Create(ctx context.Context, role domain.Role) error {
	permissions, err := json.Marshal(role.Permissions)
	if err != nil {
		return fmt.Errorf("marshal role permissions: %w", err)
	}

	stmt, args, err := r.builder.Insert("fs.roles").
		Columns("id", "tenant_id", "name", "description", "permissions", "created_at", "updated_at").
		Values(role.ID, role.TenantID, role.Name, role.Description, permissions, role.CreatedAt, role.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert role sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert role: %w", err)
	}

	return nil
}

// GetByID retrieves a role by ID.
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	stmt, args, err := r.builder.Select(roleColumns).
		From("fs.roles").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role sql: %w", err)
	}

	return r.scanRole(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByName retrieves a role by name within a tenant scope.
func (r *RoleRepository) GetByName(ctx context.Context, tenantID *string, name string) (*domain.Role, error) {
	query := r.builder.Select(roleColumns).
		From("fs.roles").
		Where(squirrel.Eq{"name": name}).
		Limit(1)

	if tenantID == nil {
		query = query.Where("tenant_id IS NULL")
	} else {
		query = query.Where(squirrel.Eq{"tenant_id": *tenantID})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role by name sql: %w", err)
	}

	return r.scanRole(r.exec.QueryRow(ctx, stmt, args...))
}

// List retrieves a tenant's roles plus the platform templates, sorted by name.
func (r *RoleRepository) List(ctx context.Context, tenantID *string) ([]domain.Role, error) {
	query := r.builder.Select(roleColumns).
		From("fs.roles").
		OrderBy("name ASC")

	if tenantID == nil {
		query = query.Where("tenant_id IS NULL")
	} else {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"tenant_id": *tenantID},
			squirrel.Expr("tenant_id IS NULL"),
		})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	return r.collectRoles(rows)
}

// Update rewrites the mutable columns of a role.
func (r *RoleRepository) Update(ctx context.Context, role domain.Role) error {
	permissions, err := json.Marshal(role.Permissions)
	if err != nil {
		return fmt.Errorf("marshal role permissions: %w", err)
	}

	stmt, args, err := r.builder.Update("fs.roles").
		Set("name", role.Name).
		Set("description", role.Description).
		Set("permissions", permissions).
		Set("updated_at", role.UpdatedAt).
		Where(squirrel.Eq{"id": role.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update role sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a role. Callers must check assignments first.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("fs.roles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete role sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByUser retrieves every role assigned to the user.
func (r *RoleRepository) ListByUser(ctx context.Context, userID string) ([]domain.Role, error) {
	stmt, args, err := r.builder.Select(
		"r.id", "r.tenant_id", "r.name", "r.description", "r.permissions", "r.created_at", "r.updated_at").
		From("fs.roles r").
		Join("fs.user_roles ur ON ur.role_id = r.id").
		Where(squirrel.Eq{"ur.user_id": userID}).
		OrderBy("r.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list roles by user sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles by user: %w", err)
	}
	defer rows.Close()

	return r.collectRoles(rows)
}

// CountAssignments returns how many user-role assignments reference the role.
func (r *RoleRepository) CountAssignments(ctx context.Context, roleID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("fs.user_roles").
		Where(squirrel.Eq{"role_id": roleID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count assignments sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}

	return count, nil
}

// AssignToUser links a role to a user; re-assigning is idempotent.
func (r *RoleRepository) AssignToUser(ctx context.Context, assignment domain.UserRoleAssignment) error {
	stmt, args, err := r.builder.Insert("fs.user_roles").
		Columns("user_id", "role_id", "tenant_id", "assigned_at").
		Values(assignment.UserID, assignment.RoleID, assignment.TenantID, assignment.AssignedAt).
		Suffix("ON CONFLICT (user_id, role_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build assign role sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}

	return nil
}

// RevokeFromUser removes a role assignment from a user.
func (r *RoleRepository) RevokeFromUser(ctx context.Context, userID, roleID string) error {
	stmt, args, err := r.builder.Delete("fs.user_roles").
		Where(squirrel.Eq{"user_id": userID, "role_id": roleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke role sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListAssignments retrieves the assignments referencing a role.
func (r *RoleRepository) ListAssignments(ctx context.Context, roleID string) ([]domain.UserRoleAssignment, error) {
	stmt, args, err := r.builder.Select("user_id", "role_id", "tenant_id", "assigned_at").
		From("fs.user_roles").
		Where(squirrel.Eq{"role_id": roleID}).
		OrderBy("assigned_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list assignments sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []domain.UserRoleAssignment
	for rows.Next() {
		var (
			assignment domain.UserRoleAssignment
			tenantID   sql.NullString
		)
		if err := rows.Scan(&assignment.UserID, &assignment.RoleID, &tenantID, &assignment.AssignedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		if tenantID.Valid {
			assignment.TenantID = &tenantID.String
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}

	return assignments, nil
}

func (r *RoleRepository) scanRole(row pgx.Row) (*domain.Role, error) {
	var (
		role        domain.Role
		tenantID    sql.NullString
		description sql.NullString
		permissions []byte
	)

	if err := row.Scan(&role.ID, &tenantID, &role.Name, &description, &permissions, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan role: %w", err)
	}

	if tenantID.Valid {
		role.TenantID = &tenantID.String
	}
	if description.Valid {
		role.Description = &description.String
	}
	if len(permissions) > 0 {
		if err := json.Unmarshal(permissions, &role.Permissions); err != nil {
			return nil, fmt.Errorf("unmarshal role permissions: %w", err)
		}
	}
	if role.Permissions == nil {
		role.Permissions = make(map[string]domain.PermissionGrant)
	}

	return &role, nil
}

func (r *RoleRepository) collectRoles(rows pgx.Rows) ([]domain.Role, error) {
	var roles []domain.Role

	for rows.Next() {
		var (
			role        domain.Role
			tenantID    sql.NullString
			description sql.NullString
			permissions []byte
		)
		if err := rows.Scan(&role.ID, &tenantID, &role.Name, &description, &permissions, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		if tenantID.Valid {
			role.TenantID = &tenantID.String
		}
		if description.Valid {
			role.Description = &description.String
		}
		if len(permissions) > 0 {
			if err := json.Unmarshal(permissions, &role.Permissions); err != nil {
				return nil, fmt.Errorf("unmarshal role permissions: %w", err)
			}
		}
		if role.Permissions == nil {
			role.Permissions = make(map[string]domain.PermissionGrant)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	return roles, nil
}
