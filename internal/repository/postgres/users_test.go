package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/repository"
)

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	now := time.Now().UTC()
	tenant := "tenant-1"
	user := domain.User{
		ID:           "user-1",
		TenantID:     &tenant,
		Email:        "tech@example.com",
		DisplayName:  "Jordan Reyes",
		Status:       domain.UserStatusActive,
		IsTechnician: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(`INSERT INTO fs\.users`).
		WithArgs(
			user.ID,
			user.TenantID,
			user.Email,
			user.DisplayName,
			user.Status,
			user.IsTechnician,
			(*string)(nil),
			(*time.Time)(nil),
			user.CreatedAt,
			user.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByID_WithActiveTimer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	now := time.Now().UTC()
	startedAt := now.Add(-time.Hour)

	rows := pgxmock.NewRows([]string{
		"id", "tenant_id", "email", "display_name", "status", "is_technician",
		"active_timer_work_order_id", "active_timer_started_at", "created_at", "updated_at",
	}).AddRow(
		"user-1", "tenant-1", "tech@example.com", "Jordan Reyes", domain.UserStatusActive, true,
		"wo-1", startedAt, now, now,
	)

	mock.ExpectQuery(`SELECT .*FROM fs\.users`).WithArgs("user-1").WillReturnRows(rows)

	user, err := repo.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if user.ActiveTimer == nil {
		t.Fatalf("expected active timer reconstructed from columns")
	}
	if user.ActiveTimer.WorkOrderID != "wo-1" || !user.ActiveTimer.StartedAt.Equal(startedAt) {
		t.Fatalf("unexpected timer: %+v", user.ActiveTimer)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetForUpdate_LocksRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "tenant_id", "email", "display_name", "status", "is_technician",
		"active_timer_work_order_id", "active_timer_started_at", "created_at", "updated_at",
	}).AddRow(
		"user-1", nil, "admin@example.com", "Platform Admin", domain.UserStatusActive, false,
		nil, nil, now, now,
	)

	mock.ExpectQuery(`SELECT .*FROM fs\.users .*FOR UPDATE`).WithArgs("user-1").WillReturnRows(rows)

	user, err := repo.GetForUpdate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetForUpdate returned error: %v", err)
	}
	if user.TenantID != nil {
		t.Fatalf("expected nil tenant for platform admin")
	}
	if user.ActiveTimer != nil {
		t.Fatalf("expected no timer")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_SetActiveTimer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	startedAt := time.Now().UTC()
	timer := &domain.ActiveTimer{WorkOrderID: "wo-1", StartedAt: startedAt}

	mock.ExpectExec(`UPDATE fs\.users SET active_timer_work_order_id`).
		WithArgs(&timer.WorkOrderID, &timer.StartedAt, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.SetActiveTimer(context.Background(), "user-1", timer); err != nil {
		t.Fatalf("SetActiveTimer returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_SetActiveTimer_ClearAndMissingUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE fs\.users SET active_timer_work_order_id`).
		WithArgs((*string)(nil), (*time.Time)(nil), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.SetActiveTimer(context.Background(), "missing", nil); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_ListTechnicians(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "tenant_id", "email", "display_name", "status", "is_technician",
		"active_timer_work_order_id", "active_timer_started_at", "created_at", "updated_at",
	}).
		AddRow("tech-1", "tenant-1", "a@example.com", "Alex", domain.UserStatusActive, true, nil, nil, now, now).
		AddRow("tech-2", "tenant-1", "b@example.com", "Blake", domain.UserStatusActive, true, "wo-5", now, now, now)

	mock.ExpectQuery(`SELECT .*FROM fs\.users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(rows)

	technicians, err := repo.ListTechnicians(context.Background(), "tenant-1")
	if err != nil {
		t.Fatalf("ListTechnicians returned error: %v", err)
	}
	if len(technicians) != 2 {
		t.Fatalf("expected 2 technicians, got %d", len(technicians))
	}
	if technicians[1].ActiveTimer == nil {
		t.Fatalf("expected second technician's timer populated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
