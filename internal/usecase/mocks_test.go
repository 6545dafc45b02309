package usecase

import (
	"context"
	"time"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/core/port"
	"github.com/fieldpoint/fieldservice/internal/repository"
)

// Hand-rolled mocks shared by the service tests in this package.

type verifierMock struct {
	claims *port.IdentityClaims
	err    error
}

func (m *verifierMock) Verify(_ context.Context, _ string) (*port.IdentityClaims, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.claims, nil
}

type roleRepoMock struct {
	roles       map[string]domain.Role
	userRoles   map[string][]string
	assignments []domain.UserRoleAssignment
	createErr   error
	updateErr   error
	deleteErr   error
	listErr     error
}

func (m *roleRepoMock) Create(_ context.Context, role domain.Role) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.roles == nil {
		m.roles = make(map[string]domain.Role)
	}
	m.roles[role.ID] = role
	return nil
}

func (m *roleRepoMock) GetByID(_ context.Context, id string) (*domain.Role, error) {
	if role, ok := m.roles[id]; ok {
		return &role, nil
	}
	return nil, repository.ErrNotFound
}

func (m *roleRepoMock) GetByName(_ context.Context, tenantID *string, name string) (*domain.Role, error) {
	for _, role := range m.roles {
		if role.Name != name {
			continue
		}
		if tenantID == nil && role.TenantID == nil {
			return &role, nil
		}
		if tenantID != nil && role.TenantID != nil && *tenantID == *role.TenantID {
			return &role, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *roleRepoMock) List(_ context.Context, tenantID *string) ([]domain.Role, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	roles := make([]domain.Role, 0, len(m.roles))
	for _, role := range m.roles {
		if tenantID == nil && role.TenantID != nil {
			continue
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (m *roleRepoMock) Update(_ context.Context, role domain.Role) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.roles[role.ID]; !ok {
		return repository.ErrNotFound
	}
	m.roles[role.ID] = role
	return nil
}

func (m *roleRepoMock) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.roles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.roles, id)
	return nil
}

func (m *roleRepoMock) ListByUser(_ context.Context, userID string) ([]domain.Role, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var roles []domain.Role
	for _, roleID := range m.userRoles[userID] {
		if role, ok := m.roles[roleID]; ok {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (m *roleRepoMock) CountAssignments(_ context.Context, roleID string) (int, error) {
	count := 0
	for _, assignment := range m.assignments {
		if assignment.RoleID == roleID {
			count++
		}
	}
	return count, nil
}

func (m *roleRepoMock) AssignToUser(_ context.Context, assignment domain.UserRoleAssignment) error {
	for _, existing := range m.assignments {
		if existing.UserID == assignment.UserID && existing.RoleID == assignment.RoleID {
			return nil
		}
	}
	m.assignments = append(m.assignments, assignment)
	if m.userRoles == nil {
		m.userRoles = make(map[string][]string)
	}
	m.userRoles[assignment.UserID] = append(m.userRoles[assignment.UserID], assignment.RoleID)
	return nil
}

func (m *roleRepoMock) RevokeFromUser(_ context.Context, userID, roleID string) error {
	for i, assignment := range m.assignments {
		if assignment.UserID == userID && assignment.RoleID == roleID {
			m.assignments = append(m.assignments[:i], m.assignments[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *roleRepoMock) ListAssignments(_ context.Context, roleID string) ([]domain.UserRoleAssignment, error) {
	var out []domain.UserRoleAssignment
	for _, assignment := range m.assignments {
		if assignment.RoleID == roleID {
			out = append(out, assignment)
		}
	}
	return out, nil
}

type userRepoMock struct {
	users        map[string]domain.User
	setTimerErr  error
	getForUpdate int
}

func (m *userRepoMock) Create(_ context.Context, user domain.User) error {
	if m.users == nil {
		m.users = make(map[string]domain.User)
	}
	m.users[user.ID] = user
	return nil
}

func (m *userRepoMock) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) GetForUpdate(_ context.Context, id string) (*domain.User, error) {
	m.getForUpdate++
	if user, ok := m.users[id]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) SetActiveTimer(_ context.Context, userID string, timer *domain.ActiveTimer) error {
	if m.setTimerErr != nil {
		return m.setTimerErr
	}
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.ActiveTimer = timer
	m.users[userID] = user
	return nil
}

func (m *userRepoMock) ListTechnicians(_ context.Context, tenantID string) ([]domain.User, error) {
	var out []domain.User
	for _, user := range m.users {
		if user.IsTechnician && user.TenantID != nil && *user.TenantID == tenantID {
			out = append(out, user)
		}
	}
	return out, nil
}

type workOrderRepoMock struct {
	orders        map[string]domain.WorkOrder
	technicianDay []domain.WorkOrder
	updateErr     error
	updates       int
}

func (m *workOrderRepoMock) Create(_ context.Context, wo domain.WorkOrder) error {
	if m.orders == nil {
		m.orders = make(map[string]domain.WorkOrder)
	}
	m.orders[wo.ID] = wo
	return nil
}

func (m *workOrderRepoMock) get(tenantID, id string) (*domain.WorkOrder, error) {
	wo, ok := m.orders[id]
	if !ok || wo.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	return &wo, nil
}

func (m *workOrderRepoMock) GetByID(_ context.Context, tenantID, id string) (*domain.WorkOrder, error) {
	return m.get(tenantID, id)
}

func (m *workOrderRepoMock) GetForUpdate(_ context.Context, tenantID, id string) (*domain.WorkOrder, error) {
	return m.get(tenantID, id)
}

func (m *workOrderRepoMock) Update(_ context.Context, wo domain.WorkOrder) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.orders[wo.ID]; !ok {
		return repository.ErrNotFound
	}
	m.orders[wo.ID] = wo
	m.updates++
	return nil
}

func (m *workOrderRepoMock) List(_ context.Context, tenantID string, _ port.WorkOrderFilter) ([]domain.WorkOrder, error) {
	var out []domain.WorkOrder
	for _, wo := range m.orders {
		if wo.TenantID == tenantID {
			out = append(out, wo)
		}
	}
	return out, nil
}

func (m *workOrderRepoMock) ListUnscheduled(_ context.Context, tenantID string) ([]domain.WorkOrder, error) {
	var out []domain.WorkOrder
	for _, wo := range m.orders {
		if wo.TenantID == tenantID && wo.Unscheduled() {
			out = append(out, wo)
		}
	}
	return out, nil
}

func (m *workOrderRepoMock) ListForTechnicianDay(_ context.Context, _, _ string, _ time.Time) ([]domain.WorkOrder, error) {
	return m.technicianDay, nil
}

type timeEntryRepoMock struct {
	entries   []domain.TimeEntry
	createErr error
}

func (m *timeEntryRepoMock) Create(_ context.Context, entry domain.TimeEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *timeEntryRepoMock) GetByID(_ context.Context, tenantID, id string) (*domain.TimeEntry, error) {
	for _, entry := range m.entries {
		if entry.ID == id && entry.TenantID == tenantID {
			return &entry, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *timeEntryRepoMock) List(_ context.Context, tenantID string, _ port.TimeEntryFilter) ([]domain.TimeEntry, error) {
	var out []domain.TimeEntry
	for _, entry := range m.entries {
		if entry.TenantID == tenantID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type eventPublisherMock struct {
	transitioned []domain.WorkOrderTransitionedEvent
	scheduled    []domain.WorkOrderScheduledEvent
	clockedIn    []domain.ClockedInEvent
	clockedOut   []domain.ClockedOutEvent
	assigned     []domain.RolesAssignedEvent
	revoked      []domain.RolesRevokedEvent
	err          error
}

func (m *eventPublisherMock) PublishWorkOrderTransitioned(_ context.Context, event domain.WorkOrderTransitionedEvent) error {
	if m.err != nil {
		return m.err
	}
	m.transitioned = append(m.transitioned, event)
	return nil
}

func (m *eventPublisherMock) PublishWorkOrderScheduled(_ context.Context, event domain.WorkOrderScheduledEvent) error {
	if m.err != nil {
		return m.err
	}
	m.scheduled = append(m.scheduled, event)
	return nil
}

func (m *eventPublisherMock) PublishClockedIn(_ context.Context, event domain.ClockedInEvent) error {
	if m.err != nil {
		return m.err
	}
	m.clockedIn = append(m.clockedIn, event)
	return nil
}

func (m *eventPublisherMock) PublishClockedOut(_ context.Context, event domain.ClockedOutEvent) error {
	if m.err != nil {
		return m.err
	}
	m.clockedOut = append(m.clockedOut, event)
	return nil
}

func (m *eventPublisherMock) PublishRolesAssigned(_ context.Context, event domain.RolesAssignedEvent) error {
	if m.err != nil {
		return m.err
	}
	m.assigned = append(m.assigned, event)
	return nil
}

func (m *eventPublisherMock) PublishRolesRevoked(_ context.Context, event domain.RolesRevokedEvent) error {
	if m.err != nil {
		return m.err
	}
	m.revoked = append(m.revoked, event)
	return nil
}

// uowMock hands the wrapped repositories to fn without any transaction
// semantics; tests assert on the mocks afterwards.
type uowMock struct {
	users       *userRepoMock
	roles       *roleRepoMock
	workOrders  *workOrderRepoMock
	timeEntries *timeEntryRepoMock
}

func (m *uowMock) Users() port.UserRepository            { return m.users }
func (m *uowMock) Roles() port.RoleRepository            { return m.roles }
func (m *uowMock) WorkOrders() port.WorkOrderRepository  { return m.workOrders }
func (m *uowMock) TimeEntries() port.TimeEntryRepository { return m.timeEntries }

func (m *uowMock) Do(ctx context.Context, fn func(ctx context.Context, repos port.RepositorySet) error) error {
	return fn(ctx, m)
}

var (
	_ port.TokenVerifier       = (*verifierMock)(nil)
	_ port.RoleRepository      = (*roleRepoMock)(nil)
	_ port.UserRepository      = (*userRepoMock)(nil)
	_ port.WorkOrderRepository = (*workOrderRepoMock)(nil)
	_ port.TimeEntryRepository = (*timeEntryRepoMock)(nil)
	_ port.EventPublisher      = (*eventPublisherMock)(nil)
	_ port.UnitOfWork          = (*uowMock)(nil)
	_ port.RepositorySet       = (*uowMock)(nil)
)

func strPtr(s string) *string { return &s }
