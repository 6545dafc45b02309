package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Permission actions checked against a module's capability flags.
const (
	ActionView    = "view"
	ActionCreate  = "create"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
	ActionAssign  = "assign"
	ActionApprove = "approve"
	ActionManage  = "manage"
)

// ModulePermission holds the capability flags a caller has for one module.
type ModulePermission struct {
	CanAccess bool `json:"can_access"`
	View      bool `json:"view,omitempty"`
	Create    bool `json:"create,omitempty"`
	Edit      bool `json:"edit,omitempty"`
	Delete    bool `json:"delete,omitempty"`
	Assign    bool `json:"assign,omitempty"`
	Approve   bool `json:"approve,omitempty"`
	Manage    bool `json:"manage,omitempty"`
}

// FullModulePermission returns a ModulePermission with every flag granted.
func FullModulePermission() ModulePermission {
	return ModulePermission{
		CanAccess: true,
		View:      true,
		Create:    true,
		Edit:      true,
		Delete:    true,
		Assign:    true,
		Approve:   true,
		Manage:    true,
	}
}

// Allows reports whether the given action is granted. The can_access flag
// gates every action, and manage implies all actions.
func (p ModulePermission) Allows(action string) bool {
	if !p.CanAccess {
		return false
	}
	if p.Manage {
		return true
	}

	switch action {
	case ActionView:
		return p.View
	case ActionCreate:
		return p.Create
	case ActionEdit:
		return p.Edit
	case ActionDelete:
		return p.Delete
	case ActionAssign:
		return p.Assign
	case ActionApprove:
		return p.Approve
	case ActionManage:
		return p.Manage
	default:
		return false
	}
}

func (p *ModulePermission) or(other ModulePermission) {
	p.CanAccess = p.CanAccess || other.CanAccess
	p.View = p.View || other.View
	p.Create = p.Create || other.Create
	p.Edit = p.Edit || other.Edit
	p.Delete = p.Delete || other.Delete
	p.Assign = p.Assign || other.Assign
	p.Approve = p.Approve || other.Approve
	p.Manage = p.Manage || other.Manage
}

func (p ModulePermission) anyGranted() bool {
	return p.CanAccess || p.View || p.Create || p.Edit || p.Delete || p.Assign || p.Approve || p.Manage
}

// PermissionGrant is the stored permission value for one module on a role.
// It is either the boolean full-access shorthand or a structured flag set.
type PermissionGrant struct {
	FullAccess bool
	Flags      ModulePermission
}

// FullAccessGrant returns the boolean shorthand grant.
func FullAccessGrant() PermissionGrant {
	return PermissionGrant{FullAccess: true}
}

// StructuredGrant wraps explicit capability flags.
func StructuredGrant(flags ModulePermission) PermissionGrant {
	return PermissionGrant{Flags: flags}
}

// MarshalJSON encodes full access as the literal true, otherwise the flag object.
func (g PermissionGrant) MarshalJSON() ([]byte, error) {
	if g.FullAccess {
		return []byte("true"), nil
	}
	return json.Marshal(g.Flags)
}

// UnmarshalJSON accepts both the boolean shorthand and the structured form.
// Any other shape decodes to an empty grant so a malformed role entry
// contributes nothing rather than failing the whole role.
func (g *PermissionGrant) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	var full bool
	if err := json.Unmarshal(trimmed, &full); err == nil {
		*g = PermissionGrant{FullAccess: full}
		return nil
	}

	var flags ModulePermission
	if err := json.Unmarshal(trimmed, &flags); err == nil {
		*g = PermissionGrant{Flags: flags}
		return nil
	}

	*g = PermissionGrant{}
	return nil
}

// Role defines a named set of module permissions. TenantID is nil for
// platform-scoped role templates.
type Role struct {
	ID          string
	TenantID    *string
	Name        string
	Description *string
	Permissions map[string]PermissionGrant
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserRoleAssignment links a user to a role within a tenant.
type UserRoleAssignment struct {
	UserID     string
	RoleID     string
	TenantID   *string
	AssignedAt time.Time
}

// EffectivePermissions is the aggregated per-module capability map for a
// user. It is derived on demand from the user's roles and never persisted.
type EffectivePermissions map[string]ModulePermission

// Allows reports whether the action is granted for the module. A module
// absent from the map is fully inaccessible.
func (e EffectivePermissions) Allows(module, action string) bool {
	perm, ok := e[module]
	if !ok {
		return false
	}
	return perm.Allows(action)
}

// AggregatePermissions folds the permission maps of every role into one
// effective capability map. Aggregation is a commutative OR-union: a flag
// granted by any role stays granted, no role can revoke another role's
// grant. The boolean shorthand and the manage flag both expand to every
// flag, and any granted flag forces can_access for that module.
func AggregatePermissions(roles []Role) EffectivePermissions {
	effective := make(EffectivePermissions)

	for _, role := range roles {
		for module, grant := range role.Permissions {
			if module == "" {
				continue
			}

			acc := effective[module]
			if grant.FullAccess || grant.Flags.Manage {
				acc.or(FullModulePermission())
			} else {
				acc.or(grant.Flags)
			}

			if acc.anyGranted() {
				acc.CanAccess = true
			}

			effective[module] = acc
		}
	}

	return effective
}
