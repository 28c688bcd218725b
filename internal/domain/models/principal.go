package models

// Role names as issued by the identity provider.
const (
	RoleAdmin          = "Admin"
	RoleProduction     = "Production"
	RoleProductionHead = "Production Head"
	RoleOperator       = "Operator"
	RoleDispatch       = "Dispatch"
	RoleViewer         = "Viewer"
)

// Principal is the authenticated caller.
type Principal struct {
	EmpID string `json:"emp_id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Role2 string `json:"role2,omitempty"`
}

// HasAnyRole reports whether role or role2 matches one of roles.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if r == "" {
			continue
		}
		if p.Role == r || p.Role2 == r {
			return true
		}
	}
	return false
}

// RequireAnyRole returns ErrForbidden naming the accepted roles when none match.
func (p Principal) RequireAnyRole(roles ...string) error {
	if p.HasAnyRole(roles...) {
		return nil
	}
	return Errorf(ErrForbidden, "requires one of roles %v", roles)
}

// DisplayName falls back to the employee id when no name was issued.
func (p Principal) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.EmpID
}
