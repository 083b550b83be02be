package middleware

import (
	"fmt"

	"github.com/fastygo/accountdesk/domain"
)

const (
	PolicyAdmin   = "admin"
	PolicyManager = "manager"
)

// Policy is a named allow-list with the message returned on denial.
type Policy struct {
	Name    string
	Allowed domain.RoleSet
	Message string
}

func (p Policy) Allows(role domain.Role) bool {
	return p.Allowed.Contains(role)
}

// Policies is the per-route authorization table.
type Policies map[string]Policy

// NewPolicies builds the table from configured allow-lists. Nil sets fall back
// to the defaults: admin routes for admins, manager routes for managers and
// admins. The trader role is never included unless configured explicitly.
func NewPolicies(admin, manager domain.RoleSet) Policies {
	if len(admin) == 0 {
		admin = domain.NewRoleSet(domain.RoleAdmin)
	}
	if len(manager) == 0 {
		manager = domain.NewRoleSet(domain.RoleAdmin, domain.RoleManager)
	}
	return Policies{
		PolicyAdmin: {
			Name:    PolicyAdmin,
			Allowed: admin,
			Message: "Admin access required",
		},
		PolicyManager: {
			Name:    PolicyManager,
			Allowed: manager,
			Message: "Manager or admin access required",
		},
	}
}

// Get returns the named policy. Routes are wired at start-up, so an unknown
// name is a programming error.
func (p Policies) Get(name string) Policy {
	policy, ok := p[name]
	if !ok {
		panic(fmt.Sprintf("middleware: unknown policy %q", name))
	}
	return policy
}
