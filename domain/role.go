package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// Role is the closed set of platform roles. Values coming from storage or
// requests are parsed through ParseRole so authorization never sees raw strings.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleTrader  Role = "trader"
	RoleViewer  Role = "viewer"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:   {},
	RoleManager: {},
	RoleTrader:  {},
	RoleViewer:  {},
}

// ParseRole converts a stored or submitted value into a Role.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := knownRoles[role]; !ok {
		return "", ErrUnknownRole
	}
	return role, nil
}

func (r Role) String() string {
	return string(r)
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleSet is an allow-list of roles.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// ParseRoleSet parses a comma separated list such as "admin,manager".
func ParseRoleSet(value string) (RoleSet, error) {
	set := RoleSet{}
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		role, err := ParseRole(part)
		if err != nil {
			return nil, WrapError(ErrCodeInvalid, "unknown role "+strings.TrimSpace(part), err)
		}
		set[role] = struct{}{}
	}
	if len(set) == 0 {
		return nil, NewError(ErrCodeInvalid, "empty role set")
	}
	return set, nil
}

func (s RoleSet) Contains(role Role) bool {
	_, ok := s[role]
	return ok
}

// Roles returns the members in a stable order.
func (s RoleSet) Roles() []Role {
	roles := make([]Role, 0, len(s))
	for role := range s {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}
