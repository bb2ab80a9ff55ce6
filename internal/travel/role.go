package travel

import (
	"fmt"
	"strings"
)

// Role is a user's role in the travel desk.
type Role string

const (
	RoleManager       Role = "manager"
	RolePM            Role = "pm"
	RoleOperationsKSA Role = "operations_ksa"
	RoleOperationsUAE Role = "operations_uae"
	RoleAdmin         Role = "admin"
)

// DefaultApproverRoles are the roles allowed to approve or reject a request
// unless the deployment configures its own mapping.
var DefaultApproverRoles = []Role{RoleManager, RolePM, RoleAdmin}

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleManager, RolePM, RoleOperationsKSA, RoleOperationsUAE, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %s", s)
	}
}

// ParseRoles parses a comma separated role list, skipping blanks.
func ParseRoles(csv string) ([]Role, error) {
	var roles []Role
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r, err := ParseRole(part)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, nil
}

func (r Role) IsOperations() bool {
	return r == RoleOperationsKSA || r == RoleOperationsUAE
}

// Principal is the role information needed to pick a dashboard.
type Principal struct {
	Role       Role
	ActiveRole Role
}

// ResolveEffectiveRole returns the role a user acts as. Admins may impersonate
// any other role through ActiveRole; everyone else acts as their own role.
func ResolveEffectiveRole(p Principal) Role {
	if p.Role != RoleAdmin || p.ActiveRole == "" {
		return p.Role
	}
	if _, err := ParseRole(string(p.ActiveRole)); err != nil {
		return RoleAdmin
	}
	return p.ActiveRole
}

// ApprovalPolicy decides which effective roles may approve, reject and complete.
type ApprovalPolicy struct {
	approvers map[Role]bool
}

func NewApprovalPolicy(approvers []Role) ApprovalPolicy {
	if len(approvers) == 0 {
		approvers = DefaultApproverRoles
	}
	m := make(map[Role]bool, len(approvers))
	for _, r := range approvers {
		m[r] = true
	}
	return ApprovalPolicy{approvers: m}
}

func (p ApprovalPolicy) CanApprove(r Role) bool {
	return p.approvers[r]
}

// CanComplete reports whether r may record bookings and complete a request.
// Any regional operations team may complete any approved request.
func (p ApprovalPolicy) CanComplete(r Role) bool {
	return r.IsOperations()
}
