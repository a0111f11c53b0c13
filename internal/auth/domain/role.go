package domain

import (
	"slices"
	"sort"
)

type Role string

const (
	RoleFounder      Role = "FOUNDER"
	RoleCoreTeam     Role = "CORE_TEAM"
	RoleAdmin        Role = "ADMIN"
	RoleModerator    Role = "MODERATOR"
	RoleCreator      Role = "CREATOR"
	RoleStandardUser Role = "STANDARD_USER"
	RoleSuspended    Role = "SUSPENDED"
	RoleBanned       Role = "BANNED"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleGrants[r]
	return ok
}

const (
	PermProfileRead   = "profile:read"
	PermProfileWrite  = "profile:write"
	PermWalletRead    = "wallet:read"
	PermUsersRead     = "users:read"
	PermUsersWrite    = "users:write"
	PermSessionsRead  = "sessions:read"
	PermSessionsWrite = "sessions:write"
	PermAuditRead     = "audit:read"
	PermAdminAccess   = "admin:access"
)

var allPermissions = []string{
	PermProfileRead, PermProfileWrite, PermWalletRead,
	PermUsersRead, PermUsersWrite,
	PermSessionsRead, PermSessionsWrite,
	PermAuditRead, PermAdminAccess,
}

var selfService = []string{PermProfileRead, PermProfileWrite, PermWalletRead}

var roleGrants = map[Role][]string{
	RoleFounder:  allPermissions,
	RoleCoreTeam: allPermissions,
	RoleAdmin:    allPermissions,
	RoleModerator: append(slices.Clone(selfService),
		PermUsersRead, PermSessionsRead, PermAuditRead, PermAdminAccess),
	RoleCreator:      selfService,
	RoleStandardUser: selfService,
	RoleSuspended:    nil,
	RoleBanned:       nil,
}

// IsPermission reports whether p is a permission this service knows about.
func IsPermission(p string) bool { return slices.Contains(allPermissions, p) }

// PermissionSet is a normalized, sorted, de-duplicated permission list.
type PermissionSet []string

// Has reports whether the set contains p.
func (ps PermissionSet) Has(p string) bool {
	_, found := slices.BinarySearch(ps, p)
	return found
}

// ResolvePermissions is the one place a principal becomes a permission set.
// The override list wins when present, otherwise the role's static grant.
// SUSPENDED and BANNED resolve to nothing regardless of overrides.
func ResolvePermissions(u User) PermissionSet {
	if u.Role == RoleSuspended || u.Role == RoleBanned {
		return PermissionSet{}
	}

	src := roleGrants[u.Role]
	if u.Permissions != nil {
		src = u.Permissions
	}

	out := make(PermissionSet, 0, len(src))
	for _, p := range src {
		if IsPermission(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return slices.Compact(out)
}
