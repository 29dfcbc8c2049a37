package principal

// Authorization checks are nil-safe methods on *Administrator so callers
// can pass whatever the session currently holds without a guard clause.
// A nil receiver means no administrator is present and every check fails
// closed.

// HasPermission reports whether the administrator holds the capability,
// either via the wildcard or by membership of the canonical token.
// Both dotted and underscore spellings of token are accepted.
func (a *Administrator) HasPermission(token string) bool {
	if a == nil {
		return false
	}
	want := Canonical(token)
	for _, p := range a.Permissions {
		if p == Wildcard || p == want {
			return true
		}
	}
	return false
}

// HasRole reports whether the administrator holds exactly the given role.
func (a *Administrator) HasRole(role string) bool {
	return a != nil && a.Role == AdminRole(role)
}

// CanAccess evaluates a route's access declaration: every listed
// permission must be held (conjunction) and, when roles are listed, at
// least one must match (disjunction). Empty lists impose no requirement,
// so an administrator with both lists empty is always allowed.
func (a *Administrator) CanAccess(perms []string, roles []string) bool {
	if a == nil {
		return false
	}
	for _, p := range perms {
		if !a.HasPermission(p) {
			return false
		}
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if a.HasRole(r) {
			return true
		}
	}
	return false
}
