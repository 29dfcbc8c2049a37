package principal

import "strings"

// Permission is a capability token in canonical dotted form
// (e.g. "events.create"). Upstream APIs and older persisted profiles
// spell the same capability with underscores ("events_create"); both
// spellings are mapped to the canonical form at the I/O boundary by
// Canonical, so internal logic never juggles two spellings.
type Permission string

// Wildcard grants every permission in the catalogue.
const Wildcard Permission = "*"

// Canonical maps any accepted spelling of a capability token to its
// canonical dotted form. The mapping is total: unknown tokens are still
// normalized, so membership checks stay spelling-insensitive.
func Canonical(token string) Permission {
	return Permission(strings.ReplaceAll(strings.TrimSpace(token), "_", "."))
}

// Catalogue returns the full static set of known permissions in
// canonical form. The order is stable for deterministic serialization.
func Catalogue() []Permission {
	return []Permission{
		"events.view",
		"events.create",
		"events.update",
		"events.delete",
		"events.publish",
		"venues.view",
		"venues.manage",
		"orders.view",
		"orders.update",
		"orders.refund",
		"tickets.view",
		"tickets.scan",
		"customers.view",
		"customers.manage",
		"admins.view",
		"admins.manage",
		"reports.view",
		"settings.manage",
	}
}

// DefaultPermissions returns the baseline grant for a role. It seeds new
// admin accounts; the authorization checks themselves only consult the
// permissions actually attached to the administrator.
func DefaultPermissions(role AdminRole) []Permission {
	switch role {
	case RoleSuperAdmin:
		return append([]Permission{Wildcard}, Catalogue()...)
	case RoleEventManager:
		return []Permission{
			"events.view", "events.create", "events.update", "events.delete", "events.publish",
			"venues.view", "venues.manage", "tickets.view", "reports.view",
		}
	case RoleSupportAgent:
		return []Permission{
			"orders.view", "orders.update", "orders.refund",
			"customers.view", "customers.manage", "tickets.view",
		}
	case RoleAnalyst:
		return []Permission{"events.view", "orders.view", "reports.view"}
	default:
		return nil
	}
}

// CanonicalizeAll maps a list of raw permission strings to canonical
// tokens, dropping empties and duplicates while preserving order.
func CanonicalizeAll(raw []string) []Permission {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[Permission]struct{}, len(raw))
	out := make([]Permission, 0, len(raw))
	for _, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		p := Permission(s)
		if s != string(Wildcard) {
			p = Canonical(s)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
