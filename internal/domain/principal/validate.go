package principal

import (
	"encoding/json"
	"time"
)

// Validation turns untrusted profile JSON (login responses, persisted
// slots possibly written by an older schema) into well-typed principals.
// Any shape problem yields nil; validation never panics and never
// returns an error value, so callers only nil-check. Unknown fields are
// ignored so forward-compatible schema additions do not invalidate a
// persisted slot.

// ValidateCustomer parses raw JSON into a Customer. The minimal required
// field set is a string id and a string email; everything else defaults.
func ValidateCustomer(raw []byte) *Customer {
	obj := decodeObject(raw)
	if obj == nil {
		return nil
	}

	id, okID := stringField(obj, "id")
	email, okEmail := stringField(obj, "email")
	if !okID || !okEmail || id == "" || email == "" {
		return nil
	}

	now := time.Now().UTC()
	c := &Customer{
		ID:            id,
		Email:         email,
		Role:          "user",
		EmailVerified: boolField(obj, "emailVerified", "email_verified"),
		PhoneVerified: boolField(obj, "phoneVerified", "phone_verified"),
		CreatedAt:     timeField(obj, now, "createdAt", "created_at"),
		UpdatedAt:     timeField(obj, now, "updatedAt", "updated_at"),
	}
	c.Phone, _ = stringField(obj, "phone")
	c.FirstName, _ = stringField(obj, "firstName", "first_name")
	c.LastName, _ = stringField(obj, "lastName", "last_name")
	return c
}

// ValidateAdministrator parses raw JSON into an Administrator. Requires
// id, email, a resolvable first/last name (the upstream API emits both
// camel-case and snake-case spellings) and a role. For super_admin the
// permission set is unconditionally replaced with the wildcard plus the
// full catalogue: server-issued data for that role may be stale or
// incomplete and must never lock a super-administrator out.
func ValidateAdministrator(raw []byte) *Administrator {
	obj := decodeObject(raw)
	if obj == nil {
		return nil
	}

	id, okID := stringField(obj, "id")
	email, okEmail := stringField(obj, "email")
	first, okFirst := stringField(obj, "firstName", "first_name")
	last, okLast := stringField(obj, "lastName", "last_name")
	role, okRole := stringField(obj, "role")
	if !okID || !okEmail || !okRole || id == "" || email == "" || role == "" {
		return nil
	}
	if (!okFirst || first == "") && (!okLast || last == "") {
		return nil
	}

	now := time.Now().UTC()
	a := &Administrator{
		ID:          id,
		Email:       email,
		FirstName:   first,
		LastName:    last,
		Role:        AdminRole(role),
		Permissions: CanonicalizeAll(stringSliceField(obj, "permissions")),
		IsActive:    boolFieldDefault(obj, true, "isActive", "is_active"),
		CreatedAt:   timeField(obj, now, "createdAt", "created_at"),
		UpdatedAt:   timeField(obj, now, "updatedAt", "updated_at"),
	}
	if t, ok := timeFieldOptional(obj, "lastLoginAt", "last_login_at"); ok {
		a.LastLoginAt = &t
	}

	if a.Role == RoleSuperAdmin {
		a.Permissions = append([]Permission{Wildcard}, Catalogue()...)
	}
	return a
}

// decodeObject parses raw bytes into a JSON object, or nil when the
// payload is empty, malformed, or not an object.
func decodeObject(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return obj
}

// stringField returns the first present key holding a string value.
func stringField(obj map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, present := obj[k]; present {
			s, ok := v.(string)
			return s, ok
		}
	}
	return "", false
}

func boolField(obj map[string]any, keys ...string) bool {
	return boolFieldDefault(obj, false, keys...)
}

func boolFieldDefault(obj map[string]any, def bool, keys ...string) bool {
	for _, k := range keys {
		if v, present := obj[k]; present {
			if b, ok := v.(bool); ok {
				return b
			}
			return def
		}
	}
	return def
}

// timeField parses an RFC3339 timestamp under any of the keys, falling
// back to def so the profile is always well-formed for display.
func timeField(obj map[string]any, def time.Time, keys ...string) time.Time {
	if t, ok := timeFieldOptional(obj, keys...); ok {
		return t
	}
	return def
}

func timeFieldOptional(obj map[string]any, keys ...string) (time.Time, bool) {
	for _, k := range keys {
		v, present := obj[k]
		if !present {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func stringSliceField(obj map[string]any, keys ...string) []string {
	for _, k := range keys {
		v, present := obj[k]
		if !present {
			continue
		}
		items, ok := v.([]any)
		if !ok {
			return nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, isStr := item.(string); isStr {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
