package principal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	cases := []struct {
		in   string
		want Permission
	}{
		{"events.create", "events.create"},
		{"events_create", "events.create"},
		{"  orders_refund ", "orders.refund"},
		{"settings.manage", "settings.manage"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Canonical(tc.in), "input %q", tc.in)
	}
}

func TestCatalogueStable(t *testing.T) {
	first := Catalogue()
	second := Catalogue()
	require.Equal(t, first, second)
	seen := make(map[Permission]struct{}, len(first))
	for _, p := range first {
		_, dup := seen[p]
		assert.False(t, dup, "duplicate catalogue entry %q", p)
		seen[p] = struct{}{}
		assert.NotContains(t, string(p), "_", "catalogue must be dotted")
	}
}

func TestDefaultPermissions(t *testing.T) {
	t.Run("super admin gets wildcard plus full catalogue", func(t *testing.T) {
		got := DefaultPermissions(RoleSuperAdmin)
		require.NotEmpty(t, got)
		assert.Equal(t, Wildcard, got[0])
		assert.Len(t, got, len(Catalogue())+1)
	})

	t.Run("scoped roles stay inside the catalogue", func(t *testing.T) {
		catalogue := make(map[Permission]struct{})
		for _, p := range Catalogue() {
			catalogue[p] = struct{}{}
		}
		for _, role := range []AdminRole{RoleEventManager, RoleSupportAgent, RoleAnalyst} {
			for _, p := range DefaultPermissions(role) {
				_, known := catalogue[p]
				assert.True(t, known, "role %s grants unknown permission %q", role, p)
			}
		}
	})

	t.Run("unknown role grants nothing", func(t *testing.T) {
		assert.Nil(t, DefaultPermissions(AdminRole("intern")))
	})
}

func TestCanonicalizeAll(t *testing.T) {
	got := CanonicalizeAll([]string{"events_create", "events.create", "", " ", "*", "orders_view"})
	assert.Equal(t, []Permission{"events.create", Wildcard, "orders.view"}, got)

	assert.Nil(t, CanonicalizeAll(nil))
	assert.Nil(t, CanonicalizeAll([]string{}))
}
