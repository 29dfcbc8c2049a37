package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateAdminFlags(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		opts, err := parseCreateAdminFlags([]string{
			"--email", "ops@example.com",
			"--password", "hunter2",
			"--role", "event_manager",
			"--permissions", "events_view, events.create",
		})
		require.NoError(t, err)
		assert.Equal(t, "ops@example.com", opts.Email)
		assert.Equal(t, "event_manager", opts.Role)
		assert.Equal(t, []string{"events.view", "events.create"}, opts.Permissions)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := parseCreateAdminFlags([]string{"--password", "hunter2"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--email is required")
	})

	t.Run("missing password", func(t *testing.T) {
		_, err := parseCreateAdminFlags([]string{"--email", "ops@example.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--password is required")
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := parseCreateAdminFlags([]string{
			"--email", "ops@example.com",
			"--password", "hunter2",
			"--role", "owner",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown role "owner"`)
	})
}

func TestParseSetRoleFlags(t *testing.T) {
	opts, err := parseSetRoleFlags([]string{
		"--email", "ops@example.com",
		"--role", "analyst",
	})
	require.NoError(t, err)
	assert.Equal(t, "analyst", opts.Role)
	assert.Nil(t, opts.Permissions)

	_, err = parseSetRoleFlags([]string{"--email", "ops@example.com", "--role", "boss"})
	require.Error(t, err)
}

func TestParsePermissionsCSV(t *testing.T) {
	assert.Nil(t, parsePermissionsCSV(""))
	assert.Nil(t, parsePermissionsCSV(" , ,"))
	assert.Equal(t,
		[]string{"orders.view", "orders.refund"},
		parsePermissionsCSV("orders_view, orders.refund"),
	)
}

func TestParseListAdminsFlags(t *testing.T) {
	opts, err := parseListAdminsFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, 50, opts.Limit)

	_, err = parseListAdminsFlags([]string{"--limit", "0"})
	require.Error(t, err)
}

func TestIsLikelyRemoteHost(t *testing.T) {
	cases := []struct {
		host   string
		remote bool
	}{
		{"localhost", false},
		{"127.0.0.1", false},
		{"::1", false},
		{"db.internal.local", false},
		{"", false},
		{"10.1.2.3", true},
		{"db.prod.example.com", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.remote, isLikelyRemoteHost(tc.host), tc.host)
	}
}
