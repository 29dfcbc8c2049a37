package ports_test

import (
	"testing"

	mocks "github.com/ticketlab/gatehouse/internal/mocks/auth"
	"github.com/ticketlab/gatehouse/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.SlotStore = (*mocks.MemorySlotStore)(nil)
	var _ ports.CustomerAuthenticator = (*mocks.ScriptedCustomerAuthenticator)(nil)
	var _ ports.AdminAuthenticator = (*mocks.ScriptedAdminAuthenticator)(nil)
	var _ ports.AdminSSOProvider = (*mocks.MockSSOProvider)(nil)
}
