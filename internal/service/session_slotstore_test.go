package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	enginemocks "github.com/ticketlab/gatehouse/internal/mocks"
	mocks "github.com/ticketlab/gatehouse/internal/mocks/auth"
	"github.com/ticketlab/gatehouse/internal/ports"
)

// These tests pin down slot store failure handling with strict
// expectations: which slots get read, written, and cleared, and in what
// order.

func TestSessionService_RestorePurgesMalformedAdminSlot(t *testing.T) {
	ctrl := gomock.NewController(t)
	slots := enginemocks.NewMockSlotStore(ctrl)

	gomock.InOrder(
		slots.EXPECT().Read(gomock.Any(), ports.SlotAdministrator).
			Return(ports.Slot{Token: "t", Profile: []byte(`{"id":"a-1"}`)}, nil),
		slots.EXPECT().Clear(gomock.Any(), ports.SlotAdministrator).Return(nil),
		slots.EXPECT().Read(gomock.Any(), ports.SlotCustomer).
			Return(ports.Slot{Token: "t", Profile: []byte(customerProfileJSON)}, nil),
	)

	svc := NewSessionService(SessionServiceOptions{
		Slots:     slots,
		Customers: &mocks.ScriptedCustomerAuthenticator{},
		Admins:    &mocks.ScriptedAdminAuthenticator{},
	})
	svc.Restore(context.Background())

	snap := svc.Snapshot()
	assert.Equal(t, StateCustomer, snap.State)
	assert.False(t, snap.IsAdmin)
}

func TestSessionService_RestoreTreatsReadErrorAsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	slots := enginemocks.NewMockSlotStore(ctrl)

	slots.EXPECT().Read(gomock.Any(), ports.SlotAdministrator).
		Return(ports.Slot{}, errors.New("redis down"))
	slots.EXPECT().Read(gomock.Any(), ports.SlotCustomer).
		Return(ports.Slot{}, errors.New("redis down"))

	svc := NewSessionService(SessionServiceOptions{
		Slots:     slots,
		Customers: &mocks.ScriptedCustomerAuthenticator{},
		Admins:    &mocks.ScriptedAdminAuthenticator{},
	})
	svc.Restore(context.Background())

	snap := svc.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.False(t, snap.IsAuthenticated)
}

func TestSessionService_LoginSurvivesSlotWriteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	slots := enginemocks.NewMockSlotStore(ctrl)

	slots.EXPECT().Write(gomock.Any(), ports.SlotCustomer, gomock.Any()).
		Return(errors.New("redis down"))

	customers := &mocks.ScriptedCustomerAuthenticator{
		Result: ports.LoginResult{Token: "tok-1", Profile: []byte(customerProfileJSON)},
	}
	svc := NewSessionService(SessionServiceOptions{
		Slots:     slots,
		Customers: customers,
		Admins:    &mocks.ScriptedAdminAuthenticator{},
	})

	err := svc.Login(context.Background(), ports.Credentials{Email: "amy@example.com", Password: "pw"})
	require.NoError(t, err)

	snap := svc.Snapshot()
	assert.Equal(t, StateCustomer, snap.State)
	assert.True(t, snap.IsAuthenticated)
}

func TestSessionService_LogoutClearFailureStillLogsOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	slots := enginemocks.NewMockSlotStore(ctrl)

	slots.EXPECT().Write(gomock.Any(), ports.SlotCustomer, gomock.Any()).Return(nil)
	slots.EXPECT().Clear(gomock.Any(), ports.SlotCustomer).Return(errors.New("redis down"))

	customers := &mocks.ScriptedCustomerAuthenticator{
		Result: ports.LoginResult{Token: "tok-1", Profile: []byte(customerProfileJSON)},
	}
	svc := NewSessionService(SessionServiceOptions{
		Slots:     slots,
		Customers: customers,
		Admins:    &mocks.ScriptedAdminAuthenticator{},
	})

	require.NoError(t, svc.Login(context.Background(), ports.Credentials{Email: "amy@example.com", Password: "pw"}))
	require.NoError(t, svc.Logout(context.Background()))

	snap := svc.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Nil(t, snap.Principal)
}
