// Package mocks provides mock implementations for testing the session engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the engine's port interfaces. The mocks are generated using go:generate
// directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	slots := mocks.NewMockSlotStore(ctrl)
//	slots.EXPECT().Read(gomock.Any(), ports.SlotAdministrator).Return(ports.Slot{}, ports.ErrSlotNotFound)
package mocks

// Generate mocks for the engine port interfaces:
// SlotStore, CustomerAuthenticator, AdminAuthenticator, AdminSSOProvider
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=auth_ports_mock.go github.com/ticketlab/gatehouse/internal/ports SlotStore,CustomerAuthenticator,AdminAuthenticator,AdminSSOProvider
