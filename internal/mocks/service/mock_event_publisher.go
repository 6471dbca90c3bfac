// Package service provides testify mocks for the domain service contracts.
package service

import (
	context "context"

	service "shopreg/internal/domain/service"

	mock "github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock type for the EventPublisher type
type MockEventPublisher struct {
	mock.Mock
}

// Close provides a mock function with no fields
func (_m *MockEventPublisher) Close() error {
	ret := _m.Called()

	return ret.Error(0)
}

// PublishAccountEvent provides a mock function with given fields: ctx, event
func (_m *MockEventPublisher) PublishAccountEvent(ctx context.Context, event *service.AccountEvent) error {
	ret := _m.Called(ctx, event)

	return ret.Error(0)
}

// NewMockEventPublisher creates a new instance of MockEventPublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEventPublisher {
	m := &MockEventPublisher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
