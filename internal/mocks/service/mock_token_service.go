package service

import (
	time "time"

	service "shopreg/internal/domain/service"

	mock "github.com/stretchr/testify/mock"

	uuid "github.com/google/uuid"
)

// MockTokenService is a mock type for the TokenService type
type MockTokenService struct {
	mock.Mock
}

// GenerateToken provides a mock function with given fields: userID, username, ttl
func (_m *MockTokenService) GenerateToken(userID uuid.UUID, username string, ttl time.Duration) (string, time.Time, error) {
	ret := _m.Called(userID, username, ttl)

	var r1 time.Time
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(time.Time)
	}

	return ret.String(0), r1, ret.Error(2)
}

// ValidateToken provides a mock function with given fields: tokenString
func (_m *MockTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	ret := _m.Called(tokenString)

	var r0 *service.Claims
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*service.Claims)
	}

	return r0, ret.Error(1)
}

// NewMockTokenService creates a new instance of MockTokenService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockTokenService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTokenService {
	m := &MockTokenService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
