// Package repository provides testify mocks for the domain repository contracts.
package repository

import (
	context "context"

	entity "shopreg/internal/domain/entity"

	mock "github.com/stretchr/testify/mock"

	uuid "github.com/google/uuid"
)

// MockUserRepository is a mock type for the UserRepository type
type MockUserRepository struct {
	mock.Mock
}

// CreateWithShops provides a mock function with given fields: ctx, username, passwordHash, shopNames
func (_m *MockUserRepository) CreateWithShops(ctx context.Context, username string, passwordHash string, shopNames []string) (*entity.User, error) {
	ret := _m.Called(ctx, username, passwordHash, shopNames)

	var r0 *entity.User
	if rf, ok := ret.Get(0).(func(context.Context, string, string, []string) *entity.User); ok {
		r0 = rf(ctx, username, passwordHash, shopNames)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.User)
	}

	return r0, ret.Error(1)
}

// FindByID provides a mock function with given fields: ctx, id
func (_m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	ret := _m.Called(ctx, id)

	var r0 *entity.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.User)
	}

	return r0, ret.Error(1)
}

// FindByUsername provides a mock function with given fields: ctx, username
func (_m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	ret := _m.Called(ctx, username)

	var r0 *entity.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.User)
	}

	return r0, ret.Error(1)
}

// FindExistingShopNames provides a mock function with given fields: ctx, names
func (_m *MockUserRepository) FindExistingShopNames(ctx context.Context, names []string) ([]string, error) {
	ret := _m.Called(ctx, names)

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}

	return r0, ret.Error(1)
}

// NewMockUserRepository creates a new instance of MockUserRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
