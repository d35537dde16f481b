package mocks

import (
	"context"

	"github.com/dukex/docflow/pkg/directory"
	"github.com/stretchr/testify/mock"
)

// MockDirectory is a mock implementation of directory.Directory interface.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) CurrentUser(ctx context.Context) (*directory.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*directory.User), args.Error(1)
}

func (m *MockDirectory) Users(ctx context.Context, ids []string) (map[string]*directory.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]*directory.User), args.Error(1)
}

func (m *MockDirectory) Organizations(ctx context.Context, ids []string) (map[string]*directory.Organization, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]*directory.Organization), args.Error(1)
}

func (m *MockDirectory) ExternalUsers(ctx context.Context, ids []string) (map[string]*directory.ExternalUser, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]*directory.ExternalUser), args.Error(1)
}

func (m *MockDirectory) UserIDsByRole(ctx context.Context, role string) ([]string, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}
