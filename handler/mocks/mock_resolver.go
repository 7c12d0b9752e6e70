package mocks

import (
	"e5e/handler"

	"github.com/stretchr/testify/mock"
)

// MockResolver is a mock implementation of handler.Resolver.
type MockResolver struct {
	mock.Mock
}

var _ handler.Resolver = (*MockResolver)(nil)

func (m *MockResolver) Resolve(entrypoint string) (handler.Function, error) {
	args := m.Called(entrypoint)
	fn, _ := args.Get(0).(handler.Function)
	return fn, args.Error(1)
}
