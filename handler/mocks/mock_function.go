// Package mocks provides testify mocks of the handler contracts.
package mocks

import (
	"context"

	"e5e/function"
	"e5e/handler"

	"github.com/stretchr/testify/mock"
)

// MockFunction is a mock implementation of handler.Function.
type MockFunction struct {
	mock.Mock
}

var _ handler.Function = (*MockFunction)(nil)

func (m *MockFunction) Handle(ctx context.Context, req function.Request) (*function.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*function.Response)
	return resp, args.Error(1)
}

// ExpectHandle sets up an expectation for requests of the given event type.
func (m *MockFunction) ExpectHandle(eventType function.RequestDataType, resp *function.Response, err error) *mock.Call {
	return m.On("Handle",
		mock.Anything, // ctx
		mock.MatchedBy(func(req function.Request) bool {
			return req.Event != nil && req.Event.Type == eventType
		}),
	).Return(resp, err)
}

// ExpectHandleAny sets up an expectation for any Handle call.
func (m *MockFunction) ExpectHandleAny(resp *function.Response, err error) *mock.Call {
	return m.On("Handle", mock.Anything, mock.Anything).Return(resp, err)
}
