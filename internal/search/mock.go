package search

import (
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of Provider for testing.
type MockProvider struct {
	mock.Mock
}

// Match provides a mock function with given fields: r, query.
func (_m *MockProvider) Match(r Record, query string) bool {
	ret := _m.Called(r, query)

	if rf, ok := ret.Get(0).(func(Record, string) bool); ok {
		return rf(r, query)
	}
	return ret.Bool(0)
}

// Name provides a mock function with given fields: .
func (_m *MockProvider) Name() string {
	ret := _m.Called()
	return ret.String(0)
}
