package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	a := m.Called(ctx, name, args)
	var stdout, stderr []byte
	if v := a.Get(0); v != nil {
		stdout = v.([]byte)
	}
	if v := a.Get(1); v != nil {
		stderr = v.([]byte)
	}
	return stdout, stderr, a.Error(2)
}

func (m *MockRunner) LookPath(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}
