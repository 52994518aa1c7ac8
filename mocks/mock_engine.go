package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joseph-ayodele/docconv/internal/ocr"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Name() string {
	return m.Called().String(0)
}

func (m *MockEngine) Recognize(ctx context.Context, png []byte) ([]ocr.Detection, error) {
	args := m.Called(ctx, png)
	if fn, ok := args.Get(0).(func(context.Context, []byte) ([]ocr.Detection, error)); ok {
		return fn(ctx, png)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ocr.Detection), args.Error(1)
}

func (m *MockEngine) Close() error {
	return m.Called().Error(0)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	return m.Called().String(0)
}

func (m *MockProvider) Probe(ctx context.Context) ocr.Capabilities {
	return m.Called(ctx).Get(0).(ocr.Capabilities)
}

func (m *MockProvider) Open(ctx context.Context) (ocr.Engine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ocr.Engine), args.Error(1)
}
