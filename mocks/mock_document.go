package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joseph-ayodele/docconv/internal/document"
)

type MockDocument struct {
	mock.Mock
}

func (m *MockDocument) PageCount() int {
	return m.Called().Int(0)
}

func (m *MockDocument) RenderPage(ctx context.Context, index int) ([]byte, error) {
	args := m.Called(ctx, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDocument) PageText(ctx context.Context, index int) (string, error) {
	args := m.Called(ctx, index)
	return args.String(0), args.Error(1)
}

func (m *MockDocument) PageImages(ctx context.Context, index int) ([]document.ImageInfo, error) {
	args := m.Called(ctx, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.ImageInfo), args.Error(1)
}

func (m *MockDocument) Close() error {
	return m.Called().Error(0)
}

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Name() string {
	return m.Called().String(0)
}

func (m *MockBackend) Probe(ctx context.Context) document.Capabilities {
	return m.Called(ctx).Get(0).(document.Capabilities)
}

func (m *MockBackend) Open(ctx context.Context, path string) (document.Document, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(document.Document), args.Error(1)
}
