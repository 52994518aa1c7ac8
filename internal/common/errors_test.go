package common_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/docconv/internal/common"
)

func TestAppError_UnwrapsSentinels(t *testing.T) {
	cause := errors.New("exec: \"tesseract\": executable file not found in $PATH")
	err := common.Unavailable("tesseract not available", cause)

	assert.ErrorIs(t, err, common.ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), common.CodeUnavailable)
	assert.Contains(t, err.Error(), "tesseract not available")
}

func TestAppError_GRPCStatusThroughWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"unavailable", common.Unavailable("x", nil), codes.Unavailable},
		{"invalid input", common.InvalidInput("x", nil), codes.InvalidArgument},
		{"conversion", common.ConversionFailed("x", nil), codes.Internal},
		{"config", common.NewAppError(common.CodeConfig, "x", nil), codes.InvalidArgument},
		{"page", &common.PageError{Page: 2, Err: errors.New("boom")}, codes.Aborted},
		{"plain", errors.New("plain"), codes.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.Equal(t, tt.want, status.Code(wrapped))
		})
	}
}

func TestPageError(t *testing.T) {
	cause := errors.New("render failed")
	err := &common.PageError{Page: 3, Err: cause}

	assert.Equal(t, "page 3: render failed", err.Error())
	assert.ErrorIs(t, err, common.ErrPageFailure)
	assert.ErrorIs(t, err, cause)
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, common.WrapError(nil, "ignored"))

	base := errors.New("base")
	err := common.WrapError(base, "context")
	assert.EqualError(t, err, "context: base")
	assert.ErrorIs(t, err, base)
}
