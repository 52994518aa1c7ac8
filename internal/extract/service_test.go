package extract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/docconv/internal/convert"
	"github.com/joseph-ayodele/docconv/internal/extract"
)

type stubConverter struct {
	res     *convert.ConversionResult
	gotMode convert.Mode
	gotOpts convert.Options
}

func (s *stubConverter) Convert(_ context.Context, mode convert.Mode, _ string, opts convert.Options) *convert.ConversionResult {
	s.gotMode, s.gotOpts = mode, opts
	return s.res
}

func TestService_Extract(t *testing.T) {
	conv := &stubConverter{res: convert.Succeeded(contractMD, 1, "tesseract")}
	svc := extract.NewService(conv, nil, nil)

	res, convRes := svc.Extract(context.Background(), "contract.pdf", []string{"contract_number"})

	assert.True(t, res.Success)
	assert.Equal(t, map[string]string{"contractNumber": "HT-2024-001"}, res.Fields)
	assert.Same(t, conv.res, convRes)
	assert.Equal(t, convert.ModeConvert, conv.gotMode)
	assert.Equal(t, convert.DefaultOptions(), conv.gotOpts)
}

func TestService_ConversionFailure(t *testing.T) {
	svc := extract.NewService(&stubConverter{res: convert.Failed("cannot open", 0)}, nil, nil)

	res, _ := svc.Extract(context.Background(), "missing.pdf", []string{"title"})

	assert.False(t, res.Success)
	assert.Equal(t, "cannot open", res.Error)
	assert.NotNil(t, res.Fields)
	assert.Empty(t, res.Fields)
}
