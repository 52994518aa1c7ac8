//go:build !ocr

package ocr

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/docconv/constants"
	"github.com/joseph-ayodele/docconv/internal/common"
)

// GosseractProvider is a placeholder when built without the ocr tag.
type GosseractProvider struct{}

func NewGosseractProvider(EngineConfig, *slog.Logger) *GosseractProvider {
	return &GosseractProvider{}
}

func (p *GosseractProvider) Name() string { return constants.MethodGosseract }

func (p *GosseractProvider) Probe(context.Context) Capabilities {
	return Capabilities{Engine: p.Name(), Reason: ErrOCRNotEnabled.Error()}
}

func (p *GosseractProvider) Open(context.Context) (Engine, error) {
	return nil, common.Unavailable("gosseract engine", ErrOCRNotEnabled)
}
