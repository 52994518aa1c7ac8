package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/docconv/constants"
	"github.com/joseph-ayodele/docconv/internal/command"
	"github.com/joseph-ayodele/docconv/internal/common"
)

// ErrOCRNotEnabled is returned by the in-process engine when the binary was
// built without the ocr build tag.
var ErrOCRNotEnabled = errors.New("in-process OCR not enabled; rebuild with -tags ocr")

// Engine recognizes text on one rasterized page.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, png []byte) ([]Detection, error)
	Close() error
}

// Capabilities describes what an engine provider can do on this host.
type Capabilities struct {
	Engine    string `json:"engine"`
	Version   string `json:"version,omitempty"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Provider probes for and opens an Engine. One engine is opened per conversion.
type Provider interface {
	Name() string
	Probe(ctx context.Context) Capabilities
	Open(ctx context.Context) (Engine, error)
}

// EngineConfig carries the settings shared by every engine.
type EngineConfig struct {
	Binary      string
	Lang        string
	TessdataDir string
	PSM         int
	OEM         int
	DPI         int
}

// EngineConfigFrom maps the loaded configuration onto EngineConfig.
func EngineConfigFrom(cfg common.OCRConfig) EngineConfig {
	return EngineConfig{
		Binary:      cfg.Tesseract,
		Lang:        cfg.Lang,
		TessdataDir: cfg.TessdataDir,
		PSM:         cfg.PSM,
		OEM:         cfg.OEM,
		DPI:         cfg.DPI,
	}
}

// NewProvider returns the provider for the configured engine.
func NewProvider(cfg common.OCRConfig, runner command.Runner, logger *slog.Logger) (Provider, error) {
	ec := EngineConfigFrom(cfg)
	switch cfg.Engine {
	case "", constants.MethodTesseract:
		return NewTesseractProvider(ec, runner, logger), nil
	case constants.MethodGosseract:
		return NewGosseractProvider(ec, logger), nil
	default:
		return nil, common.InvalidInput(fmt.Sprintf("unknown OCR engine %q", cfg.Engine), nil)
	}
}
