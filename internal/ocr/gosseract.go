//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/docconv/constants"
	"github.com/joseph-ayodele/docconv/internal/common"
)

// GosseractProvider runs tesseract in-process through cgo.
type GosseractProvider struct {
	cfg    EngineConfig
	logger *slog.Logger
}

func NewGosseractProvider(cfg EngineConfig, logger *slog.Logger) *GosseractProvider {
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GosseractProvider{cfg: cfg, logger: logger}
}

func (p *GosseractProvider) Name() string { return constants.MethodGosseract }

func (p *GosseractProvider) Probe(context.Context) Capabilities {
	return Capabilities{Engine: p.Name(), Available: true, Version: gosseract.Version()}
}

func (p *GosseractProvider) Open(context.Context) (Engine, error) {
	client := gosseract.NewClient()
	if p.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(p.cfg.TessdataDir); err != nil {
			_ = client.Close()
			return nil, common.Unavailable("set tessdata prefix", err)
		}
	}
	if err := client.SetLanguage(strings.Split(p.cfg.Lang, "+")...); err != nil {
		_ = client.Close()
		return nil, common.Unavailable(fmt.Sprintf("set language %q", p.cfg.Lang), err)
	}
	if p.cfg.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(p.cfg.PSM)); err != nil {
			_ = client.Close()
			return nil, common.Unavailable("set page segmentation mode", err)
		}
	}
	if p.cfg.DPI > 0 {
		_ = client.SetVariable("user_defined_dpi", strconv.Itoa(p.cfg.DPI))
	}
	return &gosseractEngine{client: client, logger: p.logger}, nil
}

type gosseractEngine struct {
	client *gosseract.Client
	logger *slog.Logger
}

func (e *gosseractEngine) Name() string { return constants.MethodGosseract }

func (e *gosseractEngine) Recognize(ctx context.Context, png []byte) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.client.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("gosseract set image: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("gosseract bounding boxes: %w", err)
	}
	dets := make([]Detection, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		r := b.Box
		dets = append(dets, Detection{
			Quad:       RectQuad(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy())),
			Text:       text,
			Confidence: min(b.Confidence/100, 1),
		})
	}
	return dets, nil
}

func (e *gosseractEngine) Close() error {
	return e.client.Close()
}
