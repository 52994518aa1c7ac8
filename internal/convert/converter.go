package convert

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/rotisserie/eris"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/docconv/internal/common"
	"github.com/joseph-ayodele/docconv/internal/document"
	"github.com/joseph-ayodele/docconv/internal/ocr"
)

// Mode selects what a conversion runs.
type Mode string

const (
	// ModeConvert runs OCR with embedded fallback when Options.OCR is set,
	// embedded extraction otherwise, and attaches tables and images.
	ModeConvert Mode = "convert"
	// ModeOCR runs OCR with embedded fallback and never attaches tables or images.
	ModeOCR Mode = "ocr"
	// ModeEmbedded reads only the text layer.
	ModeEmbedded Mode = "embedded"
)

// Service converts one document. Implementations never return a nil result.
type Service interface {
	Convert(ctx context.Context, mode Mode, path string, opts Options) *ConversionResult
}

// Converter wires an OCR provider and document backends together.
type Converter struct {
	provider ocr.Provider
	ocrCaps  ocr.Capabilities
	registry *document.Registry
	maxPages int
	logger   *slog.Logger
}

// NewConverter takes capabilities probed once at startup. maxPages caps pages
// processed when the options don't; 0 means no cap.
func NewConverter(provider ocr.Provider, ocrCaps ocr.Capabilities, registry *document.Registry, maxPages int, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		provider: provider,
		ocrCaps:  ocrCaps,
		registry: registry,
		maxPages: maxPages,
		logger:   logger,
	}
}

// Convert runs mode on path. Every error and panic becomes a failed result.
func (c *Converter) Convert(ctx context.Context, mode Mode, path string, opts Options) (res *ConversionResult) {
	logger := common.LoggerFromContext(ctx, c.logger).With("path", path, "mode", string(mode))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("conversion panicked", "panic", r)
			res = Failed(fmt.Sprintf("conversion panicked: %v\n%s", r, debug.Stack()), 0)
			res.Code = codes.Internal.String()
		}
		logger.Info("conversion finished",
			"method", res.Method,
			"success", res.Success,
			"pages", res.Pages,
			"fallback", res.Fallback,
			"warnings", len(res.Warnings),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	if opts.MaxPages <= 0 {
		opts.MaxPages = c.maxPages
	}

	switch mode {
	case ModeConvert:
		if !opts.OCR {
			return c.runEmbedded(ctx, logger, path, opts, true)
		}
		return c.withFallback(ctx, logger, path, opts, true)
	case ModeOCR:
		return c.withFallback(ctx, logger, path, opts, false)
	case ModeEmbedded:
		return c.runEmbedded(ctx, logger, path, opts, true)
	default:
		return c.fail(logger, common.InvalidInput(fmt.Sprintf("unknown conversion mode %q", mode), nil), "conversion", 0)
	}
}

// withFallback applies the embedded fallback after the whole OCR pipeline ran.
func (c *Converter) withFallback(ctx context.Context, logger *slog.Logger, path string, opts Options, extras bool) *ConversionResult {
	res := c.runOCR(ctx, logger, path, opts)
	if !NeedsFallback(res, opts.FallbackThreshold) {
		return res
	}
	logger.Info("ocr result insufficient, trying embedded text",
		"success", res.Success, "chars", runeLen(res.Markdown))
	return PreferLonger(res, c.runEmbedded(ctx, logger, path, opts, extras))
}

// fail records err with a stack trace in a failed result.
func (c *Converter) fail(logger *slog.Logger, err error, stage string, pages int) *ConversionResult {
	wrapped := eris.Wrap(err, stage+" failed")
	code := FailureCode(err)
	logger.Error(stage+" failed", "error", err, "code", code.String())
	res := Failed(eris.ToString(wrapped, true), pages)
	res.Code = code.String()
	return res
}

// FailureCode classifies a document-level failure. Errors that carry no
// status are conversion failures.
func FailureCode(err error) codes.Code {
	if c := status.Code(err); c != codes.Unknown && c != codes.OK {
		return c
	}
	return codes.Internal
}

func pageLimit(total, maxPages int) int {
	if maxPages > 0 && maxPages < total {
		return maxPages
	}
	return total
}
