package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/docconv/internal/cache"
	"github.com/joseph-ayodele/docconv/internal/command"
	"github.com/joseph-ayodele/docconv/internal/common"
	"github.com/joseph-ayodele/docconv/internal/convert"
	"github.com/joseph-ayodele/docconv/internal/document"
	"github.com/joseph-ayodele/docconv/internal/export"
	"github.com/joseph-ayodele/docconv/internal/extract"
	"github.com/joseph-ayodele/docconv/internal/ocr"
	"github.com/joseph-ayodele/docconv/internal/source"
)

// app holds everything probed and opened once per process.
type app struct {
	cfg      *common.Config
	logger   *slog.Logger
	stdout   io.Writer
	provider ocr.Provider
	ocrCaps  ocr.Capabilities
	registry *document.Registry
	conv     convert.Service
	extract  *extract.Service
	export   *export.Service
	resolver *source.Resolver
	closers  []func()

	helpErr error // set when -h/--help was handled
}

func newLogger(cfg common.LogConfig, runID string, stderr io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(stderr, opts)
	} else {
		h = slog.NewJSONHandler(stderr, opts)
	}
	return slog.New(h).With("run_id", runID)
}

func newApp(ctx context.Context, cfg *common.Config, logger *slog.Logger, stdout io.Writer) (*app, error) {
	runner := command.NewExecRunner(logger)

	provider, err := ocr.NewProvider(cfg.OCR, runner, logger)
	if err != nil {
		return nil, err
	}
	primary, err := document.NewBackend(cfg.Document, cfg.OCR.DPI, runner, logger)
	if err != nil {
		return nil, err
	}
	registry := document.NewRegistry(primary,
		document.NewImageBackend(),
		document.NewMuPDFBackend(cfg.OCR.DPI),
	)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		stdout:   stdout,
		provider: provider,
		ocrCaps:  provider.Probe(ctx),
		registry: registry,
	}
	for name, caps := range registry.Negotiate(ctx) {
		logger.Debug("document backend probed", "backend", name, "available", caps.Available,
			"render", caps.Render, "text", caps.Text, "images", caps.Images, "reason", caps.Reason)
	}
	logger.Debug("ocr engine probed", "engine", a.ocrCaps.Engine, "available", a.ocrCaps.Available,
		"version", a.ocrCaps.Version, "reason", a.ocrCaps.Reason)

	var svc convert.Service = convert.NewConverter(provider, a.ocrCaps, registry, cfg.Document.MaxPages, logger)
	if cfg.Cache.DSN != "" {
		store, err := cache.Open(ctx, cfg.Cache, logger)
		if err != nil {
			logger.Warn("result cache disabled", "error", err)
		} else {
			a.closers = append(a.closers, store.Close)
			svc = convert.NewCachedService(svc, store, logger)
		}
	}
	a.conv = svc
	a.extract = extract.NewService(svc, extract.NewRuleExtractor(), logger)
	a.export = export.NewService(a.extract, logger)
	a.resolver = source.NewResolver(cfg.S3, logger)
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// opContext applies the configured per-operation timeout.
func (a *app) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (a *app) print(v any) error {
	return writeJSON(a.stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// errorMessage renders usage errors without the code prefix and sentinel noise.
func errorMessage(err error) string {
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != common.CodeInvalidInput {
		return err.Error()
	}
	parts := []string{appErr.Message}
	for _, cause := range unjoin(appErr.Cause) {
		if cause != nil && !errors.Is(cause, common.ErrInvalidInput) {
			parts = append(parts, errorMessage(cause))
		}
	}
	return strings.Join(parts, ": ")
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// errorReport is printed for usage errors and unknown operations.
type errorReport struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Success bool   `json:"success"`
}

// failure reports err with its gRPC code. Errors raised by cobra itself carry
// no status and are argument errors.
func failure(err error) errorReport {
	code := status.Code(err)
	if code == codes.Unknown {
		code = codes.InvalidArgument
	}
	return errorReport{Error: errorMessage(err), Code: code.String()}
}
