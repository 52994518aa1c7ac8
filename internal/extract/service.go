package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/docconv/internal/common"
	"github.com/joseph-ayodele/docconv/internal/convert"
)

// Service converts a document with default options, then extracts fields.
type Service struct {
	conv   convert.Service
	fields FieldExtractor
	logger *slog.Logger
}

func NewService(conv convert.Service, fields FieldExtractor, logger *slog.Logger) *Service {
	if fields == nil {
		fields = NewRuleExtractor()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{conv: conv, fields: fields, logger: logger}
}

// Extract returns the field result and the conversion it was read from.
func (s *Service) Extract(ctx context.Context, path string, topics []string) (*Result, *convert.ConversionResult) {
	logger := common.LoggerFromContext(ctx, s.logger)

	conv := s.conv.Convert(ctx, convert.ModeConvert, path, convert.DefaultOptions())
	if !conv.Success {
		return &Result{Fields: map[string]string{}, Error: conv.Error}, conv
	}
	fields, err := s.fields.ExtractFields(ctx, conv.Markdown, topics)
	if err != nil {
		logger.Error("field extraction failed", "path", path, "error", err)
		return &Result{Fields: map[string]string{}, Error: err.Error()}, conv
	}
	logger.Info("fields extracted", "path", path, "topics", len(topics), "fields", len(fields))
	return &Result{Fields: fields, Success: true}, conv
}
