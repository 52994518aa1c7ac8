package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docconv/internal/common"
	"github.com/joseph-ayodele/docconv/internal/convert"
	"github.com/joseph-ayodele/docconv/internal/extract"
)

// maxCellChars is Excel's per-cell text limit.
const maxCellChars = 32767

// Result is the JSON document printed for export.
type Result struct {
	Path    string `json:"path"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Service writes a conversion and its extracted fields to an XLSX workbook.
type Service struct {
	extract *extract.Service
	logger  *slog.Logger
}

func NewService(ex *extract.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{extract: ex, logger: logger}
}

// Export converts path, extracts topics and writes the workbook to out.
func (s *Service) Export(ctx context.Context, path, out string, topics []string) *Result {
	logger := common.LoggerFromContext(ctx, s.logger)
	start := time.Now()

	fields, conv := s.extract.Extract(ctx, path, topics)
	if !conv.Success {
		return &Result{Path: out, Error: conv.Error}
	}
	buf, err := Workbook(conv, fields.Fields, common.RequestIDFromContext(ctx))
	if err != nil {
		logger.Error("export failed", "path", path, "error", err)
		return &Result{Path: out, Error: err.Error()}
	}
	if err := os.WriteFile(out, buf, 0o644); err != nil {
		logger.Error("export failed", "path", path, "out", out, "error", err)
		return &Result{Path: out, Error: fmt.Sprintf("write %s: %v", out, err)}
	}

	logger.Info("export.xlsx.ok",
		"path", path,
		"out", out,
		"pages", len(conv.PageTexts),
		"fields", len(fields.Fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Result{Path: out, Success: true}
}

// Workbook renders Pages, Fields and Summary sheets as XLSX bytes.
// runID, when set, is stored as the document identifier.
func Workbook(conv *convert.ConversionResult, fields map[string]string, runID string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:    "docconv",
		Identifier: runID,
		Subject:    conv.Method,
	}); err != nil {
		return nil, fmt.Errorf("xlsx properties: %w", err)
	}

	const pages = "Pages"
	if err := f.SetSheetName("Sheet1", pages); err != nil {
		return nil, err
	}
	writeRows(f, pages, []string{"Page", "Text"}, func(add func(...any)) {
		for _, p := range conv.PageTexts {
			add(p.Page, truncate(p.Text, maxCellChars))
		}
	})
	_ = f.SetColWidth(pages, "A", "A", 8)
	_ = f.SetColWidth(pages, "B", "B", 100)

	const fieldSheet = "Fields"
	if _, err := f.NewSheet(fieldSheet); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	writeRows(f, fieldSheet, []string{"Field", "Value"}, func(add func(...any)) {
		for _, k := range names {
			add(k, fields[k])
		}
	})
	_ = f.SetColWidth(fieldSheet, "A", "A", 22)
	_ = f.SetColWidth(fieldSheet, "B", "B", 60)

	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, err
	}
	writeRows(f, summary, []string{"Key", "Value"}, func(add func(...any)) {
		add("method", conv.Method)
		add("fallback", conv.Fallback)
		add("pages", conv.Pages)
		add("tables", len(conv.Tables))
		add("images", len(conv.Images))
		add("warnings", truncate(strings.Join(conv.Warnings, "\n"), maxCellChars))
	})
	_ = f.SetColWidth(summary, "A", "A", 14)
	_ = f.SetColWidth(summary, "B", "B", 60)

	if index, _ := f.GetSheetIndex(pages); index >= 0 {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, headers []string, rows func(add func(...any))) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	row := 2
	rows(func(values ...any) {
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
