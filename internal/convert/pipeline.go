package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/docconv/internal/common"
	"github.com/joseph-ayodele/docconv/internal/document"
	"github.com/joseph-ayodele/docconv/internal/ocr"
)

// runOCR rasterizes and recognizes every page, then supplements thin output with
// an embedded sample.
func (c *Converter) runOCR(ctx context.Context, logger *slog.Logger, path string, opts Options) *ConversionResult {
	const stage = "ocr conversion"
	if !c.ocrCaps.Available {
		return c.fail(logger, common.Unavailable("OCR engine "+c.provider.Name()+" unavailable", reasonErr(c.ocrCaps.Reason)), stage, 0)
	}
	backend, caps := c.registry.Resolve(path)
	if !caps.Available {
		return c.fail(logger, common.Unavailable("document backend "+backend.Name()+" unavailable", reasonErr(caps.Reason)), stage, 0)
	}
	if !caps.Render {
		return c.fail(logger, common.Unavailable("document backend "+backend.Name()+" cannot rasterize pages", common.ErrUnsupported), stage, 0)
	}

	engine, err := c.provider.Open(ctx)
	if err != nil {
		return c.fail(logger, fmt.Errorf("open ocr engine: %w", err), stage, 0)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn("failed to close ocr engine", "error", err)
		}
	}()

	doc, err := backend.Open(ctx, path)
	if err != nil {
		return c.fail(logger, err, stage, 0)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			logger.Warn("failed to close document", "error", err)
		}
	}()

	total := doc.PageCount()
	n := pageLimit(total, opts.MaxPages)
	report := &PageReport{}
	lineOpts := opts.lineOptions()
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return c.fail(logger, common.ConversionFailed("conversion interrupted", err), stage, total)
		}
		outcome, err := c.processPage(ctx, engine, doc, i, lineOpts)
		if err != nil {
			logger.Warn("failed to process page", "page", i+1, "error", err)
		}
		report.Record(outcome, err)
	}

	markdown := report.OCRMarkdown()
	if caps.Text {
		markdown = Supplement(markdown, c.embeddedSample(ctx, logger, doc, total, opts), opts.SupplementThreshold)
	}

	res := Succeeded(markdown, total, engine.Name())
	res.Warnings = report.Warnings()
	res.PageTexts = report.Pages
	return res
}

func (c *Converter) processPage(ctx context.Context, engine ocr.Engine, doc document.Document, index int, lineOpts ocr.LineOptions) (PageOutcome, error) {
	outcome := PageOutcome{Page: index + 1}
	png, err := doc.RenderPage(ctx, index)
	if err != nil {
		return outcome, &common.PageError{Page: outcome.Page, Err: fmt.Errorf("render: %w", err)}
	}
	dets, err := engine.Recognize(ctx, png)
	if err != nil {
		return outcome, &common.PageError{Page: outcome.Page, Err: fmt.Errorf("recognize: %w", err)}
	}
	outcome.Text = strings.Join(ocr.ReconstructLines(dets, lineOpts), "\n")
	return outcome, nil
}

// embeddedSample reads the text layer of the first few pages. Errors only drop pages.
func (c *Converter) embeddedSample(ctx context.Context, logger *slog.Logger, doc document.Document, pages int, opts Options) string {
	var b strings.Builder
	for i := 0; i < min(pages, opts.EmbeddedSamplePages); i++ {
		text, err := doc.PageText(ctx, i)
		if err != nil {
			logger.Debug("embedded sample page skipped", "page", i+1, "error", err)
			continue
		}
		if runeLen(strings.TrimSpace(text)) <= opts.EmbeddedSampleMinChars {
			continue
		}
		fmt.Fprintf(&b, "\n\n## Page %d (Embedded):\n%s\n", i+1, text)
	}
	return b.String()
}

func reasonErr(reason string) error {
	if reason == "" {
		return nil
	}
	return errors.New(reason)
}
