package convert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/docconv/constants"
	"github.com/joseph-ayodele/docconv/internal/common"
	"github.com/joseph-ayodele/docconv/internal/document"
)

// runEmbedded concatenates the text layer of every page with text. With extras,
// tables and images are attached as the options ask.
func (c *Converter) runEmbedded(ctx context.Context, logger *slog.Logger, path string, opts Options, extras bool) *ConversionResult {
	const stage = "embedded extraction"
	backend, caps := c.registry.Resolve(path)
	if !caps.Available {
		return c.fail(logger, common.Unavailable("document backend "+backend.Name()+" unavailable", reasonErr(caps.Reason)), stage, 0)
	}
	if !caps.Text {
		return c.fail(logger, common.Unavailable("document backend "+backend.Name()+" has no text layer", common.ErrUnsupported), stage, 0)
	}

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
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return c.fail(logger, common.ConversionFailed("conversion interrupted", err), stage, total)
		}
		outcome := PageOutcome{Page: i + 1}
		text, err := doc.PageText(ctx, i)
		if err != nil {
			logger.Warn("failed to read page text", "page", i+1, "error", err)
			report.Record(outcome, &common.PageError{Page: i + 1, Err: err})
			continue
		}
		if strings.TrimSpace(text) != "" {
			outcome.Text = text
		}
		report.Record(outcome, nil)
	}

	res := Succeeded(report.EmbeddedMarkdown(), total, constants.EmbeddedMethod(backend.Name()))
	res.PageTexts = report.Pages
	warnings := report.Warnings()

	if extras && opts.WithTables {
		res.Tables = ExtractTables(res.Markdown)
	}
	if extras && opts.WithImages && caps.Images {
		imgs, imgWarnings := listImages(ctx, doc, n)
		res.Images = imgs
		warnings = append(warnings, imgWarnings...)
	}
	res.Warnings = warnings
	return res
}

func listImages(ctx context.Context, doc document.Document, pages int) ([]document.ImageInfo, []string) {
	imgs := []document.ImageInfo{}
	var warnings []string
	for i := 0; i < pages; i++ {
		found, err := doc.PageImages(ctx, i)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: list images: %v", i+1, err))
			continue
		}
		imgs = append(imgs, found...)
	}
	return imgs, warnings
}
