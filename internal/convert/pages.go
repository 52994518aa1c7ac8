package convert

import (
	"errors"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/docconv/internal/common"
)

// PageOutcome is what processing one page produced. Empty Text means nothing
// qualified and the page gets no header.
type PageOutcome struct {
	Page int
	Text string
}

// PageReport aggregates page outcomes. A failed page is kept as a warning and
// processing continues.
type PageReport struct {
	Pages  []PageResult
	Failed []*common.PageError
}

// Record adds one page's outcome or failure.
func (r *PageReport) Record(outcome PageOutcome, err error) {
	if err != nil {
		var pe *common.PageError
		if !errors.As(err, &pe) {
			pe = &common.PageError{Page: outcome.Page, Err: err}
		}
		r.Failed = append(r.Failed, pe)
		return
	}
	if outcome.Text == "" {
		return
	}
	r.Pages = append(r.Pages, PageResult{Page: outcome.Page, Text: outcome.Text})
}

// Warnings renders failures for the result's warnings list.
func (r *PageReport) Warnings() []string {
	if len(r.Failed) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Failed))
	for _, pe := range r.Failed {
		out = append(out, pe.Error())
	}
	return out
}

// OCRMarkdown lays pages out as "\n## Page N\n\n", the lines, then a blank
// separator, all joined by newlines.
func (r *PageReport) OCRMarkdown() string {
	parts := make([]string, 0, 3*len(r.Pages))
	for _, p := range r.Pages {
		parts = append(parts, "\n## Page "+strconv.Itoa(p.Page)+"\n\n", p.Text, "\n\n")
	}
	return strings.Join(parts, "\n")
}

// EmbeddedMarkdown lays pages out as "## Page N\n\n<text>\n\n" joined by newlines.
func (r *PageReport) EmbeddedMarkdown() string {
	parts := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		parts = append(parts, "## Page "+strconv.Itoa(p.Page)+"\n\n"+p.Text+"\n\n")
	}
	return strings.Join(parts, "\n")
}
