// Package convert turns documents into markdown through the OCR pipeline, the
// embedded text layer, or both, and picks between them.
package convert

import (
	"github.com/joseph-ayodele/docconv/internal/document"
)

// Table is one markdown table found in a result.
type Table struct {
	Markdown string `json:"markdown"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
}

// PageResult is the text produced for one page.
type PageResult struct {
	Page int    `json:"page"` // 1-based
	Text string `json:"text"`
}

// ConversionResult is the JSON document printed for convert, ocr and embedded.
type ConversionResult struct {
	Markdown string               `json:"markdown"`
	Tables   []Table              `json:"tables"`
	Pages    int                  `json:"pages"`
	Images   []document.ImageInfo `json:"images"`
	Success  bool                 `json:"success"`
	Error    string               `json:"error,omitempty"`
	Code     string               `json:"code,omitempty"` // gRPC code name of a failure, e.g. "Unavailable"
	Method   string               `json:"method,omitempty"`
	Fallback string               `json:"fallback,omitempty"`
	Warnings []string             `json:"warnings,omitempty"`

	// PageTexts feeds export; it is not part of the printed result.
	PageTexts []PageResult `json:"-"`
}

// Succeeded builds a successful result. Tables and images start empty, not null.
func Succeeded(markdown string, pages int, method string) *ConversionResult {
	return &ConversionResult{
		Markdown: markdown,
		Tables:   []Table{},
		Pages:    pages,
		Images:   []document.ImageInfo{},
		Success:  true,
		Method:   method,
	}
}

// Failed is the only way a failed result is built, so markdown is always empty.
func Failed(message string, pages int) *ConversionResult {
	if message == "" {
		message = "conversion failed"
	}
	return &ConversionResult{
		Markdown: "",
		Tables:   []Table{},
		Pages:    pages,
		Images:   []document.ImageInfo{},
		Success:  false,
		Error:    message,
	}
}
