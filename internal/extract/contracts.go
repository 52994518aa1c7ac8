// Package extract pulls labelled fields out of converted markdown.
package extract

import (
	"context"
)

// FieldExtractor turns markdown into named field values for the requested topics.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, markdown string, topics []string) (map[string]string, error)
}

// Result is the JSON document printed for extract.
type Result struct {
	Fields  map[string]string `json:"fields"`
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
}
