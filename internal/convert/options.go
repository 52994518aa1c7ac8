package convert

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/docconv/internal/common"
	"github.com/joseph-ayodele/docconv/internal/ocr"
)

// Thresholds used by the supplement and fallback rules.
const (
	DefaultSupplementThreshold    = 200
	DefaultFallbackThreshold      = 100
	DefaultEmbeddedSamplePages    = 3
	DefaultEmbeddedSampleMinChars = 50
)

// Options is the JSON option bag; unset keys keep their defaults.
type Options struct {
	OCR                    bool    `json:"ocr"`
	WithTables             bool    `json:"withTables"`
	WithImages             bool    `json:"withImages"`
	MinConfidence          float64 `json:"minConfidence"`
	LineTolerance          float64 `json:"lineTolerance"`
	SupplementThreshold    int     `json:"supplementThreshold"`
	FallbackThreshold      int     `json:"fallbackThreshold"`
	EmbeddedSamplePages    int     `json:"embeddedSamplePages"`
	EmbeddedSampleMinChars int     `json:"embeddedSampleMinChars"`
	MaxPages               int     `json:"maxPages"` // 0 = every page
}

func DefaultOptions() Options {
	return Options{
		OCR:                    true,
		WithTables:             true,
		WithImages:             true,
		MinConfidence:          ocr.DefaultMinConfidence,
		LineTolerance:          ocr.DefaultLineTolerance,
		SupplementThreshold:    DefaultSupplementThreshold,
		FallbackThreshold:      DefaultFallbackThreshold,
		EmbeddedSamplePages:    DefaultEmbeddedSamplePages,
		EmbeddedSampleMinChars: DefaultEmbeddedSampleMinChars,
	}
}

// ParseOptions validates raw against the options schema and decodes it over the defaults.
// An empty string yields the defaults.
func ParseOptions(raw string) (Options, error) {
	opts := DefaultOptions()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return opts, nil
	}
	if err := common.ValidateJSONAgainstSchema(common.ConvertOptionsSchema(), []byte(raw)); err != nil {
		return opts, common.InvalidInput("invalid options", err)
	}
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return opts, common.InvalidInput("invalid options", err)
	}
	return opts, nil
}

func (o Options) lineOptions() ocr.LineOptions {
	return ocr.LineOptions{MinConfidence: o.MinConfidence, Tolerance: o.LineTolerance}
}
