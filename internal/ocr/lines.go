package ocr

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

const (
	// DefaultMinConfidence drops detections the engine is unsure about.
	DefaultMinConfidence = 0.3
	// DefaultLineTolerance is the max y distance, in pixels, from a line's first
	// detection for another detection to join that line.
	DefaultLineTolerance = 15.0
)

// LineOptions controls ReconstructLines.
type LineOptions struct {
	MinConfidence float64
	Tolerance     float64 // <= 0 means DefaultLineTolerance
}

// DefaultLineOptions returns the stock thresholds.
func DefaultLineOptions() LineOptions {
	return LineOptions{MinConfidence: DefaultMinConfidence, Tolerance: DefaultLineTolerance}
}

// ReconstructLines groups one page's detections into text lines, top to bottom.
//
// Detections are stable-sorted by Top and grouped while they stay within
// Tolerance of the line's first detection. Within a line, words keep the order
// the engine produced them in; x is never consulted, so multi-column layouts can
// interleave words.
func ReconstructLines(dets []Detection, opts LineOptions) []string {
	tol := opts.Tolerance
	if tol <= 0 {
		tol = DefaultLineTolerance
	}

	kept := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.Confidence < opts.MinConfidence {
			continue
		}
		text := strings.TrimSpace(d.Text)
		if text == "" {
			continue
		}
		d.Text = text
		kept = append(kept, d)
	}

	slices.SortStableFunc(kept, func(a, b Detection) int {
		return cmp.Compare(a.Top(), b.Top())
	})

	var (
		lines   []string
		current []string
		anchor  float64
		started bool
	)
	for _, d := range kept {
		y := d.Top()
		switch {
		case !started:
			anchor, started = y, true
		case math.Abs(y-anchor) > tol:
			if len(current) > 0 {
				lines = append(lines, strings.Join(current, " "))
			}
			current = nil
			anchor = y
		}
		current = append(current, d.Text)
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}
