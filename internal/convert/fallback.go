package convert

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/docconv/constants"
)

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// Supplement prepends the embedded sample when OCR found little text and the
// sample has more. Lengths are of the trimmed strings.
func Supplement(ocrMarkdown, sample string, threshold int) string {
	if runeLen(strings.TrimSpace(ocrMarkdown)) < threshold && runeLen(strings.TrimSpace(sample)) > threshold {
		return sample + "\n\n" + ocrMarkdown
	}
	return ocrMarkdown
}

// NeedsFallback reports whether a full embedded extraction should be tried.
func NeedsFallback(r *ConversionResult, threshold int) bool {
	return r == nil || !r.Success || runeLen(r.Markdown) < threshold
}

// PreferLonger returns embedded, marked as a fallback, when its markdown is
// strictly longer than current's. Otherwise current is returned unchanged.
func PreferLonger(current, embedded *ConversionResult) *ConversionResult {
	if embedded == nil {
		return current
	}
	cur := 0
	if current != nil {
		cur = runeLen(current.Markdown)
	}
	if runeLen(embedded.Markdown) <= cur {
		return current
	}
	embedded.Fallback = constants.FallbackEmbedded
	return embedded
}
