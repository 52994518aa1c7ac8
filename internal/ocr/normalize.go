package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reSpaceRun = regexp.MustCompile(`[ \t]{2,}|\t`)
	reRuler    = regexp.MustCompile(`^\s*[_\-=]{3,}\s*$`)
)

// Normalize prepares converted document text for field matching.
// Text is NFKC-folded so full-width digits and punctuation match ASCII rules,
// ruler lines are dropped, space and tab runs become one space, and blank runs
// shrink to a single blank line. Characters are never rewritten (no 0/O
// swaps): documents carry codes and part numbers that must survive verbatim.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(s)
	s = norm.NFKC.String(s)

	out := make([]string, 0, strings.Count(s, "\n")+1)
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = reSpaceRun.ReplaceAllString(strings.TrimRight(line, " \t"), " ")
		if line == "" || line == " " || reRuler.MatchString(line) {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
