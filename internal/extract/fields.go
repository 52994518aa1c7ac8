package extract

import (
	"context"
	"encoding/json"
	"regexp"
	"slices"
	"strings"

	"github.com/joseph-ayodele/docconv/internal/common"
	"github.com/joseph-ayodele/docconv/internal/ocr"
)

// Rule extracts one field when any of its topics is requested.
type Rule struct {
	Field   string
	Topics  []string
	Pattern *regexp.Regexp
	Clean   func(string) string
}

// ContractRules cover the contract header fields.
var ContractRules = []Rule{
	{
		Field:   "contractNumber",
		Topics:  []string{"contract_number", "basic_info"},
		Pattern: regexp.MustCompile(`合同编号[：:]\s*([A-Z0-9\-]+)`),
	},
	{
		Field:   "title",
		Topics:  []string{"title", "basic_info"},
		Pattern: regexp.MustCompile(`合同名称[：:]\s*(.+)`),
		Clean:   strings.TrimSpace,
	},
	{
		Field:   "contractAmount",
		Topics:  []string{"amount", "financial"},
		Pattern: regexp.MustCompile(`合同金额[：:]\s*([0-9,.，]+)`),
		Clean:   func(s string) string { return strings.NewReplacer(",", "", "，", "").Replace(s) },
	},
}

// RuleExtractor applies regex rules to NFKC-normalized markdown.
type RuleExtractor struct {
	Rules []Rule
}

func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{Rules: ContractRules}
}

// ExtractFields evaluates only the rules whose topics were requested.
// Unmatched fields are left out.
func (e *RuleExtractor) ExtractFields(_ context.Context, markdown string, topics []string) (map[string]string, error) {
	fields := map[string]string{}
	if len(topics) == 0 {
		return fields, nil
	}
	text := ocr.Normalize(markdown)
	for _, r := range e.Rules {
		if !slices.ContainsFunc(r.Topics, func(t string) bool { return slices.Contains(topics, t) }) {
			continue
		}
		m := r.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := m[1]
		if r.Clean != nil {
			v = r.Clean(v)
		}
		fields[r.Field] = v
	}
	return fields, nil
}

// ParseTopics validates and decodes the topics JSON array. Empty input means no topics.
func ParseTopics(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if err := common.ValidateJSONAgainstSchema(common.TopicsSchema(), []byte(raw)); err != nil {
		return nil, common.InvalidInput("invalid topics", err)
	}
	var topics []string
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return nil, common.InvalidInput("invalid topics", err)
	}
	return topics, nil
}
