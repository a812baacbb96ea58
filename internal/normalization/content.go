package normalization

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Block-level tags we accept as-is when deciding whether generated prose
// needs a paragraph wrapper. Anything else gets wrapped in <p>.
var blockTags = []string{
	"p", "h1", "h2", "h3", "h4", "h5", "h6",
	"ul", "ol", "li", "pre", "blockquote", "div",
	"table", "section", "article", "figure", "hr",
}

// StripCodeFence removes a single leading/trailing triple-backtick fence,
// with or without a language tag. Text without a fence passes through
// unchanged, so running it over its own output is a no-op.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence line, if any.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "" || isLanguageTag(firstLine) {
			s = s[idx+1:]
		}
	} else {
		// Single-line input like "```html" with nothing after it.
		if isLanguageTag(strings.TrimSpace(s)) {
			return ""
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isLanguageTag(s string) bool {
	if s == "" || len(s) > 16 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '-' && r != '+' && r != '#' {
			return false
		}
	}
	return true
}

// EnsureBlockHTML wraps bare prose in a paragraph tag so the rich-text
// editor gets a block element. It only checks the opening tag; malformed
// HTML passes through uncorrected.
func EnsureBlockHTML(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return trimmed
	}
	lower := strings.ToLower(trimmed)
	for _, tag := range blockTags {
		if !strings.HasPrefix(lower, "<"+tag) {
			continue
		}
		// The tag name must end here; "<p" alone would also accept
		// <param> or <picture>.
		rest := lower[len(tag)+1:]
		if rest == "" || rest[0] == '>' || rest[0] == ' ' || rest[0] == '/' ||
			rest[0] == '\t' || rest[0] == '\n' {
			return trimmed
		}
	}
	return "<p>" + trimmed + "</p>"
}

// NormalizeGeneratedHTML is the full free-text pipeline: fence strip, then
// block wrap.
func NormalizeGeneratedHTML(raw string) string {
	return EnsureBlockHTML(StripCodeFence(raw))
}

// AnswerStep is one element of the bulk-answer payload the model returns
// for "generate all answers": one code answer per instruction, addressed
// by 1-based step.
type AnswerStep struct {
	Step int    `json:"step"`
	Code string `json:"code"`
}

// ParseAnswerSteps parses the model's bulk-answer output. The model is
// expected to return a JSON array of {step, code} objects, possibly inside
// a markdown fence. Malformed JSON is a hard error; there is no per-item
// salvage.
func ParseAnswerSteps(raw string) ([]AnswerStep, error) {
	cleaned := StripCodeFence(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty answer payload")
	}
	var steps []AnswerStep
	if err := json.Unmarshal([]byte(cleaned), &steps); err != nil {
		return nil, fmt.Errorf("malformed answer JSON: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("answer payload contained no steps")
	}
	return steps, nil
}
