package task

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitization runs on every create and update, before a task reaches the
// document — the persisted and in-memory forest is always already safe.
// Title, category, and tags are stripped to plain text; descriptions keep
// a small allowlist of formatting markup.

var (
	textPolicy   = newTextPolicy()
	markupPolicy = newMarkupPolicy()
)

func newTextPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.SkipElementsContent("script", "style")
	return p
}

func newMarkupPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "em", "strong", "p", "br", "ul", "ol", "li")
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.SkipElementsContent("script", "style")
	return p
}

// SanitizeText strips all markup from a plain-text field.
func SanitizeText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

// SanitizeMarkup strips a rich-text field down to the allowlist.
func SanitizeMarkup(s string) string {
	return strings.TrimSpace(markupPolicy.Sanitize(s))
}

// Sanitize returns a cleaned copy of t: fields stripped per policy, length
// caps enforced, tags and subtasks non-nil, and every subtask sanitized
// recursively.
func Sanitize(t Task) Task {
	t.Title = truncate(SanitizeText(t.Title), MaxTitleLength)
	t.Description = truncate(SanitizeMarkup(t.Description), MaxDescriptionLength)
	t.Category = SanitizeText(t.Category)
	if !t.Priority.Valid() {
		t.Priority = PriorityMedium
	}

	tags := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		if clean := SanitizeText(tag); clean != "" {
			tags = append(tags, clean)
		}
	}
	t.Tags = tags

	subs := make([]Task, 0, len(t.Subtasks))
	for _, st := range t.Subtasks {
		subs = append(subs, Sanitize(st))
	}
	t.Subtasks = subs
	return t
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
