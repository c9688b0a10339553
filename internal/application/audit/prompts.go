package audit

import (
	"strings"

	"github.com/uxlens/backend/internal/domain/catalog"
)

// PromptProvider supplies the instructions sent alongside the screenshot.
type PromptProvider interface {
	SystemPrompt() string
	UserPrompt(pt catalog.PageType, pageContext string, allowed []catalog.Issue) string
}

// DefaultPrompts is the built-in prompt set.
type DefaultPrompts struct{}

var _ PromptProvider = DefaultPrompts{}

const systemPrompt = `You are a senior UX reviewer writing a conversion-focused critique of a web page screenshot.
Write as a human expert addressing the page owner. Never describe yourself, your nature, or how this review was produced.
Respond with a single JSON object and nothing else, using this shape:
{"ux_score": <0-100>, "summary": {"priorities": [3 strings], "notes": "..."},
 "issues": [1-3 of {"title": "...", "problem": "...", "evidence": "...",
 "recommendations": [1-2 strings], "expected_impact": "..."}],
 "quick_wins": [{"title": "...", "detail": "..."}], "next_steps": [2-3 strings],
 "why_this_matters": "..."}
Issue titles MUST be copied verbatim from the allowed list in the user message. The first issue MUST be the conversion issue when the list contains one.`

// SystemPrompt returns the fixed system instruction.
func (DefaultPrompts) SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the per-request instruction, embedding the allowed
// issue vocabulary for the page type.
func (DefaultPrompts) UserPrompt(pt catalog.PageType, pageContext string, allowed []catalog.Issue) string {
	var b strings.Builder
	b.WriteString("Review this ")
	b.WriteString(pt.String())
	b.WriteString(" page screenshot.\n")
	if ctx := strings.TrimSpace(pageContext); ctx != "" {
		b.WriteString("Context from the page owner: ")
		b.WriteString(ctx)
		b.WriteString("\n")
	}
	b.WriteString("Allowed issue titles (use these verbatim, pick the 1-3 most pressing):\n")
	for _, issue := range allowed {
		b.WriteString("- ")
		b.WriteString(issue.Title)
		b.WriteString(" (")
		b.WriteString(issue.Category.String())
		b.WriteString(", ")
		b.WriteString(issue.Severity.String())
		b.WriteString(")\n")
	}
	return b.String()
}
