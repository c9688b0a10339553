// Package audit orchestrates the capture, analysis, validation and
// fallback stages that turn a URL or screenshot into a canonical report.
package audit

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/catalog"
)

// Validation rule identifiers. Logged with every failure so prompt tuning
// can see which rule the model keeps tripping over.
const (
	RuleParse              = "parse"
	RuleAIDisclosure       = "ai_disclosure"
	RuleScoreRange         = "score_range"
	RuleIssueCount         = "issue_count"
	RuleTitleResolution    = "title_resolution"
	RuleFirstIssuePriority = "first_issue_priority"
	RuleFixOrder           = "fix_order"
	RuleCanonicalShape     = "canonical_shape"
)

// ValidationFailure describes why a model response was rejected
type ValidationFailure struct {
	Rule   string
	Detail string
}

// Error implements the error interface
func (f *ValidationFailure) Error() string {
	return fmt.Sprintf("validation failed on rule %s: %s", f.Rule, f.Detail)
}

func failRule(rule, format string, args ...interface{}) *ValidationFailure {
	return &ValidationFailure{Rule: rule, Detail: fmt.Sprintf(format, args...)}
}

// Validator turns untrusted model output into a canonical report or a
// classified rejection. It accepts strict JSON first and falls back to the
// labeled text-block protocol, since the output format is not guaranteed.
type Validator struct{}

// NewValidator creates a new Validator
func NewValidator() *Validator {
	return &Validator{}
}

// rawReport is the permissive intermediate shape both parsers produce.
// Pointer fields distinguish "absent" from "zero".
type rawReport struct {
	UXScore        *int                  `json:"ux_score"`
	ScoreBreakdown *audit.ScoreBreakdown `json:"score_breakdown"`
	Summary        *rawSummary           `json:"summary"`
	Issues         []rawIssue            `json:"issues"`
	QuickWins      []audit.QuickWin      `json:"quick_wins"`
	NextSteps      []string              `json:"next_steps"`
	WhyThisMatters string                `json:"why_this_matters"`
	FixOrder       []string              `json:"fix_order"`
	FullReport     *rawFullReport        `json:"full_report"`
}

type rawFullReport struct {
	FixOrder []string `json:"fix_order"`
}

type rawSummary struct {
	Priorities []string `json:"priorities"`
	Notes      string   `json:"notes"`
}

type rawIssue struct {
	Title           string   `json:"title"`
	Problem         string   `json:"problem"`
	Evidence        string   `json:"evidence"`
	Recommendations []string `json:"recommendations"`
	ExpectedImpact  string   `json:"expected_impact"`
	ImpactTag       string   `json:"impact_tag"`
}

var (
	aiWordPattern   = regexp.MustCompile(`(?i)\bai\b`)
	aiPhrasePattern = regexp.MustCompile(`(?i)artificial\s+intelligence`)
)

func containsDisclosure(s string) bool {
	return aiWordPattern.MatchString(s) || aiPhrasePattern.MatchString(s)
}

// scanStrings walks a decoded JSON value and reports the first string that
// carries a disclosure. Nested strings count the same as top-level ones.
func scanStrings(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		if containsDisclosure(val) {
			return val, true
		}
	case map[string]interface{}:
		for _, item := range val {
			if s, found := scanStrings(item); found {
				return s, true
			}
		}
	case []interface{}:
		for _, item := range val {
			if s, found := scanStrings(item); found {
				return s, true
			}
		}
	}
	return "", false
}

// stripFences removes a surrounding markdown code fence, which models
// routinely wrap JSON in despite instructions.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// Validate parses and checks raw model output against the canonical report
// contract for the given page type and tier. Rules run in a fixed order and
// short-circuit on the first failure.
func (v *Validator) Validate(raw string, pt catalog.PageType, tier audit.AccessTier) (*audit.Report, *ValidationFailure) {
	includePaid := tier.IncludesPaidIssues()
	text := stripFences(raw)

	var parsed *rawReport
	var decoded interface{}

	if strings.HasPrefix(text, "{") {
		var jsonReport rawReport
		if err := json.Unmarshal([]byte(text), &jsonReport); err == nil {
			parsed = &jsonReport
			// Keep the loosely decoded value for the disclosure walk
			_ = json.Unmarshal([]byte(text), &decoded)
		}
	}
	if parsed == nil {
		textReport, err := parseTextReport(text)
		if err != nil {
			return nil, failRule(RuleParse, "output is neither JSON nor the labeled text protocol: %v", err)
		}
		parsed = textReport
	}
	if len(parsed.FixOrder) == 0 && parsed.FullReport != nil {
		parsed.FixOrder = parsed.FullReport.FixOrder
	}

	// Rule 1: no self-referential disclosure in any string field.
	if decoded != nil {
		if s, found := scanStrings(decoded); found {
			return nil, failRule(RuleAIDisclosure, "string field contains a disclosure: %q", truncateDetail(s))
		}
	} else if containsDisclosure(text) {
		return nil, failRule(RuleAIDisclosure, "output text contains a disclosure")
	}

	// Rule 2: score, when present, must sit in [0,100].
	if parsed.UXScore != nil && (*parsed.UXScore < 0 || *parsed.UXScore > 100) {
		return nil, failRule(RuleScoreRange, "ux_score %d out of range [0,100]", *parsed.UXScore)
	}

	// Rule 3: issue count bounds.
	if len(parsed.Issues) < audit.MinIssues || len(parsed.Issues) > audit.MaxIssues {
		return nil, failRule(RuleIssueCount, "issue count %d out of range [%d,%d]",
			len(parsed.Issues), audit.MinIssues, audit.MaxIssues)
	}

	// Rule 4: every title must resolve against the page-type-filtered
	// catalog. A miss means the model left its allowed vocabulary.
	resolved := make([]catalog.Issue, len(parsed.Issues))
	for i, issue := range parsed.Issues {
		entry, ok := catalog.ResolveAllowed(issue.Title, pt, includePaid)
		if !ok {
			return nil, failRule(RuleTitleResolution,
				"issue title %q is not allowed for page type %s", issue.Title, pt)
		}
		resolved[i] = entry
	}

	// Rule 5: the first issue must follow the priority rule computed over
	// the allowed set, not the global catalog.
	if fail := checkPriority(resolved[0], pt, includePaid); fail != nil {
		return nil, fail
	}

	// Rule 6: a fix order, when present, must also resolve.
	for _, title := range parsed.FixOrder {
		if _, ok := catalog.ByTitle(title); !ok {
			return nil, failRule(RuleFixOrder, "fix order title %q does not resolve", title)
		}
	}

	report := buildCanonical(parsed, resolved, pt)
	if err := report.Validate(includePaid); err != nil {
		// buildCanonical is supposed to make this impossible; a failure here
		// is a normalization bug, reported like any other rejection.
		return nil, failRule(RuleCanonicalShape, "normalized report is invalid: %v", err)
	}
	return report, nil
}

func checkPriority(first catalog.Issue, pt catalog.PageType, includePaid bool) *ValidationFailure {
	allowed := catalog.Allowed(pt, includePaid)

	hasConversion := false
	maxRank := 0
	for _, issue := range allowed {
		if issue.Category == catalog.CategoryConversion {
			hasConversion = true
		}
		if issue.Severity.Rank() > maxRank {
			maxRank = issue.Severity.Rank()
		}
	}

	if hasConversion {
		if first.Category != catalog.CategoryConversion {
			return failRule(RuleFirstIssuePriority,
				"first issue %q is %s, expected a conversion issue", first.Title, first.Category)
		}
		return nil
	}
	if first.Severity.Rank() < maxRank {
		return failRule(RuleFirstIssuePriority,
			"first issue %q severity %s is below the allowed maximum", first.Title, first.Severity)
	}
	return nil
}

// buildCanonical normalizes a parsed response into the canonical shape.
// Catalog data backfills whatever the model left out; titles, severities
// and categories always come from the resolved catalog entries so the
// report never carries a paraphrased vocabulary.
func buildCanonical(parsed *rawReport, resolved []catalog.Issue, pt catalog.PageType) *audit.Report {
	issues := make([]audit.ReportIssue, len(resolved))
	for i, entry := range resolved {
		ri := parsed.Issues[i]

		problem := strings.TrimSpace(ri.Problem)
		if problem == "" {
			problem = entry.Description
		}
		evidence := strings.TrimSpace(ri.Evidence)
		if evidence == "" {
			evidence = "Observed on the submitted " + pt.String() + " page."
		}
		recommendations := trimList(ri.Recommendations, 2)
		if len(recommendations) == 0 {
			recommendations = trimList(entry.Fixes, 2)
		}
		impact := strings.TrimSpace(ri.ExpectedImpact)
		if impact == "" {
			impact = "Fixing this should make the page noticeably easier to act on."
		}
		tag := strings.TrimSpace(ri.ImpactTag)
		if tag == "" {
			tag = entry.Severity.String()
		}

		issues[i] = audit.ReportIssue{
			Title:           entry.Title,
			Severity:        entry.Severity,
			Category:        entry.Category,
			Problem:         problem,
			Evidence:        evidence,
			Recommendations: recommendations,
			ExpectedImpact:  impact,
			ImpactTag:       tag,
		}
	}

	score := audit.ScoreFromIssueCount(len(issues))
	if parsed.UXScore != nil {
		score = *parsed.UXScore
	}

	breakdown := audit.ScoreBreakdown{
		FirstImpression: score,
		Clarity:         score,
		Conversion:      score,
		Trust:           score,
		Usability:       score,
	}
	if parsed.ScoreBreakdown != nil && breakdownInRange(*parsed.ScoreBreakdown) {
		breakdown = *parsed.ScoreBreakdown
	}

	summary := audit.Summary{}
	if parsed.Summary != nil {
		summary.Priorities = parsed.Summary.Priorities
		summary.Notes = parsed.Summary.Notes
	}
	summary.Priorities = normalizePriorities(summary.Priorities, issues)

	quickWins := parsed.QuickWins
	if len(quickWins) == 0 {
		quickWins = []audit.QuickWin{{
			Title:  "Apply the first recommended fix",
			Detail: issues[0].Recommendations[0],
		}}
	}

	nextSteps := trimList(parsed.NextSteps, 3)
	if len(nextSteps) < 2 {
		nextSteps = []string{
			"Ship the recommended fix for \"" + issues[0].Title + "\".",
			"Re-run the audit to measure the change.",
		}
	}

	report := &audit.Report{
		AnalysisState:  audit.StateFull,
		PageType:       pt,
		UXScore:        score,
		ScoreBreakdown: breakdown,
		Summary:        summary,
		Issues:         issues,
		QuickWins:      quickWins,
		NextSteps:      nextSteps,
		WhyThisMatters: strings.TrimSpace(parsed.WhyThisMatters),
	}

	if len(parsed.FixOrder) > 0 {
		full := &audit.FullReport{FixOrder: parsed.FixOrder}
		for _, entry := range resolved {
			full.Issues = append(full.Issues, audit.FullIssue{
				Title:               entry.Title,
				HesitationRationale: entry.Rationale,
				Fixes:               trimList(entry.Fixes, 2),
			})
		}
		report.FullReport = full
	}

	return report
}

func breakdownInRange(b audit.ScoreBreakdown) bool {
	for _, score := range []int{b.FirstImpression, b.Clarity, b.Conversion, b.Trust, b.Usability} {
		if score < 0 || score > 100 {
			return false
		}
	}
	return true
}

// normalizePriorities forces the summary to exactly three priorities,
// deriving them from the issues when the model under- or over-delivered.
func normalizePriorities(priorities []string, issues []audit.ReportIssue) []string {
	cleaned := make([]string, 0, audit.SummaryPriorities)
	for _, p := range priorities {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
		if len(cleaned) == audit.SummaryPriorities {
			return cleaned
		}
	}

	for _, issue := range issues {
		if len(cleaned) == audit.SummaryPriorities {
			return cleaned
		}
		cleaned = append(cleaned, "Address \""+issue.Title+"\".")
	}
	fillers := []string{
		"Re-run the audit once the changes ship.",
		"Compare the next score against this baseline.",
		"Review the quick wins for immediate improvements.",
	}
	for _, f := range fillers {
		if len(cleaned) == audit.SummaryPriorities {
			break
		}
		cleaned = append(cleaned, f)
	}
	return cleaned
}

func trimList(items []string, max int) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			cleaned = append(cleaned, item)
		}
	}
	if len(cleaned) > max {
		cleaned = cleaned[:max]
	}
	return cleaned
}

func truncateDetail(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
