package audit

import (
	"fmt"

	"github.com/uxlens/backend/internal/domain/catalog"
)

const (
	// MinIssues and MaxIssues bound the number of issues a report may carry
	MinIssues = 1
	MaxIssues = 3
	// SummaryPriorities is the exact number of priority strings a summary carries
	SummaryPriorities = 3
)

// ScoreBreakdown holds the five named sub-scores, each 0-100
type ScoreBreakdown struct {
	FirstImpression int `json:"first_impression"`
	Clarity         int `json:"clarity"`
	Conversion      int `json:"conversion"`
	Trust           int `json:"trust"`
	Usability       int `json:"usability"`
}

// Summary is the report's executive summary: exactly three priorities plus notes
type Summary struct {
	Priorities []string `json:"priorities"`
	Notes      string   `json:"notes,omitempty"`
}

// ReportIssue is one prioritized issue inside a report. Title must resolve
// against the issue catalog filtered to the report's page type.
type ReportIssue struct {
	Title           string           `json:"title"`
	Severity        catalog.Severity `json:"severity"`
	Category        catalog.Category `json:"category"`
	Problem         string           `json:"problem"`
	Evidence        string           `json:"evidence"`
	Recommendations []string         `json:"recommendations"`
	ExpectedImpact  string           `json:"expected_impact"`
	ImpactTag       string           `json:"impact_tag,omitempty"`
}

// QuickWin is a low-effort improvement the user can apply immediately
type QuickWin struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// FullIssue is the richer unlock view of a prioritized issue
type FullIssue struct {
	Title               string   `json:"title"`
	HesitationRationale string   `json:"hesitation_rationale"`
	Fixes               []string `json:"fixes"`
}

// FullReport is the unlock view attached for paying tiers: at most three
// prioritized issues plus a recommended fix order of catalog titles.
type FullReport struct {
	Issues   []FullIssue `json:"issues"`
	FixOrder []string    `json:"fix_order,omitempty"`
}

// Report is the canonical structured UX critique. It is constructed once per
// audit request and treated as immutable afterward.
type Report struct {
	AnalysisState  AnalysisState    `json:"analysis_state"`
	PageType       catalog.PageType `json:"page_type"`
	UXScore        int              `json:"ux_score"`
	ScoreBreakdown ScoreBreakdown   `json:"score_breakdown"`
	Summary        Summary          `json:"summary"`
	Issues         []ReportIssue    `json:"issues"`
	QuickWins      []QuickWin       `json:"quick_wins"`
	NextSteps      []string         `json:"next_steps"`
	WhyThisMatters string           `json:"why_this_matters,omitempty"`
	FullReport     *FullReport      `json:"full_report,omitempty"`
}

// Validate enforces the canonical report invariants against the catalog
// filtered to the report's page type. includePaid widens title resolution to
// paid-only catalog entries.
func (r *Report) Validate(includePaid bool) error {
	if !r.AnalysisState.IsValid() {
		return fmt.Errorf("invalid analysis state %q", r.AnalysisState)
	}
	if !r.PageType.IsValid() {
		return fmt.Errorf("invalid page type %q", r.PageType)
	}
	if r.UXScore < 0 || r.UXScore > 100 {
		return fmt.Errorf("ux score %d out of range [0,100]", r.UXScore)
	}
	for name, score := range map[string]int{
		"first_impression": r.ScoreBreakdown.FirstImpression,
		"clarity":          r.ScoreBreakdown.Clarity,
		"conversion":       r.ScoreBreakdown.Conversion,
		"trust":            r.ScoreBreakdown.Trust,
		"usability":        r.ScoreBreakdown.Usability,
	} {
		if score < 0 || score > 100 {
			return fmt.Errorf("sub-score %s value %d out of range [0,100]", name, score)
		}
	}
	if len(r.Summary.Priorities) != SummaryPriorities {
		return fmt.Errorf("summary must carry exactly %d priorities, got %d", SummaryPriorities, len(r.Summary.Priorities))
	}
	if len(r.Issues) < MinIssues || len(r.Issues) > MaxIssues {
		return fmt.Errorf("issue count %d out of range [%d,%d]", len(r.Issues), MinIssues, MaxIssues)
	}

	allowed := catalog.Allowed(r.PageType, includePaid)
	for i, issue := range r.Issues {
		if _, ok := catalog.ResolveAllowed(issue.Title, r.PageType, includePaid); !ok {
			return fmt.Errorf("issue %d title %q does not resolve against the allowed catalog", i, issue.Title)
		}
		if len(issue.Recommendations) < 1 || len(issue.Recommendations) > 2 {
			return fmt.Errorf("issue %d must carry 1-2 recommendations, got %d", i, len(issue.Recommendations))
		}
	}

	// Issue #1 must be the conversion-category issue when the allowed set has
	// one, otherwise the highest-severity allowed issue.
	if err := r.checkFirstIssuePriority(allowed); err != nil {
		return err
	}

	if len(r.QuickWins) < 1 {
		return fmt.Errorf("report must carry at least one quick win")
	}
	if len(r.NextSteps) < 2 || len(r.NextSteps) > 3 {
		return fmt.Errorf("next steps count %d out of range [2,3]", len(r.NextSteps))
	}

	if r.FullReport != nil {
		if len(r.FullReport.Issues) > MaxIssues {
			return fmt.Errorf("full report issue count %d exceeds %d", len(r.FullReport.Issues), MaxIssues)
		}
		for _, title := range r.FullReport.FixOrder {
			if _, ok := catalog.ByTitle(title); !ok {
				return fmt.Errorf("fix order title %q does not resolve against the catalog", title)
			}
		}
	}

	return nil
}

func (r *Report) checkFirstIssuePriority(allowed []catalog.Issue) error {
	first, ok := catalog.ByTitle(r.Issues[0].Title)
	if !ok {
		return fmt.Errorf("first issue title %q not in catalog", r.Issues[0].Title)
	}

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
			return fmt.Errorf("first issue must be conversion-category, got %s", first.Category)
		}
		return nil
	}
	if first.Severity.Rank() < maxRank {
		return fmt.Errorf("first issue severity %s is below the allowed set's maximum", first.Severity)
	}
	return nil
}
