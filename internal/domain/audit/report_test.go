package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uxlens/backend/internal/domain/catalog"
)

func validLandingReport() *Report {
	return &Report{
		AnalysisState: StateFull,
		PageType:      catalog.PageTypeLanding,
		UXScore:       72,
		ScoreBreakdown: ScoreBreakdown{
			FirstImpression: 70, Clarity: 68, Conversion: 60, Trust: 75, Usability: 80,
		},
		Summary: Summary{
			Priorities: []string{"Fix the CTA", "Clarify the headline", "Reduce clutter"},
			Notes:      "Solid structure overall.",
		},
		Issues: []ReportIssue{
			{
				Title:           "Weak primary call to action",
				Severity:        catalog.SeverityHigh,
				Category:        catalog.CategoryConversion,
				Problem:         "The main button blends into the hero.",
				Evidence:        "Button uses the same color as the background band.",
				Recommendations: []string{"Use a high-contrast button."},
				ExpectedImpact:  "More visitors start the signup flow.",
			},
			{
				Title:           "Unclear value proposition",
				Severity:        catalog.SeverityHigh,
				Category:        catalog.CategoryClarity,
				Problem:         "Headline describes features, not outcomes.",
				Evidence:        "Hero copy lists three product nouns.",
				Recommendations: []string{"Lead with the user outcome.", "Name the target user."},
				ExpectedImpact:  "Visitors qualify themselves faster.",
			},
		},
		QuickWins: []QuickWin{{Title: "Bump button contrast", Detail: "One CSS change."}},
		NextSteps: []string{"Ship the CTA change.", "Re-run the audit."},
	}
}

func TestReportValidateHappyPath(t *testing.T) {
	assert.NoError(t, validLandingReport().Validate(false))
}

func TestReportValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Report)
	}{
		{"score above range", func(r *Report) { r.UXScore = 101 }},
		{"score below range", func(r *Report) { r.UXScore = -1 }},
		{"sub-score out of range", func(r *Report) { r.ScoreBreakdown.Trust = 120 }},
		{"no issues", func(r *Report) { r.Issues = nil }},
		{"too many issues", func(r *Report) {
			r.Issues = append(r.Issues, r.Issues[0], r.Issues[0])
		}},
		{"two priorities only", func(r *Report) { r.Summary.Priorities = r.Summary.Priorities[:2] }},
		{"unknown issue title", func(r *Report) { r.Issues[0].Title = "Invented issue" }},
		{"title from another page type", func(r *Report) {
			// Dashboard-only issue referenced from a landing report.
			r.Issues[1].Title = "Dense data tables without hierarchy"
		}},
		{"paid title without paid access", func(r *Report) { r.Issues[1].Title = "Hidden pricing" }},
		{"non-conversion issue first", func(r *Report) {
			r.Issues[0], r.Issues[1] = r.Issues[1], r.Issues[0]
		}},
		{"no quick wins", func(r *Report) { r.QuickWins = nil }},
		{"one next step", func(r *Report) { r.NextSteps = r.NextSteps[:1] }},
		{"too many recommendations", func(r *Report) {
			r.Issues[0].Recommendations = []string{"a", "b", "c"}
		}},
		{"bad fix order title", func(r *Report) {
			r.FullReport = &FullReport{FixOrder: []string{"Invented issue"}}
		}},
		{"invalid analysis state", func(r *Report) { r.AnalysisState = "partial" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validLandingReport()
			tt.mutate(r)
			assert.Error(t, r.Validate(false))
		})
	}
}

func TestReportValidatePaidTitleWithPaidAccess(t *testing.T) {
	r := validLandingReport()
	r.Issues[1].Title = "Hidden pricing"
	assert.NoError(t, r.Validate(true))
}

func TestFallbackAlwaysValid(t *testing.T) {
	states := []AnalysisState{StateDegradedL1, StateDegradedL2, StateDegradedL3}
	for _, pt := range catalog.AllPageTypes() {
		for _, state := range states {
			for _, includePaid := range []bool{false, true} {
				r := BuildFallback(state, pt, includePaid)
				require.NoError(t, r.Validate(includePaid),
					"fallback for %s/%s paid=%v must satisfy report invariants", pt, state, includePaid)
				assert.Equal(t, state, r.AnalysisState)
			}
		}
	}
}

func TestFallbackUsesPriorityRule(t *testing.T) {
	r := BuildFallback(StateDegradedL2, catalog.PageTypeLanding, false)
	expected, ok := catalog.PickPriority(catalog.Allowed(catalog.PageTypeLanding, false))
	require.True(t, ok)
	assert.Equal(t, expected.Title, r.Issues[0].Title)
}
