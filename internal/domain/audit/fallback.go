package audit

import (
	"fmt"

	"github.com/uxlens/backend/internal/domain/catalog"
)

// BuildFallback synthesizes a safe, always-valid report from catalog data
// alone. No model output is ever consulted. The selected issue follows the
// same conversion-first/severity-first rule as validation, so fallback and
// success paths never contradict each other.
func BuildFallback(state AnalysisState, pt catalog.PageType, includePaid bool) *Report {
	allowed := catalog.Allowed(pt, includePaid)
	picked, ok := catalog.PickPriority(allowed)
	if !ok {
		// The catalog guarantees a non-empty allowed set for every page type;
		// an empty set here is a catalog regression, not a runtime condition.
		panic(fmt.Sprintf("no allowed issues for page type %s", pt))
	}

	issue := ReportIssue{
		Title:           picked.Title,
		Severity:        picked.Severity,
		Category:        picked.Category,
		Problem:         picked.Description,
		Evidence:        "Flagged from the standing review checklist for " + pt.String() + " pages.",
		Recommendations: trimFixes(picked.Fixes),
		ExpectedImpact:  "Addressing this typically produces a measurable lift in task completion.",
		ImpactTag:       "baseline",
	}

	score := ScoreFromIssueCount(1)

	return &Report{
		AnalysisState: state,
		PageType:      pt,
		UXScore:       score,
		ScoreBreakdown: ScoreBreakdown{
			FirstImpression: score,
			Clarity:         score,
			Conversion:      score,
			Trust:           score,
			Usability:       score,
		},
		Summary: Summary{
			Priorities: []string{
				"Resolve the highlighted issue before anything else.",
				"Re-run the audit once the change ships.",
				"Compare the next score against this baseline.",
			},
			Notes: "This report was generated from the standing review checklist. A complete analysis was not available for this request.",
		},
		Issues: []ReportIssue{issue},
		QuickWins: []QuickWin{
			{
				Title:  "Apply the first recommended fix",
				Detail: picked.Fixes[0],
			},
		},
		NextSteps: []string{
			"Ship the recommended fix for \"" + picked.Title + "\".",
			"Request a fresh audit to get a full analysis.",
		},
		WhyThisMatters: picked.Rationale,
	}
}

func trimFixes(fixes []string) []string {
	if len(fixes) > 2 {
		return fixes[:2]
	}
	return fixes
}
