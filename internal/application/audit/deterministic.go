package audit

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/catalog"
)

// buildDeterministicReport synthesizes a report from the catalog alone,
// for demo and offline use. Issue order follows the seed selection rule
// (first high-severity issue forced to slot 0, catalog order after that),
// which deliberately differs from the model-path priority rule. A score of
// 0 means "derive from the issue count".
func buildDeterministicReport(pt catalog.PageType, includePaid bool, score int) *audit.Report {
	allowed := catalog.Allowed(pt, includePaid)
	picked := catalog.PickN(allowed, audit.MaxIssues)
	if len(picked) == 0 {
		panic(fmt.Sprintf("no allowed issues for page type %s", pt))
	}

	if score == 0 {
		score = audit.ScoreFromIssueCount(len(picked))
	}

	issues := make([]audit.ReportIssue, len(picked))
	priorities := make([]string, 0, audit.SummaryPriorities)
	for i, entry := range picked {
		recommendations := entry.Fixes
		if len(recommendations) > 2 {
			recommendations = recommendations[:2]
		}
		issues[i] = audit.ReportIssue{
			Title:           entry.Title,
			Severity:        entry.Severity,
			Category:        entry.Category,
			Problem:         entry.Description,
			Evidence:        "Flagged from the standing review checklist for " + pt.String() + " pages.",
			Recommendations: recommendations,
			ExpectedImpact:  "Addressing this typically produces a measurable lift in task completion.",
			ImpactTag:       entry.Severity.String(),
		}
		if len(priorities) < audit.SummaryPriorities {
			priorities = append(priorities, "Address \""+entry.Title+"\".")
		}
	}
	for len(priorities) < audit.SummaryPriorities {
		priorities = append(priorities, "Re-run the audit once the changes ship.")
	}

	return &audit.Report{
		AnalysisState: audit.StateFull,
		PageType:      pt,
		UXScore:       score,
		ScoreBreakdown: audit.ScoreBreakdown{
			FirstImpression: score,
			Clarity:         score,
			Conversion:      score,
			Trust:           score,
			Usability:       score,
		},
		Summary: audit.Summary{
			Priorities: priorities,
			Notes:      "This review was assembled from the standing checklist for " + pt.String() + " pages.",
		},
		Issues: issues,
		QuickWins: []audit.QuickWin{
			{
				Title:  "Apply the first recommended fix",
				Detail: picked[0].Fixes[0],
			},
		},
		NextSteps: []string{
			"Work through the issues in the order listed.",
			"Request a fresh audit to measure the change.",
		},
		WhyThisMatters: picked[0].Rationale,
	}
}

// metricsFromImage derives the deterministic scoring inputs from raw image
// bytes. Undecodable images contribute only their byte size; scoring treats
// the missing dimensions as neutral.
func metricsFromImage(data []byte) audit.ImageMetrics {
	metrics := audit.ImageMetrics{SizeBytes: int64(len(data))}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return metrics
	}
	metrics.Width = cfg.Width
	metrics.Height = cfg.Height

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return metrics
	}
	metrics.Brightness = sampleBrightness(img)
	return metrics
}

// sampleBrightness averages luma over a sparse pixel grid. Sampling keeps
// the cost flat regardless of image size while staying deterministic.
func sampleBrightness(img image.Image) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}

	stepX := bounds.Dx() / 32
	if stepX < 1 {
		stepX = 1
	}
	stepY := bounds.Dy() / 32
	if stepY < 1 {
		stepY = 1
	}

	var total float64
	var samples int
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			// Rec. 601 luma on 16-bit channel values
			luma := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			total += luma / 65535.0
			samples++
		}
	}
	if samples == 0 {
		return 0
	}
	return total / float64(samples)
}
