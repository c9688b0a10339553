package audit

// Deterministic scoring used when no model score exists. Both paths are pure
// functions of their inputs so identical inputs reproduce identical audits.

const (
	issueScoreBase    = 75
	issueScorePenalty = 8
	issueScoreMin     = 45
	issueScoreMax     = 85

	imageScoreBase = 84
	imageScoreMin  = 40
	imageScoreMax  = 96
)

// ImageMetrics describes a submitted screenshot for metric-derived scoring
type ImageMetrics struct {
	SizeBytes  int64
	Width      int
	Height     int
	Brightness float64 // mean luminance 0-1, negative when unknown
}

// ScorePenalty names one deduction applied by metric-derived scoring
type ScorePenalty struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// ScoreFromIssueCount derives a synthetic score from the number of selected
// issues: base 75, minus 8 per issue, clamped to [45,85].
func ScoreFromIssueCount(n int) int {
	return clamp(issueScoreBase-issueScorePenalty*n, issueScoreMin, issueScoreMax)
}

// ScoreFromImageMetrics derives a synthetic score from screenshot metrics:
// base 84 with named penalties, clamped to [40,96].
func ScoreFromImageMetrics(m ImageMetrics) (int, []ScorePenalty) {
	var penalties []ScorePenalty
	score := imageScoreBase

	if m.SizeBytes > 2<<20 {
		penalties = append(penalties, ScorePenalty{Name: "large", Points: 6})
	}
	if m.Width > 0 && m.Height > 0 {
		pixels := m.Width * m.Height
		if pixels > 1280*800*2 {
			penalties = append(penalties, ScorePenalty{Name: "dense", Points: 5})
		}
		ratio := float64(m.Height) / float64(m.Width)
		if ratio > 3.0 {
			penalties = append(penalties, ScorePenalty{Name: "too tall", Points: 4})
		}
		if ratio < 0.33 {
			penalties = append(penalties, ScorePenalty{Name: "too wide", Points: 4})
		}
	}
	if m.Brightness >= 0 && m.Brightness > 0.92 {
		penalties = append(penalties, ScorePenalty{Name: "too light", Points: 3})
	}

	for _, p := range penalties {
		score -= p.Points
	}
	return clamp(score, imageScoreMin, imageScoreMax), penalties
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
