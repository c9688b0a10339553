package audit

// AccessTier governs which parts of a report are visible to the caller.
// It is supplied per-request and never persisted as part of the report.
type AccessTier string

const (
	TierFree        AccessTier = "free"
	TierEarlyAccess AccessTier = "early_access"
	TierFull        AccessTier = "full"
)

// IsValid checks if the AccessTier is a valid value
func (t AccessTier) IsValid() bool {
	switch t {
	case TierFree, TierEarlyAccess, TierFull:
		return true
	}
	return false
}

// String returns the string representation of AccessTier
func (t AccessTier) String() string {
	return string(t)
}

// IncludesPaidIssues reports whether the tier may see paid-only catalog entries
func (t AccessTier) IncludesPaidIssues() bool {
	return t == TierEarlyAccess || t == TierFull
}

// LockState describes what a tier may see and whether the unlock CTA shows
type LockState struct {
	CanViewDetails bool `json:"can_view_details"`
	CanViewFull    bool `json:"can_view_full"`
	ShowLockedCTA  bool `json:"show_locked_cta"`
}

// LockStateFor computes the lock state for an access tier
func LockStateFor(tier AccessTier) LockState {
	switch tier {
	case TierFull:
		return LockState{CanViewDetails: true, CanViewFull: true, ShowLockedCTA: false}
	case TierEarlyAccess:
		return LockState{CanViewDetails: true, CanViewFull: false, ShowLockedCTA: true}
	default:
		return LockState{CanViewDetails: false, CanViewFull: false, ShowLockedCTA: true}
	}
}

const (
	teaserIssueCount    = 2
	teaserQuickWinCount = 1
)

// Teaser is the preview slice shown alongside a locked report
type Teaser struct {
	Issues    []ReportIssue `json:"issues"`
	QuickWins []QuickWin    `json:"quick_wins"`
}

// LockedSlice is the remainder of the report hidden behind the CTA
type LockedSlice struct {
	IssueCount    int `json:"issue_count"`
	QuickWinCount int `json:"quick_win_count"`
	NextStepCount int `json:"next_step_count"`
}

// View is the tier-scoped partition of a report
type View struct {
	LockState        LockState     `json:"lock_state"`
	VisibleIssues    []ReportIssue `json:"visible_issues"`
	VisibleQuickWins []QuickWin    `json:"visible_quick_wins"`
	VisibleNextSteps []string      `json:"visible_next_steps"`
	Teaser           *Teaser       `json:"teaser,omitempty"`
	Locked           *LockedSlice  `json:"locked,omitempty"`
}

// AccessView derives the visible / teaser / locked partition of a report for
// the given tier. It is a pure derivation: the report is never mutated.
func AccessView(r *Report, tier AccessTier) View {
	state := LockStateFor(tier)
	view := View{LockState: state}

	if state.CanViewDetails {
		view.VisibleIssues = append([]ReportIssue(nil), r.Issues...)
		view.VisibleQuickWins = append([]QuickWin(nil), r.QuickWins...)
		view.VisibleNextSteps = append([]string(nil), r.NextSteps...)
	}

	// The teaser is only computed when the CTA is shown.
	if state.ShowLockedCTA {
		teaser := &Teaser{}
		n := teaserIssueCount
		if n > len(r.Issues) {
			n = len(r.Issues)
		}
		teaser.Issues = append([]ReportIssue(nil), r.Issues[:n]...)

		m := teaserQuickWinCount
		if m > len(r.QuickWins) {
			m = len(r.QuickWins)
		}
		teaser.QuickWins = append([]QuickWin(nil), r.QuickWins[:m]...)
		view.Teaser = teaser

		view.Locked = &LockedSlice{
			IssueCount:    len(r.Issues) - n,
			QuickWinCount: len(r.QuickWins) - m,
			NextStepCount: len(r.NextSteps),
		}
		if state.CanViewDetails {
			// Early access sees everything but the full report; nothing beyond
			// the full view remains locked.
			view.Locked = &LockedSlice{}
		}
	}

	return view
}
