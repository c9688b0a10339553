package catalog

import "strings"

// entries is the static issue registry. Order matters: selection rules and
// tie-breaking are defined in terms of catalog order.
var entries = []Issue{
	{
		ID:          "unclear-value-proposition",
		Category:    CategoryClarity,
		Title:       "Unclear value proposition",
		Severity:    SeverityHigh,
		Description: "Visitors cannot tell within a few seconds what the product does or why it matters to them.",
		Rationale:   "When the headline and hero copy do not answer \"what is this and why should I care\", most visitors leave before scrolling.",
		Fixes: []string{
			"Rewrite the headline to state the outcome the user gets, not the product category.",
			"Add a one-sentence subheadline that names the target user and the problem solved.",
		},
		PageTypes: []PageType{PageTypeLanding},
	},
	{
		ID:          "weak-primary-cta",
		Category:    CategoryConversion,
		Title:       "Weak primary call to action",
		Severity:    SeverityHigh,
		Description: "The main action button is visually underweighted or uses vague copy, so visitors do not know what to do next.",
		Rationale:   "A page can only convert if the single most important action is obvious and compelling at every scroll depth.",
		Fixes: []string{
			"Use a high-contrast button with verb-led copy that names the outcome.",
			"Repeat the primary action after each major content section.",
		},
		PageTypes: []PageType{PageTypeLanding},
	},
	{
		ID:          "competing-actions",
		Category:    CategoryConversion,
		Title:       "Too many competing actions",
		Severity:    SeverityMedium,
		Description: "Multiple equally-weighted buttons and links pull attention away from the one action that matters.",
		Rationale:   "Each additional equally-prominent choice measurably reduces the share of visitors who take any action at all.",
		Fixes: []string{
			"Demote secondary actions to text links and keep one visually dominant button.",
		},
		PageTypes: []PageType{PageTypeLanding, PageTypeDashboard},
	},
	{
		ID:          "low-contrast-text",
		Category:    CategoryAccessibility,
		Title:       "Low-contrast text",
		Severity:    SeverityMedium,
		Description: "Body or label text does not meet contrast guidelines against its background.",
		Rationale:   "Low-contrast text is skipped by scanning users and unreadable for a meaningful share of visitors.",
		Fixes: []string{
			"Raise text contrast to at least WCAG AA (4.5:1 for body text).",
		},
		PageTypes: []PageType{PageTypeLanding, PageTypeDashboard, PageTypeApp},
	},
	{
		ID:          "cluttered-above-fold",
		Category:    CategoryClarity,
		Title:       "Cluttered above-the-fold layout",
		Severity:    SeverityMedium,
		Description: "The first screen crams in too many elements, leaving no clear reading path.",
		Rationale:   "Visitors decide whether to stay based on the first screen; visual noise delays that decision past the point of abandonment.",
		Fixes: []string{
			"Cut the first screen down to headline, subheadline, one visual, and one action.",
			"Move supporting details below the fold into scannable sections.",
		},
		PageTypes: []PageType{PageTypeLanding},
	},
	{
		ID:          "ambiguous-navigation",
		Category:    CategoryNavigation,
		Title:       "Ambiguous navigation labels",
		Severity:    SeverityMedium,
		Description: "Menu items use internal or clever wording that does not match what users are looking for.",
		Rationale:   "Users navigate by matching their own words against labels; a mismatch reads as \"this product does not have what I need\".",
		Fixes: []string{
			"Rename navigation items to the plain words users would type into search.",
		},
		PageTypes: []PageType{PageTypeDashboard, PageTypeApp},
	},
	{
		ID:          "form-asks-too-much",
		Category:    CategoryForms,
		Title:       "Form asks for too much",
		Severity:    SeverityHigh,
		Description: "The signup or lead form requires fields that are not needed for the first step.",
		Rationale:   "Every extra required field adds friction at the exact moment commitment is lowest.",
		Fixes: []string{
			"Reduce the form to the minimum fields needed to start, and collect the rest later.",
			"Mark optional fields explicitly or remove them.",
		},
		PageTypes: []PageType{PageTypeLanding, PageTypeApp},
	},
	{
		ID:          "no-empty-state-guidance",
		Category:    CategoryClarity,
		Title:       "No empty-state guidance",
		Severity:    SeverityMedium,
		Description: "Empty screens show nothing actionable, leaving new users stranded after signup.",
		Rationale:   "The empty state is the first real product experience; a blank screen teaches users the product is empty, not useful.",
		Fixes: []string{
			"Replace blank areas with a one-step instruction and a button that creates the first item.",
		},
		PageTypes: []PageType{PageTypeDashboard, PageTypeApp},
	},
	{
		ID:          "dense-data-tables",
		Category:    CategoryClarity,
		Title:       "Dense data tables without hierarchy",
		Severity:    SeverityLow,
		Description: "Tables present every column with equal weight, making the important numbers hard to find.",
		Rationale:   "Users scan tables for one or two decision-driving values; undifferentiated columns force row-by-row reading.",
		Fixes: []string{
			"Emphasize the primary metric column and de-emphasize or collapse secondary ones.",
		},
		PageTypes: []PageType{PageTypeDashboard},
	},
	{
		ID:          "missing-social-proof",
		Category:    CategoryTrust,
		Title:       "Missing social proof",
		Severity:    SeverityMedium,
		Description: "The page shows no customer logos, testimonials, or usage numbers near the decision point.",
		Rationale:   "Visitors discount vendor claims; evidence that similar people already use the product is what moves skeptical traffic.",
		Fixes: []string{
			"Place two or three recognizable customer proofs directly above or beside the primary action.",
		},
		PageTypes: []PageType{PageTypeLanding},
		Paid:      true,
	},
	{
		ID:          "hidden-pricing",
		Category:    CategoryTrust,
		Title:       "Hidden pricing",
		Severity:    SeverityHigh,
		Description: "Pricing is absent or buried, forcing visitors to request a demo just to learn the cost.",
		Rationale:   "Undisclosed pricing reads as \"expensive\" and disqualifies self-serve buyers before sales ever sees them.",
		Fixes: []string{
			"Publish at least a starting price or a representative plan on the page.",
			"Link pricing from the main navigation.",
		},
		PageTypes: []PageType{PageTypeLanding},
		Paid:      true,
	},
	{
		ID:          "slow-perceived-load",
		Category:    CategoryPerformance,
		Title:       "Slow perceived load",
		Severity:    SeverityLow,
		Description: "Large images or blocking assets leave the page visually incomplete for several seconds.",
		Rationale:   "Perceived speed sets the quality expectation for everything that follows; slow first paint inflates bounce across all traffic.",
		Fixes: []string{
			"Compress hero imagery and lazy-load everything below the fold.",
		},
		PageTypes: []PageType{PageTypeLanding, PageTypeDashboard, PageTypeApp},
		Paid:      true,
	},
}

var byTitle = func() map[string]*Issue {
	m := make(map[string]*Issue, len(entries))
	for i := range entries {
		m[normalizeTitle(entries[i].Title)] = &entries[i]
	}
	return m
}()

var byID = func() map[string]*Issue {
	m := make(map[string]*Issue, len(entries))
	for i := range entries {
		m[entries[i].ID] = &entries[i]
	}
	return m
}()

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// All returns every catalog entry in catalog order.
// The returned slice is a copy; the registry itself never mutates.
func All() []Issue {
	out := make([]Issue, len(entries))
	copy(out, entries)
	return out
}

// ByTitle resolves an issue by its title, case-insensitively.
// Title is the primary key used by model output to reference issues.
func ByTitle(title string) (Issue, bool) {
	issue, ok := byTitle[normalizeTitle(title)]
	if !ok {
		return Issue{}, false
	}
	return *issue, true
}

// ByID resolves an issue by its stable identifier
func ByID(id string) (Issue, bool) {
	issue, ok := byID[id]
	if !ok {
		return Issue{}, false
	}
	return *issue, true
}

// Size returns the number of catalog entries
func Size() int {
	return len(entries)
}
