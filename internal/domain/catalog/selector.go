package catalog

// Allowed returns the catalog entries applicable to the given page type, in
// catalog order. Paid-only entries are included only when includePaid is true.
func Allowed(pt PageType, includePaid bool) []Issue {
	var out []Issue
	for _, issue := range entries {
		if !issue.AppliesTo(pt) {
			continue
		}
		if issue.Paid && !includePaid {
			continue
		}
		out = append(out, issue)
	}
	return out
}

// ResolveAllowed resolves a title against the page-type-filtered catalog.
// A title that exists in the catalog but is not allowed for the page type
// does not resolve.
func ResolveAllowed(title string, pt PageType, includePaid bool) (Issue, bool) {
	issue, ok := ByTitle(title)
	if !ok {
		return Issue{}, false
	}
	if !issue.AppliesTo(pt) {
		return Issue{}, false
	}
	if issue.Paid && !includePaid {
		return Issue{}, false
	}
	return issue, true
}

// PickPriority selects the single highest-priority issue from the given set:
// the first conversion-category issue if one exists, otherwise the issue with
// the highest severity. Ties are broken by position, which for catalog-derived
// sets means catalog order. Returns false for an empty set.
func PickPriority(issues []Issue) (Issue, bool) {
	if len(issues) == 0 {
		return Issue{}, false
	}
	for _, issue := range issues {
		if issue.Category == CategoryConversion {
			return issue, true
		}
	}
	best := issues[0]
	for _, issue := range issues[1:] {
		if issue.Severity.Rank() > best.Severity.Rank() {
			best = issue
		}
	}
	return best, true
}

// PickN deterministically selects up to n issues from the given set.
// If a high-severity issue exists, the first one encountered is forced into
// position 0 and the remaining slots fill in set order skipping it; otherwise
// the first n issues are taken in set order.
func PickN(issues []Issue, n int) []Issue {
	if n <= 0 || len(issues) == 0 {
		return nil
	}
	if n > len(issues) {
		n = len(issues)
	}

	highIdx := -1
	for i, issue := range issues {
		if issue.Severity == SeverityHigh {
			highIdx = i
			break
		}
	}
	if highIdx < 0 {
		out := make([]Issue, n)
		copy(out, issues[:n])
		return out
	}

	out := make([]Issue, 0, n)
	out = append(out, issues[highIdx])
	for i, issue := range issues {
		if len(out) == n {
			break
		}
		if i == highIdx {
			continue
		}
		out = append(out, issue)
	}
	return out
}
