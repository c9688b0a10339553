package catalog

// Issue is a single catalog entry describing a known UX problem.
// Entries are immutable after process start; Title is unique and acts as the
// primary key used by the analysis pipeline to reference an issue.
type Issue struct {
	ID          string
	Category    Category
	Title       string
	Severity    Severity
	Description string
	Rationale   string
	Fixes       []string // one or two recommended fixes
	PageTypes   []PageType
	Paid        bool
}

// AppliesTo reports whether the issue is applicable to the given page type
func (i Issue) AppliesTo(pt PageType) bool {
	for _, p := range i.PageTypes {
		if p == pt {
			return true
		}
	}
	return false
}
