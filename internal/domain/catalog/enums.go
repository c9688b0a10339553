package catalog

// Category represents the UX concern an issue belongs to
type Category string

const (
	CategoryConversion    Category = "CONVERSION"
	CategoryClarity       Category = "CLARITY"
	CategoryTrust         Category = "TRUST"
	CategoryNavigation    Category = "NAVIGATION"
	CategoryForms         Category = "FORMS"
	CategoryAccessibility Category = "ACCESSIBILITY"
	CategoryPerformance   Category = "PERFORMANCE"
)

// IsValid checks if the Category is a valid value
func (c Category) IsValid() bool {
	switch c {
	case CategoryConversion, CategoryClarity, CategoryTrust, CategoryNavigation,
		CategoryForms, CategoryAccessibility, CategoryPerformance:
		return true
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// Severity represents how damaging an issue is to the page's goal
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// IsValid checks if the Severity is a valid value
func (s Severity) IsValid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// String returns the string representation of Severity
func (s Severity) String() string {
	return string(s)
}

// Rank returns a numeric rank for severity comparison, higher is more severe
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// PageType represents the kind of page being audited
type PageType string

const (
	PageTypeLanding   PageType = "landing"
	PageTypeDashboard PageType = "dashboard"
	PageTypeApp       PageType = "app"
)

// IsValid checks if the PageType is a valid value
func (p PageType) IsValid() bool {
	switch p {
	case PageTypeLanding, PageTypeDashboard, PageTypeApp:
		return true
	}
	return false
}

// String returns the string representation of PageType
func (p PageType) String() string {
	return string(p)
}

// AllPageTypes returns all valid PageType values
func AllPageTypes() []PageType {
	return []PageType{PageTypeLanding, PageTypeDashboard, PageTypeApp}
}
