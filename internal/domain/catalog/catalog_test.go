package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogTitlesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, issue := range All() {
		key := normalizeTitle(issue.Title)
		assert.False(t, seen[key], "duplicate title %q", issue.Title)
		seen[key] = true
	}
}

func TestCatalogEntriesAreWellFormed(t *testing.T) {
	for _, issue := range All() {
		t.Run(issue.ID, func(t *testing.T) {
			assert.NotEmpty(t, issue.ID)
			assert.NotEmpty(t, issue.Title)
			assert.True(t, issue.Category.IsValid())
			assert.True(t, issue.Severity.IsValid())
			assert.NotEmpty(t, issue.Description)
			assert.NotEmpty(t, issue.Rationale)
			assert.GreaterOrEqual(t, len(issue.Fixes), 1)
			assert.LessOrEqual(t, len(issue.Fixes), 2)
			require.NotEmpty(t, issue.PageTypes)
			for _, pt := range issue.PageTypes {
				assert.True(t, pt.IsValid())
			}
		})
	}
}

func TestByTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		found bool
	}{
		{"exact match", "Weak primary call to action", true},
		{"case insensitive", "weak PRIMARY call to action", true},
		{"surrounding whitespace", "  Hidden pricing  ", true},
		{"unknown title", "Nonexistent issue", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue, ok := ByTitle(tt.title)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.NotEmpty(t, issue.ID)
			}
		})
	}
}

func TestByID(t *testing.T) {
	issue, ok := ByID("weak-primary-cta")
	require.True(t, ok)
	assert.Equal(t, "Weak primary call to action", issue.Title)
	assert.Equal(t, CategoryConversion, issue.Category)

	_, ok = ByID("missing")
	assert.False(t, ok)
}

func TestAllowedFiltersByPageTypeAndPaidFlag(t *testing.T) {
	for _, pt := range AllPageTypes() {
		for _, includePaid := range []bool{false, true} {
			allowed := Allowed(pt, includePaid)
			require.NotEmpty(t, allowed, "page type %s must have allowed issues", pt)
			for _, issue := range allowed {
				assert.True(t, issue.AppliesTo(pt))
				if !includePaid {
					assert.False(t, issue.Paid)
				}
			}
		}
	}
}

func TestAllowedPaidSupersetOfFree(t *testing.T) {
	for _, pt := range AllPageTypes() {
		free := Allowed(pt, false)
		paid := Allowed(pt, true)
		assert.GreaterOrEqual(t, len(paid), len(free))
	}
}

func TestResolveAllowed(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		pageType    PageType
		includePaid bool
		found       bool
	}{
		{"landing issue on landing", "Unclear value proposition", PageTypeLanding, false, true},
		{"landing issue on dashboard", "Unclear value proposition", PageTypeDashboard, false, false},
		{"paid issue without paid access", "Hidden pricing", PageTypeLanding, false, false},
		{"paid issue with paid access", "Hidden pricing", PageTypeLanding, true, true},
		{"unknown title", "Made up issue", PageTypeLanding, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ResolveAllowed(tt.title, tt.pageType, tt.includePaid)
			assert.Equal(t, tt.found, ok)
		})
	}
}
