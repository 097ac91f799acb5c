package models

const (
	// CategoryOther is the fallback label. It always exists and cannot be removed or renamed.
	CategoryOther = "Other"
	// CategoryAll is the filter value that matches every category.
	CategoryAll = "All"
)

// DefaultCategories is the seed list used until the user stores their own.
var DefaultCategories = []string{
	"Algorithm",
	"Data Structures",
	"System Design",
	"Machine Learning",
	"Deep Learning",
	"NLP",
	"Computer Vision",
	"Statistics",
	"Behavioral",
	CategoryOther,
}

// DefaultCategoryList returns a fresh copy of DefaultCategories.
func DefaultCategoryList() []string {
	out := make([]string, len(DefaultCategories))
	copy(out, DefaultCategories)
	return out
}

// ContainsCategory reports whether label is present in labels (exact match).
func ContainsCategory(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
