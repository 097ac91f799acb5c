// Package filter derives the displayed question list from the stored collection.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/interview-tracker/internal/models"
)

// Date filter values.
const (
	DateAll   = "all"
	DateToday = "today"
	DateWeek  = "week"
	DateMonth = "month"
	DateYear  = "year"

	dayLayout = "2006-01-02"
	dayMillis = int64(24 * time.Hour / time.Millisecond)
)

var bucketDays = map[string]int64{
	DateToday: 1,
	DateWeek:  7,
	DateMonth: 30,
	DateYear:  365,
}

// ErrInvalidDateFilter is returned for date values that are neither a bucket nor a day.
var ErrInvalidDateFilter = errors.New("date filter must be all, today, week, month, year or YYYY-MM-DD")

// Criteria selects questions. Zero values match everything.
type Criteria struct {
	Category string
	Search   string
	Date     string

	// KnownCategories, when set, makes labels outside the list match as Other.
	KnownCategories []string

	// Location is used for calendar-day matching. Defaults to time.Local.
	Location *time.Location
}

// ParseDateFilter normalises and validates a date filter value.
func ParseDateFilter(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == DateAll {
		return DateAll, nil
	}
	if _, ok := bucketDays[v]; ok {
		return v, nil
	}
	if _, err := time.Parse(dayLayout, v); err == nil {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDateFilter, value)
}

// Apply returns the questions matching c, in input order. now anchors the relative
// date buckets.
func Apply(questions []models.Question, c Criteria, now time.Time) []models.Question {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	search := strings.ToLower(strings.TrimSpace(c.Search))
	datePred := datePredicate(c.Date, now, loc)

	out := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if !matchesCategory(q, c) {
			continue
		}
		if search != "" && !matchesText(q, search) {
			continue
		}
		if !datePred(q) {
			continue
		}
		out = append(out, q)
	}
	return out
}

func matchesCategory(q models.Question, c Criteria) bool {
	if c.Category == "" || c.Category == models.CategoryAll {
		return true
	}
	label := q.Category
	if c.KnownCategories != nil && !models.ContainsCategory(c.KnownCategories, label) {
		label = models.CategoryOther
	}
	return label == c.Category
}

func matchesText(q models.Question, search string) bool {
	if strings.Contains(strings.ToLower(q.Text), search) {
		return true
	}
	return q.CompanyTag != "" && strings.Contains(strings.ToLower(q.CompanyTag), search)
}

func datePredicate(value string, now time.Time, loc *time.Location) func(models.Question) bool {
	v, err := ParseDateFilter(value)
	if err != nil || v == DateAll {
		return func(models.Question) bool { return true }
	}

	if days, ok := bucketDays[v]; ok {
		nowMs := now.UnixMilli()
		window := days * dayMillis
		return func(q models.Question) bool {
			return nowMs-q.UpdatedAt < window
		}
	}

	day, _ := time.ParseInLocation(dayLayout, v, loc)
	return func(q models.Question) bool {
		return sameDay(models.MillisToTime(q.CreatedAt, loc), day) ||
			sameDay(models.MillisToTime(q.UpdatedAt, loc), day)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
