package models

import (
	"strings"
	"time"
)

// Source is a grounding citation attached to an AI-generated answer.
type Source struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

// Question is a single interview question record.
// JSON names follow the browser export format so exports round-trip.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Answer        string   `json:"answer"`
	Category      string   `json:"category"`
	CompanyTag    string   `json:"companyTag,omitempty"`
	CreatedAt     int64    `json:"createdAt"`
	UpdatedAt     int64    `json:"updatedAt"`
	IsAIGenerated bool     `json:"isAiGenerated"`
	Sources       []Source `json:"sources"`
	Drawing       string   `json:"drawing,omitempty"`
}

// HasIdentity reports whether the record carries the fields required to be stored.
func (q *Question) HasIdentity() bool {
	return strings.TrimSpace(q.ID) != "" && strings.TrimSpace(q.Text) != ""
}

// Clone returns a deep copy so callers never share the sources slice with the store.
func (q Question) Clone() Question {
	if q.Sources != nil {
		sources := make([]Source, len(q.Sources))
		copy(sources, q.Sources)
		q.Sources = sources
	}
	return q
}

// NowMillis returns the current time in milliseconds since epoch.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisToTime converts a millisecond timestamp to a time in the given location.
func MillisToTime(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc)
}
