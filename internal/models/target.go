package models

import (
	"strings"
	"time"
)

// ListSeparator joins tag and record lists in their stored form.
const ListSeparator = ", "

// Target is a discovered subdomain tracked by the catalog.
type Target struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	Name        string     `gorm:"not null;uniqueIndex" json:"name"`
	Tags        string     `json:"tags"`
	Validated   *bool      `json:"validated"` // nil = never checked
	Records     string     `json:"records"`
	LastScanned *time.Time `json:"last_scanned"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
}

func (t Target) TagList() []string {
	return SplitList(t.Tags)
}

// HasTag reports whether label is already stored. The check runs on the
// joined column, so labels that contain ListSeparator still match.
func (t Target) HasTag(label string) bool {
	return ListContains(t.Tags, label)
}

func (t Target) RecordList() []string {
	return SplitList(t.Records)
}

func (t Target) IsValidated() bool {
	return t.Validated != nil && *t.Validated
}

// SplitList is the inverse of JoinList; an empty string yields nil.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ListSeparator)
}

func JoinList(items []string) string {
	return strings.Join(items, ListSeparator)
}

// ListContains reports whether item is a whole element of the joined list s.
func ListContains(s, item string) bool {
	return s == item ||
		strings.HasPrefix(s, item+ListSeparator) ||
		strings.HasSuffix(s, ListSeparator+item) ||
		strings.Contains(s, ListSeparator+item+ListSeparator)
}
