package models

import (
	"strings"
	"time"
)

// DefaultExamDurationMinutes applies to calendar output when a stored exam has no duration.
const DefaultExamDurationMinutes = 120

// Exam is a persisted final exam sitting.
type Exam struct {
	ID          string    `db:"id" json:"id"`
	Campus      string    `db:"campus" json:"campus"`
	Subject     string    `db:"subject" json:"subject"`
	Course      string    `db:"course" json:"course"`
	Section     string    `db:"section" json:"section"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	DurationMin *int      `db:"duration_min" json:"duration_min,omitempty"`
	Building    *string   `db:"building" json:"building,omitempty"`
	Room        *string   `db:"room" json:"room,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Key returns the natural key identifying the exam.
func (e Exam) Key() ExamKey {
	return ExamKey{
		Campus:    e.Campus,
		Subject:   e.Subject,
		Course:    e.Course,
		Section:   e.Section,
		StartTime: e.StartTime,
	}
}

// ExamKey is the natural identity of an exam: text parts compare case-insensitively, the instant exactly.
type ExamKey struct {
	Campus    string
	Subject   string
	Course    string
	Section   string
	StartTime time.Time
}

// Normalized returns the comparable form used for in-memory lookups.
func (k ExamKey) Normalized() string {
	return strings.ToLower(k.Campus) + "|" +
		strings.ToLower(k.Subject) + "|" +
		strings.ToLower(k.Course) + "|" +
		strings.ToLower(k.Section) + "|" +
		k.StartTime.UTC().Format(time.RFC3339Nano)
}

// ExamFilter narrows exam listings. Empty fields are ignored.
type ExamFilter struct {
	Campus    string
	Subject   string
	Course    string
	Section   string
	Page      int
	PageSize  int
	SortOrder string
}

// CatalogFilter narrows distinct catalogue lookups.
type CatalogFilter struct {
	Campus  string
	Subject string
	Course  string
}
