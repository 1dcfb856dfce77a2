package dto

import "time"

// CreateExamRequest captures POST /exams payload. StartTime is ISO-8601 with an offset.
type CreateExamRequest struct {
	Campus      string  `json:"campus" validate:"omitempty,campus"`
	Subject     string  `json:"subject" validate:"required,max=16"`
	Course      string  `json:"course" validate:"required,max=16"`
	Section     string  `json:"section" validate:"required,max=16"`
	StartTime   string  `json:"startTime" validate:"required"`
	DurationMin *int    `json:"durationMin,omitempty" validate:"omitempty,min=1,max=1440"`
	Building    *string `json:"building,omitempty" validate:"omitempty,max=64"`
	Room        *string `json:"room,omitempty" validate:"omitempty,max=64"`
}

// ExamListQuery holds GET /exams filters.
type ExamListQuery struct {
	Campus  string
	Subject string
	Course  string
}

// ExamSearchQuery holds GET /exams/search filters and paging.
type ExamSearchQuery struct {
	Campus  string
	Subject string
	Course  string
	Section string
	Page    int
	Size    int
	Sort    string
}

// CatalogQuery holds catalogue lookup filters.
type CatalogQuery struct {
	Campus  string
	Subject string
	Course  string
}

// ExamExportQuery selects exams for a CSV or PDF schedule download.
type ExamExportQuery struct {
	Format  string
	Campus  string
	Subject string
	Course  string
	Section string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// CalendarQuery selects exams for an ICS feed, either by explicit ids or by filter.
type CalendarQuery struct {
	IDs      []string `json:"ids,omitempty"`
	Campus   string   `json:"campus,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Course   string   `json:"course,omitempty"`
	Section  string   `json:"section,omitempty"`
	Filename string   `json:"filename,omitempty"`
}

// CalendarFile is a rendered calendar ready to download.
type CalendarFile struct {
	Filename string
	Events   int
	Body     []byte
}

// CalendarShareResponse is returned after storing a shared calendar.
type CalendarShareResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	Events    int       `json:"events"`
	ExpiresAt time.Time `json:"expiresAt"`
}
