package models

import "time"

// ImportSource identifies where an import read its schedule from.
type ImportSource string

const (
	ImportSourceLive   ImportSource = "live"
	ImportSourceStatic ImportSource = "static"
	ImportSourceUpload ImportSource = "upload"
	ImportSourceCSV    ImportSource = "csv"
)

// ParsedExamRow is one schedule row extracted from a document before reconciliation.
// A nil StartTime marks a row whose date or time could not be parsed.
type ParsedExamRow struct {
	Subject     string     `json:"subject"`
	Course      string     `json:"course"`
	Section     string     `json:"section"`
	StartTime   *time.Time `json:"start_time"`
	DurationMin *int       `json:"duration_min"`
	Building    *string    `json:"building"`
	Room        *string    `json:"room"`
}

// ImportSummary reports the outcome of one import run.
type ImportSummary struct {
	Inserted  int             `json:"inserted"`
	Updated   int             `json:"updated"`
	Skipped   int             `json:"skipped"`
	Malformed int             `json:"malformed"`
	Samples   []ParsedExamRow `json:"samples"`
	DryRun    bool            `json:"dry_run"`
	Source    ImportSource    `json:"source"`
	Campus    string          `json:"campus"`
}

// MaxImportSamples caps ImportSummary.Samples.
const MaxImportSamples = 3

// ExamDiff lists the mutable fields that differ between a stored exam and an incoming row.
type ExamDiff struct {
	DurationMin *int
	Building    *string
	Room        *string

	durationChanged bool
	buildingChanged bool
	roomChanged     bool
}

// DiffExam compares the mutable fields of a stored exam with a parsed row.
func DiffExam(stored Exam, row ParsedExamRow) ExamDiff {
	var d ExamDiff
	if !equalInt(stored.DurationMin, row.DurationMin) {
		d.durationChanged = true
		d.DurationMin = row.DurationMin
	}
	if !equalString(stored.Building, row.Building) {
		d.buildingChanged = true
		d.Building = row.Building
	}
	if !equalString(stored.Room, row.Room) {
		d.roomChanged = true
		d.Room = row.Room
	}
	return d
}

// Empty reports whether no field changed.
func (d ExamDiff) Empty() bool {
	return !d.durationChanged && !d.buildingChanged && !d.roomChanged
}

// Changed names the fields carried by the diff.
func (d ExamDiff) Changed() []string {
	fields := make([]string, 0, 3)
	if d.durationChanged {
		fields = append(fields, "duration_min")
	}
	if d.buildingChanged {
		fields = append(fields, "building")
	}
	if d.roomChanged {
		fields = append(fields, "room")
	}
	return fields
}

// Apply writes the changed fields onto the exam.
func (d ExamDiff) Apply(e *Exam) {
	if d.durationChanged {
		e.DurationMin = cloneInt(d.DurationMin)
	}
	if d.buildingChanged {
		e.Building = cloneString(d.Building)
	}
	if d.roomChanged {
		e.Room = cloneString(d.Room)
	}
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
