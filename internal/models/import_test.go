package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }

func TestDiffExamNoChange(t *testing.T) {
	stored := Exam{DurationMin: intPtr(150), Building: strPtr("SRC"), Room: nil}
	row := ParsedExamRow{DurationMin: intPtr(150), Building: strPtr("SRC")}

	diff := DiffExam(stored, row)
	assert.True(t, diff.Empty())
	assert.Empty(t, diff.Changed())
}

func TestDiffExamApply(t *testing.T) {
	stored := Exam{DurationMin: intPtr(120), Building: strPtr("SRC"), Room: strPtr("A")}
	row := ParsedExamRow{DurationMin: intPtr(150), Building: strPtr("SRC"), Room: nil}

	diff := DiffExam(stored, row)
	assert.False(t, diff.Empty())
	assert.Equal(t, []string{"duration_min", "room"}, diff.Changed())

	diff.Apply(&stored)
	assert.Equal(t, 150, *stored.DurationMin)
	assert.Equal(t, "SRC", *stored.Building)
	assert.Nil(t, stored.Room)

	*row.DurationMin = 10
	assert.Equal(t, 150, *stored.DurationMin)
}

func TestExamKeyNormalizedIgnoresCaseAndZone(t *testing.T) {
	loc, err := time.LoadLocation("America/Vancouver")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	start := time.Date(2025, 12, 15, 9, 0, 0, 0, loc)
	a := ExamKey{Campus: "V", Subject: "CPSC", Course: "221", Section: "101", StartTime: start}
	b := ExamKey{Campus: "v", Subject: "cpsc", Course: "221", Section: "101", StartTime: start.UTC()}
	c := b
	c.StartTime = start.Add(time.Minute)

	assert.Equal(t, a.Normalized(), b.Normalized())
	assert.NotEqual(t, a.Normalized(), c.Normalized())
}
