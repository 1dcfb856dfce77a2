package importer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// RowFilter restricts extraction to one subject and/or course. Empty fields match everything.
type RowFilter struct {
	Subject string
	Course  string
}

func (f RowFilter) matches(subject, course string) bool {
	if strings.TrimSpace(f.Subject) != "" && !EqualFold(subject, f.Subject) {
		return false
	}
	if strings.TrimSpace(f.Course) != "" && !EqualFold(course, f.Course) {
		return false
	}
	return true
}

// ExtractRows walks the body rows of a mapped table in document order.
// Rows without data cells, without a subject or without a section are dropped silently.
// A row whose date or time cannot be parsed is kept with a nil StartTime.
func ExtractRows(t *Table, filter RowFilter, parser *Parser) []models.ParsedExamRow {
	out := make([]models.ParsedExamRow, 0)

	ownRows(t.Selection).Each(func(_ int, tr *goquery.Selection) {
		if t.headerRow != nil && tr.Get(0) == t.headerRow {
			return
		}
		if tr.Closest("thead").Length() > 0 {
			return
		}
		cells := tr.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return
		}

		cell := func(role Role) string {
			idx, ok := t.Columns.Index(role)
			if !ok || idx >= cells.Length() {
				return ""
			}
			return Normalize(cells.Eq(idx).Text())
		}

		fields := strings.Fields(cell(RoleCourse))
		section := cell(RoleSection)
		if len(fields) == 0 || section == "" {
			return
		}
		subject := fields[0]
		course := ""
		if len(fields) > 1 {
			course = fields[1]
		}
		if !filter.matches(subject, course) {
			return
		}

		out = append(out, buildRow(parser, subject, course, section,
			cell(RoleDate), cell(RoleTime), cell(RoleDuration), cell(RoleBuilding), cell(RoleRoom)))
	})

	return out
}

func buildRow(parser *Parser, subject, course, section, date, clock, duration, building, room string) models.ParsedExamRow {
	row := models.ParsedExamRow{
		Subject:     subject,
		Course:      course,
		Section:     section,
		DurationMin: parser.Duration(duration, clock),
		Building:    optional(building),
		Room:        optional(room),
	}
	if start, err := parser.Instant(date, clock); err == nil {
		row.StartTime = &start
	}
	return row
}
