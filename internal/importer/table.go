package importer

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrTableNotFound means no table in the document looks like an exam schedule.
var ErrTableNotFound = errors.New("exam table not found")

// Role is a semantic column of an exam schedule table.
type Role string

const (
	RoleCourse   Role = "course"
	RoleSection  Role = "section"
	RoleDate     Role = "date"
	RoleTime     Role = "time"
	RoleBuilding Role = "building"
	RoleRoom     Role = "room"
	RoleDuration Role = "duration"
)

// headerRule assigns Role to the first header cell containing Keyword.
// Fallback rules run after every primary rule and only fill roles still unset.
type headerRule struct {
	Keyword  string
	Role     Role
	Fallback bool
}

// headerRules is evaluated in order; the order is the matching priority.
var headerRules = []headerRule{
	{Keyword: "course", Role: RoleCourse},
	{Keyword: "section", Role: RoleSection},
	{Keyword: "date", Role: RoleDate},
	{Keyword: "exam", Role: RoleDate, Fallback: true},
	{Keyword: "time", Role: RoleTime},
	{Keyword: "start", Role: RoleTime, Fallback: true},
	{Keyword: "building", Role: RoleBuilding},
	{Keyword: "room", Role: RoleRoom},
	{Keyword: "duration", Role: RoleDuration},
}

// ColumnMap maps roles to zero-based cell indexes within one table.
type ColumnMap map[Role]int

// Index returns the column for role.
func (m ColumnMap) Index(role Role) (int, bool) {
	idx, ok := m[role]
	return idx, ok
}

// Table is a located schedule table and its column layout.
type Table struct {
	Selection *goquery.Selection
	Columns   ColumnMap

	headerRow *html.Node
}

// LocateTable returns the first table whose own header cells mention course, section,
// exam or date, and time or start. Header cells of nested tables count only for the
// nested table.
func LocateTable(doc *goquery.Document) (*goquery.Selection, error) {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if qualifies(headerText(table)) {
			found = table
			return false
		}
		return true
	})
	if found == nil {
		return nil, ErrTableNotFound
	}
	return found, nil
}

func headerText(table *goquery.Selection) string {
	parts := make([]string, 0)
	ownRows(table).ChildrenFiltered("th").Each(func(_ int, th *goquery.Selection) {
		parts = append(parts, th.Text())
	})
	return Fold(strings.Join(parts, " "))
}

func qualifies(header string) bool {
	return strings.Contains(header, "course") &&
		strings.Contains(header, "section") &&
		(strings.Contains(header, "exam") || strings.Contains(header, "date")) &&
		(strings.Contains(header, "time") || strings.Contains(header, "start"))
}

// MapColumns reads the header of table. Cells under thead are used when present; otherwise
// the first row acts as a pseudo-header and is excluded from extraction.
func MapColumns(table *goquery.Selection) *Table {
	t := &Table{Selection: table}

	cells := ownRows(table.ChildrenFiltered("thead")).ChildrenFiltered("th")
	if cells.Length() == 0 {
		first := ownRows(table).First()
		if first.Length() > 0 {
			t.headerRow = first.Get(0)
			cells = first.ChildrenFiltered("th,td")
		}
	}

	labels := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		labels = append(labels, Fold(cell.Text()))
	})
	t.Columns = mapLabels(labels)
	return t
}

func mapLabels(labels []string) ColumnMap {
	columns := ColumnMap{}
	apply := func(fallback bool) {
		for _, rule := range headerRules {
			if rule.Fallback != fallback {
				continue
			}
			if _, set := columns[rule.Role]; set {
				continue
			}
			for i, label := range labels {
				if strings.Contains(label, rule.Keyword) {
					columns[rule.Role] = i
					break
				}
			}
		}
	}
	apply(false)
	apply(true)
	return columns
}

// ownRows returns the rows that belong to the given table, excluding rows of nested tables.
func ownRows(scope *goquery.Selection) *goquery.Selection {
	owner := scope
	if !scope.Is("table") {
		owner = scope.Closest("table")
	}
	if owner.Length() == 0 {
		return scope.Find("tr")
	}
	ownerNode := owner.Get(0)
	return scope.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		parent := tr.Closest("table")
		return parent.Length() > 0 && parent.Get(0) == ownerNode
	})
}
