package export

import (
	"bytes"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	icsTimeLayout  = "20060102T150405Z"
	icsLineLimit   = 75
	icsLineEnding  = "\r\n"
	defaultProduct = "-//Exam Planner//Exams//EN"
)

// CalendarEvent is one VEVENT. Empty Location and Description are omitted from the output.
type CalendarEvent struct {
	UID         string
	Stamp       time.Time
	Start       time.Time
	End         time.Time
	Summary     string
	Location    string
	Description string
}

// ICSExporter renders RFC 5545 calendars.
type ICSExporter struct {
	productID string
}

// NewICSExporter constructs an exporter that stamps documents with productID.
func NewICSExporter(productID string) *ICSExporter {
	if strings.TrimSpace(productID) == "" {
		productID = defaultProduct
	}
	return &ICSExporter{productID: productID}
}

// Render writes a VCALENDAR with one VEVENT per event. An empty slice yields a valid empty calendar.
func (e *ICSExporter) Render(events []CalendarEvent) []byte {
	buf := &bytes.Buffer{}
	write := func(line string) {
		buf.WriteString(foldLine(line))
		buf.WriteString(icsLineEnding)
	}

	write("BEGIN:VCALENDAR")
	write("VERSION:2.0")
	write("PRODID:" + e.productID)
	write("CALSCALE:GREGORIAN")
	write("METHOD:PUBLISH")

	for _, ev := range events {
		stamp := ev.Stamp
		if stamp.IsZero() {
			stamp = ev.Start
		}
		write("BEGIN:VEVENT")
		write("UID:" + ev.UID)
		write("DTSTAMP:" + FormatUTC(stamp))
		write("DTSTART:" + FormatUTC(ev.Start))
		write("DTEND:" + FormatUTC(ev.End))
		write("SUMMARY:" + EscapeText(ev.Summary))
		if ev.Location != "" {
			write("LOCATION:" + EscapeText(ev.Location))
		}
		if ev.Description != "" {
			write("DESCRIPTION:" + EscapeText(ev.Description))
		}
		write("END:VEVENT")
	}

	write("END:VCALENDAR")
	return buf.Bytes()
}

// FormatUTC renders an instant as an ICS UTC date-time.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(icsTimeLayout)
}

// EscapeText escapes an ICS TEXT value. Backslashes go first so later escapes are not doubled.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// UnescapeText reverses EscapeText.
func UnescapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// UnfoldLines joins folded content lines and splits the document on CRLF.
func UnfoldLines(doc string) []string {
	doc = strings.ReplaceAll(doc, icsLineEnding+" ", "")
	doc = strings.TrimSuffix(doc, icsLineEnding)
	if doc == "" {
		return nil
	}
	return strings.Split(doc, icsLineEnding)
}

// foldLine splits a content line into chunks of at most 75 octets without breaking UTF-8 sequences.
// Continuation chunks start with a single space which counts toward their limit.
func foldLine(line string) string {
	if len(line) <= icsLineLimit {
		return line
	}
	var b strings.Builder
	limit := icsLineLimit
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString(icsLineEnding)
		b.WriteByte(' ')
		line = line[cut:]
		limit = icsLineLimit - 1
	}
	b.WriteString(line)
	return b.String()
}
