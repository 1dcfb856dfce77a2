package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// DefaultDurationMinutes is assumed when a row has a start time but no usable duration.
const DefaultDurationMinutes = 120

var (
	ErrMissingDate      = errors.New("missing exam date")
	ErrMissingTime      = errors.New("missing exam time")
	ErrUnrecognisedDate = errors.New("unrecognised exam date")
	ErrUnrecognisedTime = errors.New("unrecognised exam time")
)

// dateLayouts are tried in order; the first successful parse wins.
var dateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
	"Mon, January 2, 2006",
	"Monday, Jan 2, 2006",
}

// timeLayouts apply to text upper-cased with spaces and dots removed.
var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04PM",
	"3PM",
}

var (
	compoundDuration = regexp.MustCompile(`^(\d+)h(?:ours?|rs?)?(?:(\d+)(?:m|mins?|minutes?)?)?$`)
	clockDuration    = regexp.MustCompile(`^(\d+):([0-5]\d)$`)
	minuteDuration   = regexp.MustCompile(`^(\d+)(?:m|mins?|minutes?)?$`)
)

// Parser turns schedule text into instants in a fixed time zone.
type Parser struct {
	loc *time.Location
}

// NewParser builds a parser for the named IANA zone.
func NewParser(zone string) (*Parser, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", zone, err)
	}
	return &Parser{loc: loc}, nil
}

// NewParserInLocation builds a parser for an already loaded zone.
func NewParserInLocation(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// Location returns the zone local wall-clock values are interpreted in.
func (p *Parser) Location() *time.Location {
	return p.loc
}

// Instant combines a date and a start time into one instant. The zone offset is the one in
// effect for that local date, so daylight saving transitions are honoured.
func (p *Parser) Instant(dateText, timeText string) (time.Time, error) {
	date, err := parseDate(dateText)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := parseClock(timeText)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, p.loc), nil
}

func parseDate(text string) (time.Time, error) {
	text = Normalize(text)
	if text == "" {
		return time.Time{}, ErrMissingDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognisedDate, text)
}

func parseClock(text string) (time.Time, error) {
	text = Normalize(text)
	if text == "" {
		return time.Time{}, ErrMissingTime
	}
	if i := strings.IndexAny(text, "-\u2013"); i >= 0 {
		text = text[:i]
	}
	compact := strings.ToUpper(stripSeparators(text))
	if compact == "" {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognisedTime, text)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, compact); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognisedTime, text)
}

// Duration returns the exam length in minutes. Unparseable duration text counts as absent:
// with a start time present the default applies, otherwise the result is nil.
func (p *Parser) Duration(durationText, timeText string) *int {
	if minutes, ok := parseMinutes(durationText); ok {
		return &minutes
	}
	if Normalize(timeText) != "" {
		minutes := DefaultDurationMinutes
		return &minutes
	}
	return nil
}

func parseMinutes(text string) (int, bool) {
	compact := strings.ToLower(stripSeparators(Normalize(text)))
	if compact == "" {
		return 0, false
	}
	if m := compoundDuration.FindStringSubmatch(compact); m != nil {
		return hoursAndMinutes(m[1], m[2])
	}
	if m := clockDuration.FindStringSubmatch(compact); m != nil {
		return hoursAndMinutes(m[1], m[2])
	}
	if m := minuteDuration.FindStringSubmatch(compact); m != nil {
		return hoursAndMinutes("0", m[1])
	}
	return 0, false
}

// maxDurationMinutes bounds parsed durations so the hour arithmetic cannot overflow.
const maxDurationMinutes = 7 * 24 * 60

func hoursAndMinutes(hoursText, minutesText string) (int, bool) {
	hours, err := strconv.Atoi(hoursText)
	if err != nil || hours < 0 || hours > maxDurationMinutes/60 {
		return 0, false
	}
	minutes := 0
	if minutesText != "" {
		minutes, err = strconv.Atoi(minutesText)
		if err != nil || minutes < 0 || minutes > maxDurationMinutes {
			return 0, false
		}
	}
	total := hours*60 + minutes
	if total <= 0 || total > maxDurationMinutes {
		return 0, false
	}
	return total, true
}
