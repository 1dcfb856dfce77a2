package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVancouverParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser("America/Vancouver")
	require.NoError(t, err)
	return p
}

func TestInstantScenario(t *testing.T) {
	p := newVancouverParser(t)

	start, err := p.Instant("Dec 15, 2025", "9:00 AM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 15, 17, 0, 0, 0, time.UTC), start.UTC())

	duration := p.Duration("2h30", "9:00 AM")
	require.NotNil(t, duration)
	assert.Equal(t, 150, *duration)
}

func TestInstantTimeForms(t *testing.T) {
	p := newVancouverParser(t)

	cases := []struct {
		name string
		text string
		hour int
		min  int
	}{
		{name: "24 hour", text: "14:30", hour: 14, min: 30},
		{name: "24 hour seconds", text: "08:15:00", hour: 8, min: 15},
		{name: "12 hour", text: "9:00 AM", hour: 9, min: 0},
		{name: "12 hour no space", text: "2:30PM", hour: 14, min: 30},
		{name: "lower dotted", text: "2:30 p.m.", hour: 14, min: 30},
		{name: "no-break space", text: "9:00\u00a0AM", hour: 9, min: 0},
		{name: "narrow no-break space", text: "9:00\u202fAM", hour: 9, min: 0},
		{name: "figure space", text: "9:00\u2007PM", hour: 21, min: 0},
		{name: "word joiner", text: "9:00\u2060AM", hour: 9, min: 0},
		{name: "hour only", text: "3 PM", hour: 15, min: 0},
		{name: "noon", text: "12:00 PM", hour: 12, min: 0},
		{name: "midnight", text: "12:00 AM", hour: 0, min: 0},
		{name: "range", text: "9:00 AM - 12:00 PM", hour: 9, min: 0},
		{name: "en dash range", text: "19:00\u201321:30", hour: 19, min: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, err := p.Instant("Apr 20, 2026", tc.text)
			require.NoError(t, err)
			local := start.In(p.Location())
			assert.Equal(t, tc.hour, local.Hour())
			assert.Equal(t, tc.min, local.Minute())
		})
	}
}

func TestInstantDateForms(t *testing.T) {
	p := newVancouverParser(t)
	for _, text := range []string{
		"Dec 15, 2025",
		"December 15, 2025",
		"2025-12-15",
		"Mon, Dec 15, 2025",
		"Monday, December 15, 2025",
		"dec 15, 2025",
		"Dec 15,  2025",
	} {
		start, err := p.Instant(text, "9:00")
		require.NoError(t, err, text)
		y, m, d := start.In(p.Location()).Date()
		assert.Equal(t, 2025, y, text)
		assert.Equal(t, time.December, m, text)
		assert.Equal(t, 15, d, text)
	}
}

func TestInstantAppliesDaylightOffsetForDate(t *testing.T) {
	p := newVancouverParser(t)

	winter, err := p.Instant("Dec 15, 2025", "9:00")
	require.NoError(t, err)
	summer, err := p.Instant("Apr 20, 2026", "9:00")
	require.NoError(t, err)

	_, winterOffset := winter.Zone()
	_, summerOffset := summer.Zone()
	assert.Equal(t, -8*3600, winterOffset)
	assert.Equal(t, -7*3600, summerOffset)
	assert.Equal(t, 16, summer.UTC().Hour())
}

func TestInstantRoundTripsWallClock(t *testing.T) {
	p := newVancouverParser(t)
	for _, day := range []string{"2025-01-10", "2025-03-09", "2025-06-30", "2025-11-02", "2025-12-31"} {
		for _, clock := range []string{"08:30", "12:00", "19:45"} {
			start, err := p.Instant(day, clock)
			require.NoError(t, err)
			assert.Equal(t, day+" "+clock, start.In(p.Location()).Format("2006-01-02 15:04"))
		}
	}
}

func TestInstantErrors(t *testing.T) {
	p := newVancouverParser(t)

	_, err := p.Instant("", "9:00")
	assert.ErrorIs(t, err, ErrMissingDate)
	_, err = p.Instant("Dec 15, 2025", "  ")
	assert.ErrorIs(t, err, ErrMissingTime)
	_, err = p.Instant("Dcm 15, 2025", "9:00")
	assert.ErrorIs(t, err, ErrUnrecognisedDate)
	_, err = p.Instant("15/12/2025", "9:00")
	assert.ErrorIs(t, err, ErrUnrecognisedDate)
	_, err = p.Instant("Dec 15, 2025", "TBA")
	assert.ErrorIs(t, err, ErrUnrecognisedTime)
	_, err = p.Instant("Dec 15, 2025", "25:00")
	assert.ErrorIs(t, err, ErrUnrecognisedTime)
}

func TestDuration(t *testing.T) {
	p := newVancouverParser(t)

	cases := []struct {
		name     string
		duration string
		clock    string
		want     *int
	}{
		{name: "compound", duration: "2h30", clock: "9:00", want: intPtr(150)},
		{name: "hours only", duration: "2h", clock: "9:00", want: intPtr(120)},
		{name: "spaced units", duration: "2 h 30 m", clock: "", want: intPtr(150)},
		{name: "long units", duration: "2hr 30min", clock: "", want: intPtr(150)},
		{name: "bare minutes", duration: "150", clock: "", want: intPtr(150)},
		{name: "minutes suffix", duration: "90 min", clock: "", want: intPtr(90)},
		{name: "clock form", duration: "2:30", clock: "", want: intPtr(150)},
		{name: "absent with time", duration: "", clock: "9:00 AM", want: intPtr(120)},
		{name: "unparseable with time", duration: "TBD", clock: "9:00 AM", want: intPtr(120)},
		{name: "both absent", duration: "", clock: "", want: nil},
		{name: "unparseable without time", duration: "TBD", clock: "", want: nil},
		{name: "oversized hours with time", duration: "99999999999999999999h", clock: "9:00 AM", want: intPtr(120)},
		{name: "oversized minutes without time", duration: "99999999999999999999", clock: "", want: nil},
		{name: "zero with time", duration: "0", clock: "9:00 AM", want: intPtr(120)},
		{name: "zero without time", duration: "0h", clock: "", want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.Duration(tc.duration, tc.clock)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}

func TestNewParserRejectsUnknownZone(t *testing.T) {
	_, err := NewParser("Mars/Olympus")
	assert.Error(t, err)
}

func intPtr(v int) *int { return &v }
