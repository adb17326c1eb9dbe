package normalizer

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnparseableDate is returned when no supported date encoding matches.
// Callers skip the row instead of guessing a default date.
var ErrUnparseableDate = errors.New("unparseable date")

const numericDateLayout = "02.01.2006"

// monthPrefixes maps the leading characters of Russian month names to their
// numeric value. Both known spellings of May are listed; matching tries longer
// prefixes first so that the four-character forms win over their three-character
// stems.
var monthPrefixes = []struct {
	prefix string
	month  time.Month
}{
	{"сент", time.September},
	{"янв", time.January},
	{"фев", time.February},
	{"мар", time.March},
	{"апр", time.April},
	{"мая", time.May},
	{"май", time.May},
	{"июн", time.June},
	{"июл", time.July},
	{"авг", time.August},
	{"сен", time.September},
	{"окт", time.October},
	{"ноя", time.November},
	{"дек", time.December},
}

// wordDateRe matches "5 дек. 2025", "05 мая, 2025" and similar forms: a day,
// a month word with optional trailing period and/or comma, a 4-digit year.
var wordDateRe = regexp.MustCompile(`(\d{1,2})\s+([а-яё]+)\.?,?\s+(\d{4})`)

// Date parses the textual date encodings used by the supported statement
// exports into a calendar date (midnight UTC, no time component).
//
// Tried in order: the segment before the first comma as DD.MM.YYYY, the same
// segment with a space-separated time suffix dropped ("05.12.2025 14:32"),
// then a "day, localized month abbreviation, year" pattern anywhere in the
// text. Invalid calendar triples such as the 31st of a 30-day month return
// ErrUnparseableDate.
func Date(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrUnparseableDate
	}

	head := s
	if idx := strings.IndexByte(head, ','); idx >= 0 {
		head = strings.TrimSpace(head[:idx])
	}
	if t, err := time.Parse(numericDateLayout, head); err == nil {
		return t, nil
	}
	if fields := strings.Fields(head); len(fields) > 1 {
		if t, err := time.Parse(numericDateLayout, fields[0]); err == nil {
			return t, nil
		}
	}

	m := wordDateRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return time.Time{}, ErrUnparseableDate
	}

	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	month, ok := resolveMonth(m[2])
	if !ok {
		return time.Time{}, ErrUnparseableDate
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month || t.Year() != year {
		// time.Date normalized an out-of-range day
		return time.Time{}, ErrUnparseableDate
	}
	return t, nil
}

// DateOnly strips the time component from an already-structured timestamp.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func resolveMonth(word string) (time.Month, bool) {
	for _, e := range monthPrefixes {
		if strings.HasPrefix(word, e.prefix) {
			return e.month, true
		}
	}
	return 0, false
}
