package ingest

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidValue = errors.New("invalid value")
	ErrMissingValue = errors.New("missing value")
)

// dateLayouts are tried in order before falling back to format detection
var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"20060102",
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-1-2",
	"2006/1/2",
	"2006年1月2日",
	"2006年01月02日",
}

const (
	// MinYear and MaxYear bound the dates accepted from free form detection
	MinYear = 1000
	MaxYear = 9999
)

// fourDigitYear guards free form detection, which reads fragments like "1.5" or "12:30" as
// month/day pairs in year 0
var fourDigitYear = regexp.MustCompile(`\d{4}`)

// ParseDate coerces a cell into a calendar date at midnight UTC. Timestamps keep the date as
// written in their own offset.
func ParseDate(s string) (time.Time, error) {
	s = normalizeCell(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDate(t), nil
		}
	}

	if !fourDigitYear.MatchString(s) {
		return time.Time{}, ErrInvalidDate
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || t.Year() < MinYear || t.Year() > MaxYear {
		return time.Time{}, ErrInvalidDate
	}
	return truncateDate(t), nil
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var missingTokens = map[string]struct{}{
	"":     {},
	"-":    {},
	"--":   {},
	"nan":  {},
	"null": {},
	"none": {},
	"na":   {},
	"n/a":  {},
	"#n/a": {},
}

var valueReplacer = strings.NewReplacer(
	",", "",
	"_", "",
	" ", "",
	"−", "-",
	"$", "",
	"¥", "",
	"€", "",
	"£", "",
	"円", "",
)

// ParseValue coerces a cell into a finite real number. Thousands separators, currency symbols
// and a trailing percent sign are ignored and accounting style parentheses are negative.
func ParseValue(s string) (float64, error) {
	s = normalizeCell(s)
	if _, missing := missingTokens[strings.ToLower(s)]; missing {
		return 0, ErrMissingValue
	}

	s = valueReplacer.Replace(s)
	s = strings.TrimSuffix(s, "%")

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidValue
	}
	if negative {
		d = d.Neg()
	}

	v, _ := d.Float64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrInvalidValue
	}
	return v, nil
}
