package options

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-forecast-narrator/feature"
	"github.com/aouyang1/go-forecast-narrator/forecast/util"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrStartAfterEnd         = errors.New("event start time is after end time")
	ErrUnsetTime             = errors.New("unset event start or end time")
	ErrNoEventName           = errors.New("no event name")
	ErrUnknownHolidayCountry = errors.New("unknown holiday country")
)

// Event represents a time span to model with its own bias.
type Event struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: start,
		End:   end,
	}
}

func (e *Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

// CountryHolidays returns the holiday calendar for a lower case ISO country code
func CountryHolidays(country string) ([]*cal.Holiday, error) {
	switch strings.ToLower(country) {
	case "jp":
		return jp.Holidays, nil
	case "us":
		return us.Holidays, nil
	}
	return nil, fmt.Errorf("%q, %w", country, ErrUnknownHolidayCountry)
}

// EventOptions lists explicit events and an optional country whose public holidays are each
// modeled as a recurring event.
type EventOptions struct {
	Events         []Event `json:"events"`
	HolidayCountry string  `json:"holiday_country"`
}

// GenerateFeatures returns one event mask per explicit event and one per holiday
func (e EventOptions) GenerateFeatures(t []time.Time) *feature.Set {
	eFeat := feature.NewSet()
	if len(t) == 0 {
		return eFeat
	}

	for _, ev := range e.Events {
		if err := ev.Valid(); err != nil {
			slog.Warn("not separately modelling invalid event", "name", ev.Name, "error", err.Error())
			continue
		}
		mask := make([]float64, len(t))
		for i, tPnt := range t {
			if !tPnt.Before(ev.Start) && tPnt.Before(ev.End) {
				mask[i] = 1.0
			}
		}
		eFeat.Set(feature.NewEvent(eventName(ev.Name)), mask)
	}

	if e.HolidayCountry == "" {
		return eFeat
	}
	hols, err := CountryHolidays(e.HolidayCountry)
	if err != nil {
		slog.Warn("not modelling holidays", "country", e.HolidayCountry, "error", err.Error())
		return eFeat
	}
	for _, hol := range hols {
		eFeat.Set(feature.NewEvent(eventName(hol.Name)), holidayMask(hol, t))
	}
	return eFeat
}

// holidayMask marks every time point that falls on the observed date of the holiday in any year
// covered by t
func holidayMask(hol *cal.Holiday, t []time.Time) []float64 {
	observed := make(map[string]struct{})
	startYear, endYear := t[0].Year(), t[len(t)-1].Year()
	for year := startYear; year <= endYear; year++ {
		_, obs := hol.Calc(year)
		if obs.IsZero() {
			continue
		}
		observed[obs.Format(time.DateOnly)] = struct{}{}
	}

	mask := make([]float64, len(t))
	for i, tPnt := range t {
		if _, exists := observed[tPnt.Format(time.DateOnly)]; exists {
			mask[i] = 1.0
		}
	}
	return mask
}

func eventName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

func (e EventOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	noCfg := " None"
	if len(e.Events) > 0 || e.HolidayCountry != "" {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sEvents:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	if e.HolidayCountry != "" {
		if _, err := fmt.Fprintf(w, "%s%sHolidays: %s\n", prefix, util.IndentExpand(indent, indentGrowth+1), e.HolidayCountry); err != nil {
			return err
		}
	}
	if len(e.Events) > 0 {
		if _, err := fmt.Fprintf(tbl, "%s%sName\tStart\tEnd\t\n", prefix, util.IndentExpand(indent, indentGrowth+1)); err != nil {
			return err
		}
	}
	for _, ev := range e.Events {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			ev.Name, ev.Start.Format(time.DateOnly), ev.End.Format(time.DateOnly)); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
