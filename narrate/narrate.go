// Package narrate turns the statistical snapshot of a series and its forecast into scripted
// narrative beats, explanations and a markdown report.
package narrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/aouyang1/go-forecast-narrator/analyze"
	"github.com/aouyang1/go-forecast-narrator/profile"
	"github.com/aouyang1/go-forecast-narrator/summary"
	"golang.org/x/text/message"
)

const (
	// SymmetricDistributionRatio bounds |mean - median| / max(mean, 1) for a symmetric distribution
	SymmetricDistributionRatio = 0.1

	// StableVariationMaxCV and ModerateVariationMaxCV bucket the coefficient of variation
	StableVariationMaxCV   = 0.15
	ModerateVariationMaxCV = 0.3

	// TrendDirectionThresholdPct is the 3 month change beyond which a trend is up or down
	TrendDirectionThresholdPct = 2.0

	DefaultWriterTimeout = 60 * time.Second
)

var ErrUnknownLocale = errors.New("unknown locale")

// ReportWriter produces a markdown report from a prompt. Implementations call out to a text
// generation service.
type ReportWriter interface {
	WriteReport(ctx context.Context, prompt string) (string, error)
}

type Options struct {
	Locale string `json:"locale"`
	// Writer is optional. When nil the report is rendered from the built in template.
	Writer        ReportWriter  `json:"-"`
	WriterTimeout time.Duration `json:"writer_timeout"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Locale:        LocaleJapanese,
		WriterTimeout: DefaultWriterTimeout,
	}
}

func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	if _, exists := locales[o.Locale]; !exists {
		return fmt.Errorf("%q, %w", o.Locale, ErrUnknownLocale)
	}
	return nil
}

// Snapshot is everything the narrator reads. Fallback marks a forecast produced by the simple
// linear extrapolation instead of the model.
type Snapshot struct {
	Profile     profile.Profile
	Seasonality analyze.Seasonality
	Trend       analyze.Trend
	Summary     summary.Summary
	Fallback    bool
}

type Beat struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Highlight []string `json:"highlight"`
	WaitMs    int      `json:"waitMs"`
}

type Explanations struct {
	Business  string `json:"business"`
	Technical string `json:"technical"`
}

type Narrative struct {
	Explanations Explanations
	Beats        []Beat
	Targets      map[string][]string
	SummaryText  string
	Report       string
}

// Narrator renders narratives in a single locale. It keeps no state between calls.
type Narrator struct {
	opt *Options
}

// New returns a narrator. Nil options use the Japanese locale without a report writer.
func New(opt *Options) (*Narrator, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	o := *opt
	if o.WriterTimeout <= 0 {
		o.WriterTimeout = DefaultWriterTimeout
	}
	return &Narrator{opt: &o}, nil
}

// Narrate renders every text of the response. A configured report writer replaces the template
// report and the technical explanation; if it fails the template is kept and a warning returned.
func (n *Narrator) Narrate(ctx context.Context, snap Snapshot) (Narrative, []string) {
	p := newPrinter(n.opt.Locale)
	var warnings []string

	nar := Narrative{
		Explanations: Explanations{
			Business:  business(p, snap),
			Technical: technical(p, snap),
		},
		Beats:       beats(p, snap),
		Targets:     Targets(),
		SummaryText: summaryText(p, snap),
		Report:      templateReport(p, snap),
	}

	if n.opt.Writer == nil {
		return nar, warnings
	}

	writerCtx, cancel := context.WithTimeout(ctx, n.opt.WriterTimeout)
	defer cancel()

	text, err := n.opt.Writer.WriteReport(writerCtx, Prompt(n.opt.Locale, snap))
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty report")
	}
	if err != nil {
		slog.Warn("unable to write report, falling back to template", "error", err.Error())
		warnings = append(warnings, p.Sprintf("warning.writer"))
		return nar, warnings
	}

	nar.Report = text
	nar.Explanations.Technical = text
	return nar, warnings
}

func business(p *message.Printer, snap Snapshot) string {
	pr := snap.Profile
	fs := snap.Summary
	paragraphs := []string{
		p.Sprintf("business.overview", pr.DateMin, pr.DateMax, count(p, pr.Rows)),
		p.Sprintf("business.stats",
			number(p, pr.Mean, 2), number(p, pr.Median, 2), number(p, pr.Min, 2), number(p, pr.Max, 2),
			number(p, pr.Std, 2), number(p, orZero(pr.CV), 2),
		),
		p.Sprintf("business.quality", count(p, pr.Missing), count(p, pr.Duplicates), count(p, pr.Outliers)),
		p.Sprintf("business.seasonality",
			label(p, snap.Seasonality.WeeklyStrength), number(p, orZero(snap.Seasonality.WeekendDeltaPct), 1),
		),
		p.Sprintf("business.trend", number(p, snap.Trend.Slope30d, 4), number(p, orZero(snap.Trend.Delta3moPct), 1)),
		p.Sprintf("business.forecast",
			number(p, fs.P50_5, 2), number(p, fs.Lo5, 2), number(p, fs.Up5, 2),
			number(p, fs.P50_30, 2), number(p, fs.Lo30, 2), number(p, fs.Up30, 2),
			number(p, orZero(fs.Delta30Pct), 1),
		),
		p.Sprintf("business.confidence", label(p, fs.Confidence), number(p, orZero(fs.BandRatio), 3)),
	}
	return strings.Join(paragraphs, "\n\n")
}

func technical(p *message.Printer, snap Snapshot) string {
	pr := snap.Profile
	fs := snap.Summary
	lines := []string{
		p.Sprintf("technical.stats",
			number(p, pr.Mean, 3), number(p, pr.Median, 3), number(p, pr.Std, 3), optional(p, pr.CV, 3),
		),
		p.Sprintf("technical.seasonality",
			optional(p, snap.Seasonality.Acf7, 3), optional(p, snap.Seasonality.WeekendDeltaPct, 2),
		),
		p.Sprintf("technical.trend",
			number(p, snap.Trend.Slope30d, 6), optional(p, snap.Trend.Delta3moPct, 3), count(p, len(snap.Trend.Changepoints)),
		),
		p.Sprintf("technical.forecast",
			number(p, fs.P50_5, 4), number(p, fs.P50_30, 4), optional(p, fs.BandRatio, 4), fs.Confidence,
		),
	}
	return strings.Join(lines, "\n\n")
}

func summaryText(p *message.Printer, snap Snapshot) string {
	delta := "-"
	if snap.Summary.Delta30Pct != nil {
		delta = signed(p, *snap.Summary.Delta30Pct, 1)
	}
	if snap.Fallback {
		return p.Sprintf("summary.fallback", delta)
	}
	return p.Sprintf("summary.model", delta)
}

func distributionComment(p *message.Printer, pr profile.Profile) string {
	if math.Abs(pr.Mean-pr.Median)/math.Max(pr.Mean, 1) < SymmetricDistributionRatio {
		return p.Sprintf("distribution.symmetric")
	}
	return p.Sprintf("distribution.skewed")
}

func variationLevel(p *message.Printer, cv float64) string {
	switch {
	case cv < StableVariationMaxCV:
		return p.Sprintf("variation.stable")
	case cv < ModerateVariationMaxCV:
		return p.Sprintf("variation.moderate")
	default:
		return p.Sprintf("variation.high")
	}
}

func seasonalityComment(p *message.Printer, s analyze.Seasonality) string {
	weekend := orZero(s.WeekendDeltaPct)
	switch s.WeeklyStrength {
	case analyze.StrengthStrong:
		return p.Sprintf("seasonality.strong", number(p, math.Abs(weekend), 1))
	case analyze.StrengthMedium:
		return p.Sprintf("seasonality.medium", signed(p, weekend, 1))
	default:
		return p.Sprintf("seasonality.limited")
	}
}

func trendDirection(p *message.Printer, delta3mo float64) string {
	switch {
	case delta3mo > TrendDirectionThresholdPct:
		return p.Sprintf("trend.up")
	case delta3mo < -TrendDirectionThresholdPct:
		return p.Sprintf("trend.down")
	default:
		return p.Sprintf("trend.flat")
	}
}

func predictionReliability(p *message.Printer, confidence string) string {
	switch confidence {
	case summary.ConfidenceHigh:
		return p.Sprintf("reliability.high")
	case summary.ConfidenceMedium:
		return p.Sprintf("reliability.medium")
	default:
		return p.Sprintf("reliability.limited")
	}
}
