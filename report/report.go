// Package report runs the forecast report pipeline: profile, analyze, forecast, summarize and
// narrate a cleaned series into a single response.
package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	forecaster "github.com/aouyang1/go-forecast-narrator"
	"github.com/aouyang1/go-forecast-narrator/analyze"
	"github.com/aouyang1/go-forecast-narrator/ingest"
	"github.com/aouyang1/go-forecast-narrator/narrate"
	"github.com/aouyang1/go-forecast-narrator/profile"
	"github.com/aouyang1/go-forecast-narrator/summary"
	"github.com/aouyang1/go-forecast-narrator/timedataset"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// responseVersion is part of every fingerprint. Bump it when the response layout changes.
const responseVersion = 1

const (
	DefaultHorizonDays = 30
	MaxHorizonDays     = 3650

	tracerName = "github.com/aouyang1/go-forecast-narrator/report"
)

var (
	ErrInvalidHorizon   = errors.New("horizon must be between 1 and 3650 days")
	ErrInsufficientData = errors.New("at least 2 observations are required to forecast")
	ErrForecastLibrary  = errors.New("forecast model failed")
)

const (
	warnShortHistory = "データ量が少ないため、予測期間の短縮を推奨します。"
	warnFallback     = "予測モデルを適用できないため、簡易予測（移動平均/線形外挿）にフォールバックしました。理由: %s"
	warnNotDaily     = "観測間隔が日次ではありません（推定間隔: %.0f日）。予測は日次で出力されます。"
)

// Options configures every stage of the pipeline. Nil fields use the stage defaults.
type Options struct {
	Forecast *forecaster.Options
	Analyze  *analyze.Options
	Narrate  *narrate.Options

	OutlierMethod    string
	OutlierThreshold float64
}

func NewDefaultOptions() *Options {
	return &Options{
		Forecast:      forecaster.NewDefaultOptions(),
		Analyze:       analyze.NewDefaultOptions(),
		Narrate:       narrate.NewDefaultOptions(),
		OutlierMethod: ingest.OutlierMethodIQR,
	}
}

// Builder computes responses. It is safe for concurrent use since every call works on its own
// copies of the options and series.
type Builder struct {
	opt         *Options
	analyzer    *analyze.Analyzer
	narrator    *narrate.Narrator
	tracer      trace.Tracer
	fingerprint string
}

func New(opt *Options) (*Builder, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	o := *opt
	if o.Forecast == nil {
		o.Forecast = forecaster.NewDefaultOptions()
	}
	if err := o.Forecast.Validate(); err != nil {
		return nil, fmt.Errorf("unable to validate forecast options, %w", err)
	}
	o.Forecast = o.Forecast.Copy()
	if o.Analyze == nil {
		o.Analyze = analyze.NewDefaultOptions()
	}
	if o.Narrate == nil {
		o.Narrate = narrate.NewDefaultOptions()
	}

	if err := o.Analyze.Validate(); err != nil {
		return nil, fmt.Errorf("unable to validate analyze options, %w", err)
	}
	narrator, err := narrate.New(o.Narrate)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize narrator, %w", err)
	}

	if err := ingest.ValidateOutlierOptions(o.OutlierMethod, o.OutlierThreshold); err != nil {
		return nil, fmt.Errorf("unable to validate ingest options, %w", err)
	}

	fp, err := fingerprint(&o)
	if err != nil {
		return nil, fmt.Errorf("unable to fingerprint options, %w", err)
	}

	return &Builder{
		opt:         &o,
		analyzer:    analyze.New(o.Analyze),
		narrator:    narrator,
		tracer:      otel.Tracer(tracerName),
		fingerprint: fp,
	}, nil
}

func fingerprint(o *Options) (string, error) {
	b, err := json.Marshal(struct {
		Version          int                 `json:"version"`
		Forecast         *forecaster.Options `json:"forecast"`
		Analyze          *analyze.Options    `json:"analyze"`
		Narrate          *narrate.Options    `json:"narrate"`
		Writer           bool                `json:"writer"`
		OutlierMethod    string              `json:"outlier_method"`
		OutlierThreshold float64             `json:"outlier_threshold"`
	}{
		Version:          responseVersion,
		Forecast:         o.Forecast,
		Analyze:          o.Analyze,
		Narrate:          o.Narrate,
		Writer:           o.Narrate.Writer != nil,
		OutlierMethod:    o.OutlierMethod,
		OutlierThreshold: o.OutlierThreshold,
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Run ingests the tabular bytes and computes the response
func (b *Builder) Run(ctx context.Context, r io.Reader, dateCol, valueCol string, horizon int) (*Response, error) {
	if err := validateHorizon(horizon); err != nil {
		return nil, err
	}

	ctx, span := b.tracer.Start(ctx, "report.ingest")
	res, err := ingest.Read(r, &ingest.Options{
		DateColumn:       dateCol,
		ValueColumn:      valueCol,
		OutlierMethod:    b.opt.OutlierMethod,
		OutlierThreshold: b.opt.OutlierThreshold,
	})
	if err != nil {
		endSpan(span, err)
		return nil, fmt.Errorf("unable to ingest series, %w", err)
	}
	span.SetAttributes(
		attribute.Int("rows", res.Series.Len()),
		attribute.Int("missing", res.Diagnostics.Missing),
		attribute.Int("deduped", res.Diagnostics.Deduped),
	)
	endSpan(span, nil)

	return b.Compute(ctx, res.Series, res.Diagnostics, horizon)
}

// Compute runs every stage on a cleaned series. The response is either complete or an error
// wrapping one of ErrInvalidHorizon, ErrInsufficientData or ErrForecastLibrary is returned.
func (b *Builder) Compute(ctx context.Context, td *timedataset.TimeDataset, diag ingest.Diagnostics, horizon int) (resp *Response, err error) {
	ctx, span := b.tracer.Start(ctx, "report.compute",
		trace.WithAttributes(attribute.Int("horizon_days", horizon)),
	)
	defer func() { endSpan(span, err) }()

	if err := validateHorizon(horizon); err != nil {
		return nil, err
	}
	if td == nil || td.Len() < 2 {
		return nil, ErrInsufficientData
	}
	td = td.Copy()
	n := td.Len()
	span.SetAttributes(attribute.Int("rows", n))

	warnings := []string{}

	_, stageSpan := b.tracer.Start(ctx, "report.profile")
	prof := profile.Compute(td, diag)
	stageSpan.End()

	_, stageSpan = b.tracer.Start(ctx, "report.analyze")
	analysis, analyzeWarnings := b.analyzer.Analyze(td)
	warnings = append(warnings, analyzeWarnings...)
	stageSpan.End()

	if n < 2*horizon {
		warnings = append(warnings, warnShortHistory)
	}
	if freq, err := timedataset.TimeSlice(td.T).EstimateFreq(); err == nil && freq != 24*time.Hour {
		warnings = append(warnings, fmt.Sprintf(warnNotDaily, freq.Hours()/24))
	}

	fcCtx, stageSpan := b.tracer.Start(ctx, "report.forecast")
	fc, err := b.forecast(fcCtx, td, horizon)
	endSpan(stageSpan, err)
	if err != nil {
		return nil, err
	}
	if fc.reason != "" {
		warnings = append(warnings, fmt.Sprintf(warnFallback, fc.reason))
	}

	points := fc.results.Points()
	_, lastY := td.Last()
	fsum, summaryWarnings := summary.Summarize(points, lastY)
	warnings = append(warnings, summaryWarnings...)

	narrCtx, stageSpan := b.tracer.Start(ctx, "report.narrate")
	nar, narrateWarnings := b.narrator.Narrate(narrCtx, narrate.Snapshot{
		Profile:     prof,
		Seasonality: analysis.Seasonality,
		Trend:       analysis.Trend,
		Summary:     fsum,
		Fallback:    fc.fitted == nil,
	})
	warnings = append(warnings, narrateWarnings...)
	stageSpan.End()

	history := make([]HistoryPoint, n)
	for i := range history {
		history[i] = HistoryPoint{Ds: td.T[i].Format(time.DateOnly), Y: td.Y[i]}
	}

	return &Response{
		History:         history,
		Forecast:        points,
		Profile:         prof,
		Seasonality:     analysis.Seasonality,
		Trend:           analysis.Trend,
		ForecastSummary: fsum,
		Explanations:    nar.Explanations,
		NarrativeScript: nar.Beats,
		Targets:         nar.Targets,
		SummaryText:     nar.SummaryText,
		Report:          nar.Report,
		Model:           fc.model,
		Warnings:        warnings,
		Diagnostics:     diag,
		fitted:          fc.fitted,
	}, nil
}

type forecastResult struct {
	results *forecaster.Results
	model   ModelInfo
	fitted  *forecaster.Forecaster
	// reason is set when the linear fallback was used
	reason string
}

func (b *Builder) forecast(ctx context.Context, td *timedataset.TimeDataset, horizon int) (forecastResult, error) {
	n := td.Len()
	if minPoints := max(MinModelPoints, horizon); n < minPoints {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("method", MethodFallback))
		res, scores, err := linearFallback(td, horizon)
		if err != nil {
			return forecastResult{}, fmt.Errorf("%v, %w", err, ErrForecastLibrary)
		}
		return forecastResult{
			results: res,
			model:   newModelInfo(MethodFallback, scores, ""),
			reason:  fmt.Sprintf("観測数 %d 件が必要数 %d 件に満たないため", n, minPoints),
		}, nil
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("method", MethodModel))
	f, err := forecaster.New(b.opt.Forecast)
	if err != nil {
		return forecastResult{}, fmt.Errorf("unable to initialize forecaster, %v, %w", err, ErrForecastLibrary)
	}
	if err := f.Fit(td.T, td.Y); err != nil {
		return forecastResult{}, fmt.Errorf("unable to fit forecaster, %v, %w", err, ErrForecastLibrary)
	}
	lastT, _ := td.Last()
	res, err := f.Predict(timedataset.DailyHorizon(lastT, horizon))
	if err != nil {
		return forecastResult{}, fmt.Errorf("unable to predict horizon, %v, %w", err, ErrForecastLibrary)
	}
	if err := checkFinite(res); err != nil {
		return forecastResult{}, err
	}

	eq, err := f.SeriesModelEq()
	if err != nil {
		eq = ""
	}
	return forecastResult{
		results: res,
		model:   newModelInfo(MethodModel, f.Scores(), eq),
		fitted:  f,
	}, nil
}

func checkFinite(res *forecaster.Results) error {
	for i := 0; i < res.Len(); i++ {
		for _, v := range []float64{res.Forecast[i], res.Lower[i], res.Upper[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("non finite prediction at %s, %w", res.T[i].Format(time.DateOnly), ErrForecastLibrary)
			}
		}
	}
	return nil
}

func validateHorizon(horizon int) error {
	if horizon <= 0 || horizon > MaxHorizonDays {
		return fmt.Errorf("got %d, %w", horizon, ErrInvalidHorizon)
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Fingerprint identifies every option that shapes a response. Builders with equal options share
// a fingerprint.
func (b *Builder) Fingerprint() string {
	return b.fingerprint
}
