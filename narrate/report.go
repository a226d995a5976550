package narrate

import (
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/message"
)

// templateReport renders the markdown report used when no report writer is configured or it fails
func templateReport(p *message.Printer, snap Snapshot) string {
	pr := snap.Profile
	fs := snap.Summary
	s := snap.Seasonality

	changes := p.Sprintf("report.trend.nochanges")
	if len(snap.Trend.Changepoints) > 0 {
		dates := make([]string, 0, len(snap.Trend.Changepoints))
		for _, cp := range snap.Trend.Changepoints {
			dates = append(dates, cp.Ds)
		}
		changes = strings.Join(dates, ", ")
	}

	sections := [][]string{
		{p.Sprintf("report.title")},
		{
			p.Sprintf("report.executive"),
			p.Sprintf("report.executive.body", pr.DateMin, pr.DateMax, count(p, pr.Rows)) + summaryText(p, snap),
		},
		{
			p.Sprintf("report.metrics"),
			strings.Join([]string{
				p.Sprintf("report.metrics.mean", number(p, pr.Mean, 2)),
				p.Sprintf("report.metrics.median", number(p, pr.Median, 2)),
				p.Sprintf("report.metrics.std", number(p, pr.Std, 2)),
				p.Sprintf("report.metrics.cv", optional(p, pr.CV, 3)),
				p.Sprintf("report.metrics.range", number(p, pr.Min, 2), number(p, pr.Max, 2)),
			}, "\n"),
		},
		{
			p.Sprintf("report.trend"),
			strings.Join([]string{
				p.Sprintf("report.trend.slope", number(p, snap.Trend.Slope30d, 4)),
				p.Sprintf("report.trend.delta", signed(p, orZero(snap.Trend.Delta3moPct), 1)),
				p.Sprintf("report.trend.weekly", label(p, s.WeeklyStrength), signed(p, orZero(s.WeekendDeltaPct), 1)),
				p.Sprintf("report.trend.changes", changes),
			}, "\n"),
		},
	}

	forecast := []string{
		p.Sprintf("report.forecast"),
		p.Sprintf("report.forecast.body", number(p, fs.P50_30, 2), signed(p, orZero(fs.Delta30Pct), 1)),
		p.Sprintf("report.forecast.conf", label(p, fs.Confidence)),
	}
	if snap.Fallback {
		forecast = append(forecast, p.Sprintf("report.forecast.simple"))
	}
	sections = append(sections, forecast)

	notes := []string{p.Sprintf("report.notes")}
	if pr.Outliers > 0 {
		notes = append(notes, p.Sprintf("report.notes.outliers", count(p, pr.Outliers)))
	}
	if pr.Missing > 0 || pr.Duplicates > 0 {
		notes = append(notes, p.Sprintf("report.notes.incomplete", count(p, pr.Missing), count(p, pr.Duplicates)))
	}
	notes = append(notes, p.Sprintf("report.notes.template"))
	sections = append(sections, notes)

	rendered := make([]string, 0, len(sections))
	for _, sec := range sections {
		rendered = append(rendered, strings.Join(sec, "\n\n"))
	}
	return strings.Join(rendered, "\n\n") + "\n"
}

// analysisContext is the figures handed to a report writer
type analysisContext struct {
	DataProfile struct {
		Rows      int      `json:"rows"`
		DateRange string   `json:"date_range"`
		Mean      float64  `json:"mean"`
		Median    float64  `json:"median"`
		Std       float64  `json:"std"`
		CV        *float64 `json:"cv"`
		Min       float64  `json:"min"`
		Max       float64  `json:"max"`
		Outliers  int      `json:"outliers"`
	} `json:"data_profile"`
	TrendAnalysis struct {
		Slope30d     float64  `json:"slope_30d"`
		Delta3moPct  *float64 `json:"delta_3mo_pct"`
		Changepoints int      `json:"changepoints"`
	} `json:"trend_analysis"`
	SeasonalityAnalysis struct {
		WeeklyStrength  string   `json:"weekly_strength"`
		WeekendDeltaPct *float64 `json:"weekend_delta_pct"`
		Acf7            *float64 `json:"acf7"`
	} `json:"seasonality_analysis"`
	ForecastResults struct {
		P50_5      float64  `json:"p50_5"`
		P50_30     float64  `json:"p50_30"`
		Delta30Pct *float64 `json:"delta_30_pct"`
		Confidence string   `json:"confidence"`
		BandRatio  *float64 `json:"band_ratio"`
		Simple     bool     `json:"simple_extrapolation"`
	} `json:"forecast_results"`
}

func newAnalysisContext(snap Snapshot) analysisContext {
	var c analysisContext
	c.DataProfile.Rows = snap.Profile.Rows
	c.DataProfile.DateRange = snap.Profile.DateMin + " ~ " + snap.Profile.DateMax
	c.DataProfile.Mean = snap.Profile.Mean
	c.DataProfile.Median = snap.Profile.Median
	c.DataProfile.Std = snap.Profile.Std
	c.DataProfile.CV = snap.Profile.CV
	c.DataProfile.Min = snap.Profile.Min
	c.DataProfile.Max = snap.Profile.Max
	c.DataProfile.Outliers = snap.Profile.Outliers

	c.TrendAnalysis.Slope30d = snap.Trend.Slope30d
	c.TrendAnalysis.Delta3moPct = snap.Trend.Delta3moPct
	c.TrendAnalysis.Changepoints = len(snap.Trend.Changepoints)

	c.SeasonalityAnalysis.WeeklyStrength = snap.Seasonality.WeeklyStrength
	c.SeasonalityAnalysis.WeekendDeltaPct = snap.Seasonality.WeekendDeltaPct
	c.SeasonalityAnalysis.Acf7 = snap.Seasonality.Acf7

	c.ForecastResults.P50_5 = snap.Summary.P50_5
	c.ForecastResults.P50_30 = snap.Summary.P50_30
	c.ForecastResults.Delta30Pct = snap.Summary.Delta30Pct
	c.ForecastResults.Confidence = snap.Summary.Confidence
	c.ForecastResults.BandRatio = snap.Summary.BandRatio
	c.ForecastResults.Simple = snap.Fallback
	return c
}

const promptJapanese = `あなたは時系列データ分析の専門家です。以下の分析結果を基に、ビジネス向けの詳細な分析レポートを日本語で作成してください。

# 分析データ概要
` + "```json\n%s\n```" + `

# レポート要件
- **マークダウン形式**で出力
- **2000-3000文字程度**の詳細なレポート
- **ビジネスパーソン向け**の実用的な内容
- 以下のセクションを含める：
  1. エグゼクティブサマリー
  2. データ特性分析
  3. トレンド・季節性分析
  4. 予測結果と信頼性評価
  5. ビジネスインプリケーション
  6. リスク要因と注意点
  7. 推奨アクション

# 分析の視点
- データの統計的特性を平易に解説
- ビジネス上の意味合いを重視
- 予測の不確実性とリスクを明記
- 具体的なアクションプランを提示
- 専門用語は分かりやすく説明

レポートを作成してください。
`

const promptEnglish = `You are an expert in time series analysis. Using the analysis results below, write a detailed business analysis report in English.

# Analysis data
` + "```json\n%s\n```" + `

# Report requirements
- Output **markdown**
- A detailed report of **roughly 500 to 800 words**
- Practical content for **business readers**
- Include these sections:
  1. Executive summary
  2. Data characteristics
  3. Trend and seasonality
  4. Forecast and reliability
  5. Business implications
  6. Risks and caveats
  7. Recommended actions

# Perspective
- Explain the statistics in plain language
- Focus on what the figures mean for the business
- State the forecast uncertainty and risks
- Propose concrete actions
- Explain technical terms

Write the report.
`

// Prompt builds the report writer instruction for the locale embedding the snapshot figures as
// JSON
func Prompt(locale string, snap Snapshot) string {
	body, err := json.MarshalIndent(newAnalysisContext(snap), "", "  ")
	if err != nil {
		body = []byte("{}")
	}
	tmpl := promptJapanese
	if locale == LocaleEnglish {
		tmpl = promptEnglish
	}
	return strings.Replace(tmpl, "%s", string(body), 1)
}
