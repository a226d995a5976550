package narrate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aouyang1/go-forecast-narrator/analyze"
	"github.com/aouyang1/go-forecast-narrator/profile"
	"github.com/aouyang1/go-forecast-narrator/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func constantSnapshot() Snapshot {
	return Snapshot{
		Profile: profile.Profile{
			Rows: 400, DateMin: "2024-01-01", DateMax: "2025-02-03",
			Mean: 100, Median: 100, Min: 100, Max: 100, Std: 0, CV: ptr(0),
		},
		Seasonality: analyze.Seasonality{WeeklyStrength: analyze.StrengthUnknown},
		Trend:       analyze.Trend{Slope30d: 0, Delta3moPct: ptr(0), Changepoints: []analyze.Changepoint{}},
		Summary: summary.Summary{
			P50_5: 100, Lo5: 100, Up5: 100, P50_30: 100, Lo30: 100, Up30: 100,
			Delta30Pct: ptr(0), BandRatio: ptr(0), Confidence: summary.ConfidenceHigh,
		},
	}
}

type fakeWriter struct {
	text   string
	err    error
	prompt string
}

func (w *fakeWriter) WriteReport(ctx context.Context, prompt string) (string, error) {
	w.prompt = prompt
	return w.text, w.err
}

func TestNew(t *testing.T) {
	testData := map[string]struct {
		opt *Options
		err error
	}{
		"nil":            {opt: nil},
		"english":        {opt: &Options{Locale: LocaleEnglish}},
		"unknown locale": {opt: &Options{Locale: "fr"}, err: ErrUnknownLocale},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			n, err := New(td.opt)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultWriterTimeout, n.opt.WriterTimeout)
		})
	}
}

func TestNarrateBeats(t *testing.T) {
	n, err := New(nil)
	require.NoError(t, err)

	nar, warnings := n.Narrate(context.Background(), constantSnapshot())
	assert.Empty(t, warnings)

	expectedIDs := []string{
		"opening", "data_overview", "variation_analysis", "seasonality_analysis",
		"trend_analysis", "forecast_results", "reliability_assessment", "conclusion",
	}
	expectedWait := []int{4000, 4500, 5000, 5500, 4500, 6000, 5000, 5500}
	require.Len(t, nar.Beats, len(expectedIDs))
	for i, b := range nar.Beats {
		assert.Equal(t, expectedIDs[i], b.ID)
		assert.Equal(t, expectedWait[i], b.WaitMs)
		assert.NotNil(t, b.Highlight)
		for _, path := range b.Highlight {
			assert.Contains(t, nar.Targets, path)
		}
	}

	assert.Equal(t,
		"✨ 分析が完了しました。今回扱ったのは2024-01-01〜2025-02-03の400件のデータです。全体を概観してみましょう。",
		nar.Beats[0].Text,
	)
	assert.Equal(t,
		"📊 データの特徴を見ると、平均100.0、中央値100.0で、比較的対称的な分布になっています。",
		nar.Beats[1].Text,
	)
	assert.Equal(t,
		"🔍 パターン分析では季節性は限定的が見られます。これは予測モデルの重要な手がかりとなります。",
		nar.Beats[3].Text,
	)
	assert.Equal(t,
		"📈 長期的には横ばい傾向で、直近3ヶ月では+0.0%の変化となっています。",
		nar.Beats[4].Text,
	)
	assert.Equal(t,
		"⚖️ 今回の予測は高い精度での結果となっており、実用的な見通しとして活用できると考えられます。",
		nar.Beats[6].Text,
	)
	assert.Empty(t, nar.Beats[7].Highlight)

	assert.Equal(t, "30日予測中央値は最新終値比 +0.0%。全体傾向は参考程度にご覧ください。", nar.SummaryText)
	assert.True(t, strings.HasPrefix(nar.Report, "# データ分析レポート"))
	assert.Equal(t, 7, len(strings.Split(nar.Explanations.Business, "\n\n")))
	assert.Equal(t, 4, len(strings.Split(nar.Explanations.Technical, "\n\n")))
	assert.True(t, strings.HasPrefix(nar.Explanations.Business, "データ概要：期間 2024-01-01〜2025-02-03（400 件）。"))
}

func TestNarrateEnglish(t *testing.T) {
	n, err := New(&Options{Locale: LocaleEnglish})
	require.NoError(t, err)

	snap := constantSnapshot()
	snap.Fallback = true
	snap.Summary.Delta30Pct = nil

	nar, warnings := n.Narrate(context.Background(), snap)
	assert.Empty(t, warnings)
	assert.Equal(t, "The 30 day (simple) median forecast is -% against the latest close.", nar.SummaryText)
	assert.True(t, strings.HasPrefix(nar.Report, "# Data Analysis Report"))
	assert.Contains(t, nar.Beats[0].Text, "It covers 400 observations from 2024-01-01 to 2025-02-03.")
	assert.Contains(t, nar.Explanations.Business, "Confidence is high")
}

func TestNarrateWriter(t *testing.T) {
	testData := map[string]struct {
		writer         *fakeWriter
		expectedReport string
		numWarnings    int
		expectReplaced bool
	}{
		"writer succeeds": {
			writer:         &fakeWriter{text: "# AI report"},
			expectedReport: "# AI report",
			expectReplaced: true,
		},
		"writer fails": {
			writer:      &fakeWriter{err: errors.New("boom")},
			numWarnings: 1,
		},
		"writer empty": {
			writer:      &fakeWriter{text: "  "},
			numWarnings: 1,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			n, err := New(&Options{Locale: LocaleJapanese, Writer: td.writer})
			require.NoError(t, err)

			nar, warnings := n.Narrate(context.Background(), constantSnapshot())
			assert.Len(t, warnings, td.numWarnings)
			assert.Contains(t, td.writer.prompt, "エグゼクティブサマリー")
			assert.Contains(t, td.writer.prompt, `"rows": 400`)

			if td.expectReplaced {
				assert.Equal(t, td.expectedReport, nar.Report)
				assert.Equal(t, td.expectedReport, nar.Explanations.Technical)
				return
			}
			assert.True(t, strings.HasPrefix(nar.Report, "# データ分析レポート"))
			assert.True(t, strings.HasPrefix(nar.Explanations.Technical, "基本統計: "))
		})
	}
}

func TestCategoricalTexts(t *testing.T) {
	p := newPrinter(LocaleJapanese)

	t.Run("variation level", func(t *testing.T) {
		assert.Equal(t, "安定的", variationLevel(p, 0.1))
		assert.Equal(t, "やや変動が大きい", variationLevel(p, StableVariationMaxCV))
		assert.Equal(t, "やや変動が大きい", variationLevel(p, 0.29))
		assert.Equal(t, "変動の大きい", variationLevel(p, ModerateVariationMaxCV))
	})

	t.Run("trend direction", func(t *testing.T) {
		assert.Equal(t, "上昇傾向", trendDirection(p, 2.1))
		assert.Equal(t, "横ばい傾向", trendDirection(p, 2))
		assert.Equal(t, "横ばい傾向", trendDirection(p, -2))
		assert.Equal(t, "下降傾向", trendDirection(p, -2.1))
	})

	t.Run("distribution", func(t *testing.T) {
		assert.Equal(t, "比較的対称的な分布", distributionComment(p, profile.Profile{Mean: 100, Median: 95}))
		assert.Equal(t, "やや偏りのある分布", distributionComment(p, profile.Profile{Mean: 100, Median: 80}))
		assert.Equal(t, "比較的対称的な分布", distributionComment(p, profile.Profile{Mean: 0, Median: 0.05}))
	})

	t.Run("seasonality", func(t *testing.T) {
		strong := analyze.Seasonality{WeeklyStrength: analyze.StrengthStrong, WeekendDeltaPct: ptr(-20)}
		medium := analyze.Seasonality{WeeklyStrength: analyze.StrengthMedium, WeekendDeltaPct: ptr(-5.3)}
		weak := analyze.Seasonality{WeeklyStrength: analyze.StrengthWeak}
		assert.Equal(t, "明確な週次パターン（週末 +20.0%）", seasonalityComment(p, strong))
		assert.Equal(t, "週次の変動（-5.3%）", seasonalityComment(p, medium))
		assert.Equal(t, "季節性は限定的", seasonalityComment(p, weak))
	})

	t.Run("reliability", func(t *testing.T) {
		assert.Equal(t, "高い精度", predictionReliability(p, summary.ConfidenceHigh))
		assert.Equal(t, "中程度の精度", predictionReliability(p, summary.ConfidenceMedium))
		assert.Equal(t, "限定的な精度", predictionReliability(p, summary.ConfidenceLow))
		assert.Equal(t, "限定的な精度", predictionReliability(p, summary.ConfidenceUnknown))
	})
}

func TestTemplateReport(t *testing.T) {
	snap := constantSnapshot()
	snap.Profile.Outliers = 2
	snap.Profile.Missing = 3
	snap.Trend.Changepoints = []analyze.Changepoint{{Ds: "2024-06-01", SlopeDelta: 1.5}}
	snap.Fallback = true

	report := templateReport(newPrinter(LocaleJapanese), snap)
	for _, heading := range []string{
		"# データ分析レポート",
		"## エグゼクティブサマリー",
		"## 主要指標",
		"## トレンド・季節性分析",
		"## 予測結果と信頼性評価",
		"## 注意事項",
	} {
		assert.Contains(t, report, heading)
	}
	assert.Contains(t, report, "- **変化点**: 2024-06-01")
	assert.Contains(t, report, "外れ値が2件検出されています。")
	assert.Contains(t, report, "欠損3件、重複0件を除外して分析しました。")
	assert.Contains(t, report, "30日（簡易）予測中央値")
}
