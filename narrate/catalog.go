package narrate

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	LocaleJapanese = "ja"
	LocaleEnglish  = "en"
)

var locales = map[string]language.Tag{
	LocaleJapanese: language.Japanese,
	LocaleEnglish:  language.English,
}

type translation struct {
	ja string
	en string
}

// messages maps a message key to its format string per locale. Numbers are passed in already
// formatted so every verb is %s.
var messages = map[string]translation{
	"business.overview": {
		ja: "データ概要：期間 %[1]s〜%[2]s（%[3]s 件）。",
		en: "Data overview: %[1]s to %[2]s (%[3]s rows).",
	},
	"business.stats": {
		ja: "平均 %[1]s、中央値 %[2]s、最小 %[3]s、最大 %[4]s。標準偏差 %[5]s、変動係数 %[6]s。",
		en: "Mean %[1]s, median %[2]s, min %[3]s, max %[4]s. Standard deviation %[5]s, coefficient of variation %[6]s.",
	},
	"business.quality": {
		ja: "欠損 %[1]s 件、重複 %[2]s 件、外れ値 %[3]s 件。",
		en: "Missing %[1]s, duplicates %[2]s, outliers %[3]s.",
	},
	"business.seasonality": {
		ja: "週次の季節性は%[1]sで、週末は平日比 %[2]s%% です。",
		en: "Weekly seasonality is %[1]s and weekends are %[2]s%% against weekdays.",
	},
	"business.trend": {
		ja: "直近30日の傾きは %[1]s、直近3か月の変化率は %[2]s%% でした。",
		en: "The slope over the last 30 days is %[1]s and the change over the last 3 months is %[2]s%%.",
	},
	"business.forecast": {
		ja: "5日先の予測中央値は %[1]s（%[2]s〜%[3]s）。30日先は %[4]s（%[5]s〜%[6]s）で、最新値比 %[7]s%% です。",
		en: "The 5 day median forecast is %[1]s (%[2]s to %[3]s). At 30 days it is %[4]s (%[5]s to %[6]s), %[7]s%% against the latest value.",
	},
	"business.confidence": {
		ja: "信頼度は %[1]s（帯幅比 %[2]s）。",
		en: "Confidence is %[1]s (band ratio %[2]s).",
	},

	"technical.stats": {
		ja: "基本統計: mean=%[1]s, median=%[2]s, std=%[3]s, cv=%[4]s",
		en: "stats: mean=%[1]s, median=%[2]s, std=%[3]s, cv=%[4]s",
	},
	"technical.seasonality": {
		ja: "seasonality: acf7=%[1]s, weekend_delta_pct=%[2]s",
		en: "seasonality: acf7=%[1]s, weekend_delta_pct=%[2]s",
	},
	"technical.trend": {
		ja: "trend: slope_30d=%[1]s, delta_3mo_pct=%[2]s, changepoints=%[3]s",
		en: "trend: slope_30d=%[1]s, delta_3mo_pct=%[2]s, changepoints=%[3]s",
	},
	"technical.forecast": {
		ja: "forecast: p50_5=%[1]s, p50_30=%[2]s, band_ratio=%[3]s, confidence=%[4]s",
		en: "forecast: p50_5=%[1]s, p50_30=%[2]s, band_ratio=%[3]s, confidence=%[4]s",
	},

	"beat.opening": {
		ja: "✨ 分析が完了しました。今回扱ったのは%[1]s〜%[2]sの%[3]s件のデータです。全体を概観してみましょう。",
		en: "✨ The analysis is complete. It covers %[3]s observations from %[1]s to %[2]s. Let's start with the big picture.",
	},
	"beat.data_overview": {
		ja: "📊 データの特徴を見ると、平均%[1]s、中央値%[2]sで、%[3]sになっています。",
		en: "📊 The data has a mean of %[1]s and a median of %[2]s, giving %[3]s.",
	},
	"beat.variation_analysis": {
		ja: "変動係数は%[1]sで、統計的には「%[2]s」データといえます。これは予測の信頼性にも影響します。",
		en: "The coefficient of variation is %[1]s, so statistically this is %[2]s data. This also affects how far the forecast can be trusted.",
	},
	"beat.seasonality_analysis": {
		ja: "🔍 パターン分析では%[1]sが見られます。これは予測モデルの重要な手がかりとなります。",
		en: "🔍 The pattern analysis shows %[1]s. This is an important cue for the forecast model.",
	},
	"beat.trend_analysis": {
		ja: "📈 長期的には%[1]sで、直近3ヶ月では%[2]s%%の変化となっています。",
		en: "📈 Over the long run the series shows %[1]s, with a %[2]s%% change over the last 3 months.",
	},
	"beat.forecast_results": {
		ja: "🔮 予測結果として、30日先の中央値は%[1]sで、最新値から%[2]s%%の変化が見込まれます。",
		en: "🔮 The 30 day median forecast is %[1]s, a %[2]s%% change from the latest value.",
	},
	"beat.reliability_assessment": {
		ja: "⚖️ 今回の予測は%[1]sでの結果となっており、実用的な見通しとして活用できると考えられます。",
		en: "⚖️ This forecast comes with %[1]s and can serve as a practical outlook.",
	},
	"beat.conclusion": {
		ja: "📝 以上の分析から、データの特性を踏まえた将来予測をお届けしました。詳細は右上の「詳細レポート」もご参照ください。",
		en: "📝 That wraps up a forecast grounded in the characteristics of the data. See the detailed report in the top right for more.",
	},

	"distribution.symmetric": {ja: "比較的対称的な分布", en: "a fairly symmetric distribution"},
	"distribution.skewed":    {ja: "やや偏りのある分布", en: "a somewhat skewed distribution"},

	"variation.stable":   {ja: "安定的", en: "stable"},
	"variation.moderate": {ja: "やや変動が大きい", en: "somewhat volatile"},
	"variation.high":     {ja: "変動の大きい", en: "highly volatile"},

	"seasonality.strong":  {ja: "明確な週次パターン（週末 +%[1]s%%）", en: "a clear weekly pattern (weekends +%[1]s%%)"},
	"seasonality.medium":  {ja: "週次の変動（%[1]s%%）", en: "some weekly variation (%[1]s%%)"},
	"seasonality.limited": {ja: "季節性は限定的", en: "limited seasonality"},

	"trend.up":   {ja: "上昇傾向", en: "an upward trend"},
	"trend.down": {ja: "下降傾向", en: "a downward trend"},
	"trend.flat": {ja: "横ばい傾向", en: "a flat trend"},

	"reliability.high":    {ja: "高い精度", en: "high precision"},
	"reliability.medium":  {ja: "中程度の精度", en: "moderate precision"},
	"reliability.limited": {ja: "限定的な精度", en: "limited precision"},

	"label.強":  {ja: "強", en: "strong"},
	"label.中":  {ja: "中", en: "moderate"},
	"label.弱":  {ja: "弱", en: "weak"},
	"label.高":  {ja: "高", en: "high"},
	"label.低":  {ja: "低", en: "low"},
	"label.不明": {ja: "不明", en: "unknown"},

	"summary.model": {
		ja: "30日予測中央値は最新終値比 %[1]s%%。全体傾向は参考程度にご覧ください。",
		en: "The 30 day median forecast is %[1]s%% against the latest close. Treat the overall trend as a reference only.",
	},
	"summary.fallback": {
		ja: "30日（簡易）予測中央値は最新終値比 %[1]s%%。",
		en: "The 30 day (simple) median forecast is %[1]s%% against the latest close.",
	},

	"report.title":            {ja: "# データ分析レポート", en: "# Data Analysis Report"},
	"report.executive":        {ja: "## エグゼクティブサマリー", en: "## Executive Summary"},
	"report.executive.body":   {ja: "%[1]s〜%[2]sの期間における%[3]s件のデータを分析しました。", en: "Analyzed %[3]s observations from %[1]s to %[2]s."},
	"report.metrics":          {ja: "## 主要指標", en: "## Key Metrics"},
	"report.metrics.mean":     {ja: "- **平均値**: %[1]s", en: "- **Mean**: %[1]s"},
	"report.metrics.median":   {ja: "- **中央値**: %[1]s", en: "- **Median**: %[1]s"},
	"report.metrics.std":      {ja: "- **標準偏差**: %[1]s", en: "- **Standard deviation**: %[1]s"},
	"report.metrics.cv":       {ja: "- **変動係数**: %[1]s", en: "- **Coefficient of variation**: %[1]s"},
	"report.metrics.range":    {ja: "- **最小 / 最大**: %[1]s / %[2]s", en: "- **Min / Max**: %[1]s / %[2]s"},
	"report.trend":            {ja: "## トレンド・季節性分析", en: "## Trend and Seasonality"},
	"report.trend.slope":      {ja: "- **直近30日の傾き**: %[1]s", en: "- **Slope over the last 30 days**: %[1]s"},
	"report.trend.delta":      {ja: "- **直近3か月の変化率**: %[1]s%%", en: "- **Change over the last 3 months**: %[1]s%%"},
	"report.trend.weekly":     {ja: "- **週次の季節性**: %[1]s（週末は平日比 %[2]s%%）", en: "- **Weekly seasonality**: %[1]s (weekends %[2]s%% against weekdays)"},
	"report.trend.changes":    {ja: "- **変化点**: %[1]s", en: "- **Changepoints**: %[1]s"},
	"report.trend.nochanges":  {ja: "なし", en: "none"},
	"report.forecast":         {ja: "## 予測結果と信頼性評価", en: "## Forecast and Reliability"},
	"report.forecast.body":    {ja: "30日先の予測値は%[1]sで、現在値から%[2]s%%の変化が見込まれます。", en: "The 30 day forecast is %[1]s, a %[2]s%% change from the current value."},
	"report.forecast.conf":    {ja: "予測の信頼度は%[1]sとなっています。", en: "The forecast confidence is %[1]s."},
	"report.forecast.simple":  {ja: "データ量が限られるため、直近の傾きを延長した簡易予測を用いています。", en: "Because data is limited, the forecast extends the recent slope."},
	"report.notes":            {ja: "## 注意事項", en: "## Notes"},
	"report.notes.template":   {ja: "このレポートは統計的な要約から自動生成された簡易版です。", en: "This is a simplified report generated from the statistical summary."},
	"report.notes.outliers":   {ja: "外れ値が%[1]s件検出されています。予測には含めたまま扱っています。", en: "%[1]s outliers were detected. They remain in the data used for the forecast."},
	"report.notes.incomplete": {ja: "欠損%[1]s件、重複%[2]s件を除外して分析しました。", en: "%[1]s missing and %[2]s duplicate rows were excluded from the analysis."},

	"warning.writer": {
		ja: "AIレポートの生成に失敗したため、簡易レポートを表示しています。",
		en: "The AI report could not be generated so a simplified report is shown.",
	},
}

var messageCatalog = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Japanese))
	for key, msg := range messages {
		if err := b.SetString(language.Japanese, key, msg.ja); err != nil {
			panic(err)
		}
		if err := b.SetString(language.English, key, msg.en); err != nil {
			panic(err)
		}
	}
	return b
}

func newPrinter(locale string) *message.Printer {
	tag, exists := locales[locale]
	if !exists {
		tag = language.Japanese
	}
	return message.NewPrinter(tag, message.Catalog(messageCatalog))
}
