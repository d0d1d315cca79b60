package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// Section kinds as rendered in the report body.
const (
	sectionTechnical = "technical_analysis"
	sectionSentiment = "sentiment_analysis"
)

// Section is one rendered block of a report, either a technical analysis
// of a symbol or its news sentiment.
type Section struct {
	Title    string
	Kind     string
	Charts   []template.URL
	Insights []string
	Articles []models.ArticleSentiment
}

// IsTechnical reports whether the section renders indicator charts.
func (s Section) IsTechnical() bool { return s.Kind == sectionTechnical }

// IsSentiment reports whether the section renders news sentiment.
func (s Section) IsSentiment() bool { return s.Kind == sectionSentiment }

// reportData is the template context for a full report.
type reportData struct {
	Title      string
	Symbols    string
	ReportType string
	Timestamp  string
	Sections   []Section
}

// Renderer builds report sections from analysis results and renders them
// to a standalone HTML document.
type Renderer struct {
	tmpl *template.Template
	log  *zap.Logger
}

// NewRenderer creates a Renderer. A nil logger falls back to a no-op.
func NewRenderer(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	funcs := template.FuncMap{
		"summary": func(s string) string { return truncate(s, 200) },
	}
	return &Renderer{
		tmpl: template.Must(template.New("report").Funcs(funcs).Parse(reportTemplate)),
		log:  log,
	}
}

// BuildTechnicalSection assembles charts and insight text for one symbol's
// indicator results. Chart failures degrade to insight-only output.
func (r *Renderer) BuildTechnicalSection(symbol string, bars []models.PriceBar, indicators map[models.IndicatorKind][]models.IndicatorPoint) Section {
	section := Section{
		Title: fmt.Sprintf("Technical Analysis for %s", symbol),
		Kind:  sectionTechnical,
	}

	for _, kind := range models.AllKinds() {
		points, ok := indicators[kind]
		if !ok || len(points) == 0 {
			continue
		}

		uri, err := r.buildChart(symbol, kind, points, bars)
		if err != nil {
			r.log.Warn("chart generation failed",
				zap.String("symbol", symbol),
				zap.String("indicator", string(kind)),
				zap.Error(err))
		} else {
			section.Charts = append(section.Charts, uri)
		}
		section.Insights = append(section.Insights, indicatorInsight(symbol, kind, points))
	}

	return section
}

func (r *Renderer) buildChart(symbol string, kind models.IndicatorKind, points []models.IndicatorPoint, bars []models.PriceBar) (template.URL, error) {
	switch kind {
	case models.KindRSI:
		return rsiChart(symbol, points)
	case models.KindMACD:
		return macdChart(symbol, points)
	case models.KindBBANDS:
		return bollingerChart(symbol, points, bars)
	default:
		return movingAverageChart(symbol, kind, points, bars)
	}
}

// BuildSentimentSection assembles the sentiment chart, summary insights and
// article list for one symbol.
func (r *Renderer) BuildSentimentSection(symbol string, scored []models.ArticleSentiment, overallScore float64, overallLabel string) Section {
	section := Section{
		Title: fmt.Sprintf("Sentiment Analysis for %s", symbol),
		Kind:  sectionSentiment,
		Insights: []string{
			fmt.Sprintf("Overall sentiment for %s is %s (score: %.2f).", symbol, overallLabel, overallScore),
			fmt.Sprintf("Analyzed %d news articles related to %s.", len(scored), symbol),
		},
	}

	if uri, err := sentimentChart(symbol, scored); err != nil {
		r.log.Warn("sentiment chart generation failed",
			zap.String("symbol", symbol),
			zap.Error(err))
	} else {
		section.Charts = append(section.Charts, uri)
	}

	for i, s := range scored {
		if i >= 3 {
			break
		}
		section.Insights = append(section.Insights,
			fmt.Sprintf("Article: %q - %s (score: %.2f)", s.Article.Title, s.Label, s.Sentiment.Score))
	}

	if len(scored) > 5 {
		scored = scored[:5]
	}
	section.Articles = scored

	return section
}

// Render produces the final HTML document for the given sections.
func (r *Renderer) Render(title string, symbols []string, reportType string, sections []Section) (string, error) {
	var b strings.Builder
	data := reportData{
		Title:      title,
		Symbols:    strings.Join(symbols, ", "),
		ReportType: reportType,
		Timestamp:  time.Now().UTC().Format("2006-01-02 15:04:05 UTC"),
		Sections:   sections,
	}
	if err := r.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("report template: %w", err)
	}
	return b.String(), nil
}

// truncate shortens article content for the news listing.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 1200px; margin: 0 auto; padding: 20px; }
.header { border-bottom: 2px solid #eee; margin-bottom: 20px; padding-bottom: 10px; }
.section { margin-bottom: 30px; padding: 20px; border: 1px solid #ddd; border-radius: 5px; background-color: #f9f9f9; }
.chart { margin: 20px 0; text-align: center; }
.chart img { max-width: 100%; height: auto; }
.insights { margin: 20px 0; padding: 15px; background-color: #e6f7ff; border-left: 4px solid #1890ff; border-radius: 3px; }
.news-article { margin: 10px 0; padding: 10px; background-color: #fff; border: 1px solid #eee; border-radius: 3px; }
.footer { margin-top: 30px; border-top: 1px solid #eee; padding-top: 10px; font-size: 0.8em; color: #777; }
</style>
</head>
<body>
<div class="header">
<h1>{{.Title}}</h1>
<p>Generated on {{.Timestamp}} | Symbols: {{.Symbols}}</p>
<p>Report Type: {{.ReportType}}</p>
</div>
{{range .Sections}}
<div class="section">
<h2>{{.Title}}</h2>
{{range .Charts}}
<div class="chart"><img src="{{.}}" alt="Analysis Chart"></div>
{{end}}
<div class="insights">
<h3>Insights:</h3>
<ul>
{{range .Insights}}<li>{{.}}</li>
{{end}}</ul>
</div>
{{if .IsSentiment}}{{if .Articles}}
<h3>Recent News Articles:</h3>
{{range .Articles}}
<div class="news-article">
<h4>{{.Article.Title}}</h4>
<p>Source: {{.Article.Source}} | Date: {{.Article.PublishedAt.Format "2006-01-02"}}</p>
<p>{{summary .Article.Content}}</p>
{{if .Article.URL}}<p><a href="{{.Article.URL}}" target="_blank" rel="noopener">Read full article</a></p>{{end}}
</div>
{{end}}
{{end}}{{end}}
</div>
{{end}}
<div class="footer">
<p>This report was generated automatically. The information provided is for informational purposes only and should not be considered financial advice.</p>
</div>
</body>
</html>
`
