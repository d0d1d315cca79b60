package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

const (
	chartWidth  = 900
	chartHeight = 500

	rsiOverbought = 70
	rsiOversold   = 30
)

type pngRenderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// renderDataURI renders a chart to a base64 PNG data URI suitable for an
// <img> src attribute.
func renderDataURI(graph pngRenderable) (template.URL, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("chart render: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return template.URL("data:image/png;base64," + encoded), nil
}

// movingAverageChart plots a moving-average series alongside the close
// price.
func movingAverageChart(symbol string, kind models.IndicatorKind, points []models.IndicatorPoint, bars []models.PriceBar) (template.URL, error) {
	if len(points) < 2 {
		return "", fmt.Errorf("not enough %s points for %s", kind, symbol)
	}

	maSeries := chart.TimeSeries{
		Name:    string(kind),
		XValues: pointDates(points),
		YValues: pointValues(points),
	}
	series := []chart.Series{maSeries}
	if len(bars) >= 2 {
		series = append(series, chart.TimeSeries{
			Name:    "Close",
			XValues: barDates(bars),
			YValues: barCloses(bars),
			Style:   chart.Style{StrokeColor: drawing.ColorBlue},
		})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s for %s", kind, symbol),
		Width:  chartWidth,
		Height: chartHeight,
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return renderDataURI(&graph)
}

// rsiChart plots RSI with overbought and oversold reference lines.
func rsiChart(symbol string, points []models.IndicatorPoint) (template.URL, error) {
	if len(points) < 2 {
		return "", fmt.Errorf("not enough RSI points for %s", symbol)
	}

	dates := pointDates(points)
	graph := chart.Chart{
		Title:  fmt.Sprintf("RSI for %s", symbol),
		Width:  chartWidth,
		Height: chartHeight,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: []chart.Series{
			chart.TimeSeries{Name: "RSI", XValues: dates, YValues: pointValues(points)},
			constantSeries("Overbought (70)", dates, rsiOverbought, drawing.ColorRed),
			constantSeries("Oversold (30)", dates, rsiOversold, drawing.ColorGreen),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return renderDataURI(&graph)
}

// macdChart plots the MACD line, signal line and histogram.
func macdChart(symbol string, points []models.IndicatorPoint) (template.URL, error) {
	if len(points) < 2 {
		return "", fmt.Errorf("not enough MACD points for %s", symbol)
	}

	dates := pointDates(points)
	histogram := make([]float64, len(points))
	signal := make([]float64, len(points))
	for i, p := range points {
		histogram[i] = p.Histogram
		signal[i] = p.Signal
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("MACD for %s", symbol),
		Width:  chartWidth,
		Height: chartHeight,
		Series: []chart.Series{
			chart.TimeSeries{Name: "MACD", XValues: dates, YValues: pointValues(points)},
			chart.TimeSeries{
				Name:    "Signal",
				XValues: dates,
				YValues: signal,
				Style:   chart.Style{StrokeColor: drawing.ColorRed},
			},
			chart.TimeSeries{
				Name:    "Histogram",
				XValues: dates,
				YValues: histogram,
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("999999"),
					StrokeDashArray: []float64{3.0, 3.0},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return renderDataURI(&graph)
}

// bollingerChart plots the three bands against the close price.
func bollingerChart(symbol string, points []models.IndicatorPoint, bars []models.PriceBar) (template.URL, error) {
	if len(points) < 2 {
		return "", fmt.Errorf("not enough band points for %s", symbol)
	}

	dates := pointDates(points)
	upper := make([]float64, len(points))
	lower := make([]float64, len(points))
	for i, p := range points {
		upper[i] = p.Upper
		lower[i] = p.Lower
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name:    "Upper Band",
			XValues: dates,
			YValues: upper,
			Style:   chart.Style{StrokeColor: drawing.ColorRed, StrokeDashArray: []float64{5.0, 5.0}},
		},
		chart.TimeSeries{Name: "Middle Band", XValues: dates, YValues: pointValues(points)},
		chart.TimeSeries{
			Name:    "Lower Band",
			XValues: dates,
			YValues: lower,
			Style:   chart.Style{StrokeColor: drawing.ColorGreen, StrokeDashArray: []float64{5.0, 5.0}},
		},
	}
	if len(bars) >= 2 {
		series = append(series, chart.TimeSeries{
			Name:    "Close",
			XValues: barDates(bars),
			YValues: barCloses(bars),
			Style:   chart.Style{StrokeColor: drawing.ColorBlue},
		})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Bollinger Bands for %s", symbol),
		Width:  chartWidth,
		Height: chartHeight,
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return renderDataURI(&graph)
}

// sentimentChart plots per-article compound scores as colored bars.
func sentimentChart(symbol string, scored []models.ArticleSentiment) (template.URL, error) {
	if len(scored) == 0 {
		return "", fmt.Errorf("no scored articles for %s", symbol)
	}

	bars := make([]chart.Value, 0, len(scored))
	for i, s := range scored {
		label := s.Article.Title
		if label == "" {
			label = fmt.Sprintf("Article %d", i+1)
		}
		if len(label) > 24 {
			label = label[:24] + "..."
		}
		bars = append(bars, chart.Value{
			Label: label,
			Value: s.Sentiment.Score,
			Style: chart.Style{FillColor: sentimentColor(s.Sentiment.Score)},
		})
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Sentiment Analysis for %s", symbol),
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 40,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: -1, Max: 1},
		},
		Bars: bars,
	}
	return renderDataURI(&graph)
}

func sentimentColor(score float64) drawing.Color {
	switch {
	case score >= models.SentimentPositiveThreshold:
		return drawing.ColorGreen
	case score <= models.SentimentNegativeThreshold:
		return drawing.ColorRed
	default:
		return drawing.ColorFromHex("999999")
	}
}

func constantSeries(name string, dates []time.Time, level float64, color drawing.Color) chart.TimeSeries {
	values := make([]float64, len(dates))
	for i := range values {
		values[i] = level
	}
	return chart.TimeSeries{
		Name:    name,
		XValues: dates,
		YValues: values,
		Style:   chart.Style{StrokeColor: color, StrokeDashArray: []float64{5.0, 5.0}},
	}
}

func pointDates(points []models.IndicatorPoint) []time.Time {
	dates := make([]time.Time, len(points))
	for i, p := range points {
		dates[i] = p.Date
	}
	return dates
}

func pointValues(points []models.IndicatorPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}

func barDates(bars []models.PriceBar) []time.Time {
	dates := make([]time.Time, len(bars))
	for i, b := range bars {
		dates[i] = b.Date
	}
	return dates
}

func barCloses(bars []models.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close.InexactFloat64()
	}
	return closes
}
