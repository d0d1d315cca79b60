package orchestrator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/finsightlab/market-analysis-service/internal/fetch"
	"github.com/finsightlab/market-analysis-service/internal/indicator"
	"github.com/finsightlab/market-analysis-service/internal/kafka"
	"github.com/finsightlab/market-analysis-service/internal/models"
	"github.com/finsightlab/market-analysis-service/internal/report"
	"github.com/finsightlab/market-analysis-service/internal/sentiment"
)

// minCachedArticles is the news cache sufficiency floor: fewer cached
// articles than this triggers a provider fetch.
const minCachedArticles = 5

// Store is the persistence surface the orchestrator needs. *database.DB
// satisfies it.
type Store interface {
	CreatePriceBarBatch(bars []*models.PriceBar) error
	GetPriceBars(symbol string, from, to time.Time) ([]*models.PriceBar, error)
	CountPriceBars(symbol string, from, to time.Time) (int, error)

	UpsertIndicatorPointBatch(points []*models.IndicatorPoint) error
	GetIndicatorRange(symbol string, kind models.IndicatorKind, from, to time.Time, parameters string) ([]*models.IndicatorPoint, error)
	CountIndicatorPoints(symbol string, kind models.IndicatorKind, from, to time.Time, parameters string) (int, error)

	CreateNewsArticle(a *models.NewsArticle) error
	GetNewsArticles(symbol string, since time.Time) ([]*models.NewsArticle, error)
	CreateSentimentRecord(s *models.SentimentRecord) error
	GetSentimentByNewsID(newsID int) (*models.SentimentRecord, error)

	CreateReport(r *models.Report) error
	GetReportByID(id int) (*models.Report, error)
	ListReports(limit int) ([]*models.Report, error)
}

// Orchestrator coordinates fetching, caching, computation and reporting.
// All operations are synchronous; cached data is preferred and provider
// round-trips happen only when the cache is insufficient.
type Orchestrator struct {
	store    Store
	prices   fetch.PriceProvider
	news     []fetch.NewsProvider
	engine   *indicator.Engine
	scorer   *sentiment.Scorer
	renderer *report.Renderer
	producer *kafka.Producer
	log      *zap.Logger
}

// New creates an Orchestrator. News providers are tried in order; a nil
// producer disables event publishing.
func New(store Store, prices fetch.PriceProvider, news []fetch.NewsProvider, producer *kafka.Producer, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		store:    store,
		prices:   prices,
		news:     news,
		engine:   indicator.NewEngine(log),
		scorer:   sentiment.NewScorer(),
		renderer: report.NewRenderer(log),
		producer: producer,
		log:      log,
	}
}

// SentimentResult is the outcome of a sentiment run for one symbol.
type SentimentResult struct {
	Symbol       string                    `json:"symbol"`
	Articles     []models.ArticleSentiment `json:"articles"`
	AverageScore float64                   `json:"average_score"`
	Label        string                    `json:"sentiment_label"`
}

// TechnicalAnalysisResult bundles market data with all computed indicator
// series for one symbol.
type TechnicalAnalysisResult struct {
	Symbol     string                                           `json:"symbol"`
	Bars       []models.PriceBar                                `json:"market_data"`
	Indicators map[models.IndicatorKind][]models.IndicatorPoint `json:"indicators"`
}

// GetMarketData returns daily bars for the trailing window, serving from
// the store when it holds at least half the requested days and otherwise
// fetching, persisting and serving the provider result.
func (o *Orchestrator) GetMarketData(ctx context.Context, symbol string, days int) ([]models.PriceBar, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, &ValidationError{Field: "days", Reason: "must be positive"}
	}

	from, to := window(days)
	count, err := o.store.CountPriceBars(symbol, from, to)
	if err != nil {
		o.log.Error("price bar count failed, treating cache as empty",
			zap.String("symbol", symbol), zap.Error(err))
		count = 0
	}
	// Half the window, without integer-division rounding: days=7 needs 4
	// cached points, not 3.
	if count > 0 && 2*count >= days {
		cached, err := o.store.GetPriceBars(symbol, from, to)
		if err == nil {
			o.log.Debug("serving cached price bars",
				zap.String("symbol", symbol), zap.Int("bars", len(cached)))
			return derefBars(cached), nil
		}
		o.log.Error("cached price bar read failed, falling back to fetch",
			zap.String("symbol", symbol), zap.Error(err))
	}

	bars, err := o.prices.FetchPriceHistory(ctx, symbol, from, to)
	if err != nil {
		return nil, &ProviderError{Source: "price", Symbol: symbol, Err: err}
	}
	if len(bars) == 0 {
		if count > 0 {
			cached, cerr := o.store.GetPriceBars(symbol, from, to)
			if cerr == nil {
				return derefBars(cached), nil
			}
		}
		return nil, &ProviderError{Source: "price", Symbol: symbol, Err: errNoData}
	}

	if err := o.store.CreatePriceBarBatch(refBars(bars)); err != nil {
		o.log.Error("serving unpersisted price bars",
			zap.String("symbol", symbol),
			zap.Error(&PersistenceError{Op: "price bar batch", Err: err}))
	}
	return bars, nil
}

// GetIndicatorSeries returns one indicator series over the trailing
// window, computing and persisting it when the stored series is too
// sparse.
func (o *Orchestrator) GetIndicatorSeries(ctx context.Context, symbol string, kind models.IndicatorKind, days int, params models.IndicatorParams) ([]models.IndicatorPoint, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, &ValidationError{Field: "days", Reason: "must be positive"}
	}
	kind, err = models.ParseIndicatorKind(string(kind))
	if err != nil {
		return nil, &ValidationError{Field: "indicator", Reason: err.Error()}
	}

	from, to := window(days)
	stored := indicator.StoredParams(kind, params)

	count, err := o.store.CountIndicatorPoints(symbol, kind, from, to, stored)
	if err != nil {
		o.log.Error("indicator count failed, treating cache as empty",
			zap.String("symbol", symbol), zap.String("kind", string(kind)), zap.Error(err))
		count = 0
	}
	if count > 0 && 2*count >= days {
		cached, err := o.store.GetIndicatorRange(symbol, kind, from, to, stored)
		if err == nil {
			return derefPoints(cached), nil
		}
		o.log.Error("cached indicator read failed, recomputing",
			zap.String("symbol", symbol), zap.String("kind", string(kind)), zap.Error(err))
	}

	bars, err := o.GetMarketData(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	points := o.engine.Compute(bars, []models.IndicatorKind{kind}, params)[kind]
	o.persistIndicators(ctx, symbol, kind, points)
	return points, nil
}

func (o *Orchestrator) persistIndicators(ctx context.Context, symbol string, kind models.IndicatorKind, points []models.IndicatorPoint) {
	if len(points) > 0 {
		if err := o.store.UpsertIndicatorPointBatch(refPoints(points)); err != nil {
			o.log.Error("serving unpersisted indicator points",
				zap.String("symbol", symbol),
				zap.String("kind", string(kind)),
				zap.Error(&PersistenceError{Op: "indicator batch", Err: err}))
		}
	}
	if err := o.producer.PublishAnalysisCompleted(ctx, symbol, kind); err != nil {
		o.log.Warn("analysis event publish failed",
			zap.String("symbol", symbol), zap.Error(err))
	}
}

// RunTechnicalAnalysis computes every requested indicator over a fresh
// market-data window in one pass.
func (o *Orchestrator) RunTechnicalAnalysis(ctx context.Context, symbol string, days int, kinds []models.IndicatorKind, params models.IndicatorParams) (*TechnicalAnalysisResult, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	bars, err := o.GetMarketData(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	if len(kinds) == 0 {
		kinds = models.AllKinds()
	}
	results := o.engine.Compute(bars, kinds, params)
	for kind, points := range results {
		o.persistIndicators(ctx, symbol, kind, points)
	}

	return &TechnicalAnalysisResult{Symbol: symbol, Bars: bars, Indicators: results}, nil
}

// GetSentimentForSymbol scores recent news for a symbol. Cached articles
// are served when at least minCachedArticles exist in the window;
// otherwise articles are fetched from each news provider in order, each
// persisted as soon as it arrives. Per-article scores are cached by
// article ID.
func (o *Orchestrator) GetSentimentForSymbol(ctx context.Context, symbol string, lookbackDays int) (*SentimentResult, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if lookbackDays <= 0 {
		return nil, &ValidationError{Field: "days", Reason: "must be positive"}
	}

	since := time.Now().UTC().AddDate(0, 0, -lookbackDays)
	articles := o.loadArticles(symbol, since)

	if len(articles) < minCachedArticles {
		articles = o.fetchAndStoreNews(ctx, symbol, lookbackDays, articles)
	}
	if len(articles) == 0 {
		return nil, &ProviderError{Source: "news", Symbol: symbol, Err: errNoData}
	}

	scored := make([]models.ArticleSentiment, 0, len(articles))
	for _, a := range articles {
		record := o.scoreArticle(a)
		scored = append(scored, models.ArticleSentiment{
			Article:   *a,
			Sentiment: record,
			Label:     models.SentimentLabel(record.Score),
		})
	}

	avg := sentiment.Aggregate(scored)
	return &SentimentResult{
		Symbol:       symbol,
		Articles:     scored,
		AverageScore: avg,
		Label:        models.SentimentLabel(avg),
	}, nil
}

func (o *Orchestrator) loadArticles(symbol string, since time.Time) []*models.NewsArticle {
	articles, err := o.store.GetNewsArticles(symbol, since)
	if err != nil {
		o.log.Error("news cache read failed, treating cache as empty",
			zap.String("symbol", symbol), zap.Error(err))
		return nil
	}
	return articles
}

// fetchAndStoreNews tries each news provider in order until enough
// articles accumulate, deduplicating by URL and persisting each new
// article immediately.
func (o *Orchestrator) fetchAndStoreNews(ctx context.Context, symbol string, lookbackDays int, existing []*models.NewsArticle) []*models.NewsArticle {
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[a.URL] = true
	}

	articles := existing
	for _, provider := range o.news {
		if len(articles) >= minCachedArticles {
			break
		}

		fetched, err := provider.FetchNews(ctx, symbol, lookbackDays)
		if err != nil {
			o.log.Warn("news provider failed, trying next",
				zap.String("provider", provider.Name()),
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}

		for i := range fetched {
			a := &fetched[i]
			if a.URL != "" && seen[a.URL] {
				continue
			}
			seen[a.URL] = true

			if err := o.store.CreateNewsArticle(a); err != nil {
				o.log.Error("serving unpersisted news article",
					zap.String("symbol", symbol),
					zap.Error(&PersistenceError{Op: "news article", Err: err}))
			}
			articles = append(articles, a)
		}
	}
	return articles
}

// scoreArticle returns the cached sentiment record for an article when
// one exists, otherwise scores and persists a new one.
func (o *Orchestrator) scoreArticle(a *models.NewsArticle) models.SentimentRecord {
	if a.ID != 0 {
		if cached, err := o.store.GetSentimentByNewsID(a.ID); err != nil {
			o.log.Error("sentiment cache read failed",
				zap.Int("news_id", a.ID), zap.Error(err))
		} else if cached != nil {
			return *cached
		}
	}

	record := models.SentimentRecord{NewsID: a.ID, Score: o.scorer.Score(*a)}
	if a.ID != 0 {
		if err := o.store.CreateSentimentRecord(&record); err != nil {
			o.log.Error("serving unpersisted sentiment score",
				zap.Int("news_id", a.ID),
				zap.Error(&PersistenceError{Op: "sentiment record", Err: err}))
		}
	}
	return record
}

// GenerateReport runs the requested analyses for each symbol, renders the
// HTML document and persists it. A failed section is skipped rather than
// failing the report; a report with zero sections is still generated.
func (o *Orchestrator) GenerateReport(ctx context.Context, title string, symbols []string, reportType string, days int) (*models.Report, error) {
	if len(symbols) == 0 {
		return nil, &ValidationError{Field: "symbols", Reason: "at least one symbol is required"}
	}
	if days <= 0 {
		return nil, &ValidationError{Field: "days", Reason: "must be positive"}
	}
	switch reportType {
	case models.ReportTypeTechnical, models.ReportTypeSentiment, models.ReportTypeComprehensive:
	default:
		return nil, &ValidationError{Field: "report_type", Reason: "must be technical, sentiment or comprehensive"}
	}

	normalized := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym, err := normalizeSymbol(s)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, sym)
	}

	var sections []report.Section
	for _, symbol := range normalized {
		if reportType == models.ReportTypeTechnical || reportType == models.ReportTypeComprehensive {
			analysis, err := o.RunTechnicalAnalysis(ctx, symbol, days, nil, nil)
			if err != nil {
				o.log.Warn("skipping technical section",
					zap.String("symbol", symbol), zap.Error(err))
			} else {
				sections = append(sections, o.renderer.BuildTechnicalSection(symbol, analysis.Bars, analysis.Indicators))
			}
		}
		if reportType == models.ReportTypeSentiment || reportType == models.ReportTypeComprehensive {
			res, err := o.GetSentimentForSymbol(ctx, symbol, days)
			if err != nil {
				o.log.Warn("skipping sentiment section",
					zap.String("symbol", symbol), zap.Error(err))
			} else {
				sections = append(sections, o.renderer.BuildSentimentSection(symbol, res.Articles, res.AverageScore, res.Label))
			}
		}
	}

	if title == "" {
		title = "Analysis Report: " + strings.Join(normalized, ", ")
	}
	html, err := o.renderer.Render(title, normalized, reportType, sections)
	if err != nil {
		return nil, err
	}

	rpt := &models.Report{
		Title:       title,
		Symbols:     strings.Join(normalized, ","),
		ReportType:  reportType,
		ContentHTML: html,
	}
	if err := o.store.CreateReport(rpt); err != nil {
		return nil, &PersistenceError{Op: "report", Err: err}
	}

	if err := o.producer.PublishReportGenerated(ctx, rpt.ID, rpt.Symbols); err != nil {
		o.log.Warn("report event publish failed",
			zap.Int("report_id", rpt.ID), zap.Error(err))
	}
	return rpt, nil
}

// GetReport fetches a stored report with its HTML content.
func (o *Orchestrator) GetReport(id int) (*models.Report, error) {
	return o.store.GetReportByID(id)
}

// ListReports lists recent report metadata without content.
func (o *Orchestrator) ListReports(limit int) ([]*models.Report, error) {
	return o.store.ListReports(limit)
}

func normalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	return symbol, nil
}

// window returns the trailing date range for a day count, end-inclusive.
func window(days int) (from, to time.Time) {
	to = time.Now().UTC().Truncate(24 * time.Hour)
	from = to.AddDate(0, 0, -days)
	return from, to
}

func derefBars(bars []*models.PriceBar) []models.PriceBar {
	out := make([]models.PriceBar, len(bars))
	for i, b := range bars {
		out[i] = *b
	}
	return out
}

func refBars(bars []models.PriceBar) []*models.PriceBar {
	out := make([]*models.PriceBar, len(bars))
	for i := range bars {
		out[i] = &bars[i]
	}
	return out
}

func derefPoints(points []*models.IndicatorPoint) []models.IndicatorPoint {
	out := make([]models.IndicatorPoint, len(points))
	for i, p := range points {
		out[i] = *p
	}
	return out
}

func refPoints(points []models.IndicatorPoint) []*models.IndicatorPoint {
	out := make([]*models.IndicatorPoint, len(points))
	for i := range points {
		out[i] = &points[i]
	}
	return out
}
