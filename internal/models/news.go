package models

import (
	"strings"
	"time"
)

// NewsArticle is a financial news article related to one or more symbols.
// Articles are immutable after creation except for sentiment linkage.
type NewsArticle struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Content     string    `json:"content"`
	Symbols     string    `json:"symbols"` // related tickers, comma-separated
	CreatedAt   time.Time `json:"created_at"`
}

// HasSymbol reports whether the article is tagged with the given ticker.
func (a *NewsArticle) HasSymbol(symbol string) bool {
	for _, s := range strings.Split(a.Symbols, ",") {
		if strings.EqualFold(strings.TrimSpace(s), symbol) {
			return true
		}
	}
	return false
}

// SentimentRecord stores the polarity score for one article, one-to-one
// with NewsArticle. Score range is [-1, 1].
type SentimentRecord struct {
	ID        int       `json:"id"`
	NewsID    int       `json:"news_id"`
	Score     float64   `json:"sentiment_score"`
	CreatedAt time.Time `json:"created_at"`
}

// Sentiment label thresholds and labels.
const (
	SentimentPositiveThreshold = 0.05
	SentimentNegativeThreshold = -0.05

	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// SentimentLabel converts a polarity score to a human-readable label.
func SentimentLabel(score float64) string {
	switch {
	case score >= SentimentPositiveThreshold:
		return SentimentPositive
	case score <= SentimentNegativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ArticleSentiment pairs an article with its sentiment record.
type ArticleSentiment struct {
	Article   NewsArticle     `json:"article"`
	Sentiment SentimentRecord `json:"sentiment"`
	Label     string          `json:"sentiment_label"`
}
