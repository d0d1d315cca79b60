package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// Scorer assigns a compound sentiment score in [-1, 1] to news text using
// lexicon-based intensity analysis. Safe for concurrent use.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewScorer creates a Scorer with the default financial-neutral lexicon.
func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the compound polarity of the article's title and content
// combined. Headlines carry most of the signal for short-form market news,
// so the title always participates even when content is empty.
func (s *Scorer) Score(article models.NewsArticle) float64 {
	text := article.Title
	if article.Content != "" {
		text += " " + article.Content
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	return s.analyzer.PolarityScores(text).Compound
}

// ScoreAll scores a batch of articles and attaches the classification
// label to each.
func (s *Scorer) ScoreAll(articles []models.NewsArticle) []models.ArticleSentiment {
	scored := make([]models.ArticleSentiment, 0, len(articles))
	for _, a := range articles {
		score := s.Score(a)
		scored = append(scored, models.ArticleSentiment{
			Article:   a,
			Sentiment: models.SentimentRecord{NewsID: a.ID, Score: score},
			Label:     models.SentimentLabel(score),
		})
	}
	return scored
}

// Aggregate computes the mean compound score of a scored batch. An empty
// batch aggregates to zero, which labels as Neutral.
func Aggregate(scored []models.ArticleSentiment) float64 {
	if len(scored) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scored {
		sum += s.Sentiment.Score
	}
	return sum / float64(len(scored))
}
