package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

func TestScorer(t *testing.T) {
	scorer := NewScorer()

	t.Run("positive headline scores above negative headline", func(t *testing.T) {
		positive := scorer.Score(models.NewsArticle{
			Title: "Company reports record profits, stock soars on excellent earnings",
		})
		negative := scorer.Score(models.NewsArticle{
			Title: "Company faces bankruptcy, stock crashes on terrible losses",
		})

		assert.Greater(t, positive, 0.0)
		assert.Less(t, negative, 0.0)
		assert.Greater(t, positive, negative)
	})

	t.Run("scores stay within compound bounds", func(t *testing.T) {
		for _, title := range []string{
			"Amazing fantastic incredible wonderful gains",
			"Horrible disastrous awful catastrophic collapse",
			"Quarterly report released",
		} {
			score := scorer.Score(models.NewsArticle{Title: title})
			assert.GreaterOrEqual(t, score, -1.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	})

	t.Run("empty article scores zero", func(t *testing.T) {
		assert.Zero(t, scorer.Score(models.NewsArticle{}))
	})

	t.Run("content contributes to the score", func(t *testing.T) {
		titleOnly := scorer.Score(models.NewsArticle{Title: "Company update"})
		withContent := scorer.Score(models.NewsArticle{
			Title:   "Company update",
			Content: "Revenue grew strongly and the outlook improved significantly.",
		})
		assert.Greater(t, withContent, titleOnly)
	})
}

func TestScoreAll(t *testing.T) {
	scorer := NewScorer()

	articles := []models.NewsArticle{
		{Title: "Stock surges on strong growth and great results"},
		{Title: "Shares plunge after dismal failure and heavy losses"},
	}

	scored := scorer.ScoreAll(articles)
	require.Len(t, scored, 2)
	assert.Equal(t, models.SentimentPositive, scored[0].Label)
	assert.Equal(t, models.SentimentNegative, scored[1].Label)
	assert.Equal(t, articles[0].Title, scored[0].Article.Title)
}

func TestSentimentLabels(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"at positive threshold", 0.05, models.SentimentPositive},
		{"above positive threshold", 0.8, models.SentimentPositive},
		{"at negative threshold", -0.05, models.SentimentNegative},
		{"below negative threshold", -0.6, models.SentimentNegative},
		{"between thresholds", 0.0, models.SentimentNeutral},
		{"just under positive", 0.049, models.SentimentNeutral},
		{"just over negative", -0.049, models.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.SentimentLabel(tt.score))
		})
	}
}

func TestAggregate(t *testing.T) {
	t.Run("mean of the batch", func(t *testing.T) {
		scored := []models.ArticleSentiment{
			{Sentiment: models.SentimentRecord{Score: 0.6}},
			{Sentiment: models.SentimentRecord{Score: 0.2}},
			{Sentiment: models.SentimentRecord{Score: -0.2}},
		}
		assert.InDelta(t, 0.2, Aggregate(scored), 1e-9)
	})

	t.Run("empty batch is neutral", func(t *testing.T) {
		assert.Zero(t, Aggregate(nil))
		assert.Equal(t, models.SentimentNeutral, models.SentimentLabel(Aggregate(nil)))
	})
}
