package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// CreateNewsArticle inserts a news article and sets its generated ID.
func (db *DB) CreateNewsArticle(a *models.NewsArticle) error {
	query := `
		INSERT INTO news_articles (title, source, url, published_at, content, symbols, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := db.conn.QueryRow(query,
		a.Title, a.Source, a.URL, a.PublishedAt, a.Content, a.Symbols, time.Now(),
	).Scan(&a.ID)

	if err != nil {
		return fmt.Errorf("failed to create news article: %w", err)
	}
	return nil
}

// GetNewsArticles retrieves articles tagged with the symbol published at or
// after since, newest first.
func (db *DB) GetNewsArticles(symbol string, since time.Time) ([]*models.NewsArticle, error) {
	query := `
		SELECT id, title, source, url, published_at, content, symbols, created_at
		FROM news_articles
		WHERE symbols LIKE '%' || $1 || '%' AND published_at >= $2
		ORDER BY published_at DESC
	`
	rows, err := db.conn.Query(query, symbol, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get news articles: %w", err)
	}
	defer rows.Close()

	var articles []*models.NewsArticle
	for rows.Next() {
		var a models.NewsArticle
		err := rows.Scan(
			&a.ID, &a.Title, &a.Source, &a.URL, &a.PublishedAt, &a.Content, &a.Symbols, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news article: %w", err)
		}
		articles = append(articles, &a)
	}

	return articles, nil
}

// CreateSentimentRecord stores the sentiment score for an article. A record
// is created at most once per article; on conflict the existing record is
// loaded into s instead.
func (db *DB) CreateSentimentRecord(s *models.SentimentRecord) error {
	query := `
		INSERT INTO sentiment_records (news_id, sentiment_score, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (news_id) DO NOTHING
		RETURNING id
	`
	err := db.conn.QueryRow(query, s.NewsID, s.Score, time.Now()).Scan(&s.ID)
	if err == sql.ErrNoRows {
		existing, err := db.GetSentimentByNewsID(s.NewsID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("sentiment record for news %d vanished during upsert", s.NewsID)
		}
		*s = *existing
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create sentiment record: %w", err)
	}
	return nil
}

// GetSentimentByNewsID retrieves the sentiment record for an article.
// Returns (nil, nil) when no record exists, so callers can short-circuit
// recomputation without treating a miss as an error.
func (db *DB) GetSentimentByNewsID(newsID int) (*models.SentimentRecord, error) {
	query := `
		SELECT id, news_id, sentiment_score, created_at
		FROM sentiment_records
		WHERE news_id = $1
	`
	var s models.SentimentRecord
	err := db.conn.QueryRow(query, newsID).Scan(&s.ID, &s.NewsID, &s.Score, &s.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sentiment record: %w", err)
	}
	return &s, nil
}
