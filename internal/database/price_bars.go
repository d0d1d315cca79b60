package database

import (
	"fmt"
	"time"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// CreatePriceBar inserts a single price bar. Bars are immutable: a bar that
// already exists for (symbol, date) is left untouched.
func (db *DB) CreatePriceBar(p *models.PriceBar) error {
	query := `
		INSERT INTO price_bars (symbol, date, open, high, low, close, volume, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, date) DO NOTHING
	`
	_, err := db.conn.Exec(query,
		p.Symbol, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create price bar: %w", err)
	}
	return nil
}

// CreatePriceBarBatch inserts multiple price bars in one transaction,
// skipping dates already stored for the symbol. The whole batch is rolled
// back if any insert fails.
func (db *DB) CreatePriceBarBatch(bars []*models.PriceBar) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO price_bars (symbol, date, open, high, low, close, volume, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, date) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range bars {
		_, err := stmt.Exec(p.Symbol, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume, now)
		if err != nil {
			return fmt.Errorf("failed to insert price bar for %s: %w", p.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPriceBars retrieves bars for a symbol within [from, to], ordered
// ascending by date.
func (db *DB) GetPriceBars(symbol string, from, to time.Time) ([]*models.PriceBar, error) {
	query := `
		SELECT id, symbol, date, open, high, low, close, volume, created_at
		FROM price_bars
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	rows, err := db.conn.Query(query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get price bars: %w", err)
	}
	defer rows.Close()

	var bars []*models.PriceBar
	for rows.Next() {
		var p models.PriceBar
		err := rows.Scan(
			&p.ID, &p.Symbol, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price bar: %w", err)
		}
		bars = append(bars, &p)
	}

	return bars, nil
}

// CountPriceBars returns the number of bars stored for a symbol within
// [from, to].
func (db *DB) CountPriceBars(symbol string, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM price_bars
		WHERE symbol = $1 AND date >= $2 AND date <= $3
	`
	var count int
	if err := db.conn.QueryRow(query, symbol, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count price bars: %w", err)
	}
	return count, nil
}

// DeletePriceBarsOlderThan removes bars older than the specified date.
func (db *DB) DeletePriceBarsOlderThan(date time.Time) (int64, error) {
	query := `DELETE FROM price_bars WHERE date < $1`
	result, err := db.conn.Exec(query, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old price bars: %w", err)
	}
	return result.RowsAffected()
}
