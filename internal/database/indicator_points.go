package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

const indicatorUpsertQuery = `
	INSERT INTO indicator_points (symbol, date, indicator_kind, parameters,
		value, signal_value, histogram, upper_band, lower_band, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (symbol, date, indicator_kind, parameters) DO UPDATE SET
		value = EXCLUDED.value,
		signal_value = EXCLUDED.signal_value,
		histogram = EXCLUDED.histogram,
		upper_band = EXCLUDED.upper_band,
		lower_band = EXCLUDED.lower_band
`

// payloadArgs maps the kind-dependent payload fields to their columns.
// Components a kind does not carry are stored as NULL.
func payloadArgs(p *models.IndicatorPoint) (signal, histogram, upper, lower sql.NullFloat64) {
	switch p.Kind {
	case models.KindMACD:
		signal = sql.NullFloat64{Float64: p.Signal, Valid: true}
		histogram = sql.NullFloat64{Float64: p.Histogram, Valid: true}
	case models.KindBBANDS:
		upper = sql.NullFloat64{Float64: p.Upper, Valid: true}
		lower = sql.NullFloat64{Float64: p.Lower, Valid: true}
	}
	return signal, histogram, upper, lower
}

// UpsertIndicatorPoint inserts an indicator point, overwriting the payload
// when a record already exists for the uniqueness key
// (symbol, date, kind, parameters).
func (db *DB) UpsertIndicatorPoint(p *models.IndicatorPoint) error {
	signal, histogram, upper, lower := payloadArgs(p)
	err := db.conn.QueryRow(indicatorUpsertQuery+` RETURNING id`,
		p.Symbol, p.Date, p.Kind, p.Parameters,
		p.Value, signal, histogram, upper, lower, time.Now(),
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert indicator point: %w", err)
	}
	return nil
}

// UpsertIndicatorPointBatch upserts multiple indicator points in one
// transaction. Each point is atomic on its uniqueness key; the whole batch
// is rolled back if any upsert fails.
func (db *DB) UpsertIndicatorPointBatch(points []*models.IndicatorPoint) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(indicatorUpsertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range points {
		signal, histogram, upper, lower := payloadArgs(p)
		_, err := stmt.Exec(p.Symbol, p.Date, p.Kind, p.Parameters,
			p.Value, signal, histogram, upper, lower, now)
		if err != nil {
			return fmt.Errorf("failed to upsert indicator point for %s: %w", p.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetIndicatorRange retrieves cached indicator points for the uniqueness key
// prefix intersecting [from, to], ordered ascending by date. Parameters must
// be in canonical form.
func (db *DB) GetIndicatorRange(symbol string, kind models.IndicatorKind, from, to time.Time, parameters string) ([]*models.IndicatorPoint, error) {
	query := `
		SELECT id, symbol, date, indicator_kind, parameters,
			value, signal_value, histogram, upper_band, lower_band, created_at
		FROM indicator_points
		WHERE symbol = $1 AND indicator_kind = $2 AND parameters = $3
			AND date >= $4 AND date <= $5
		ORDER BY date ASC
	`
	rows, err := db.conn.Query(query, symbol, kind, parameters, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get indicator points: %w", err)
	}
	defer rows.Close()

	var points []*models.IndicatorPoint
	for rows.Next() {
		p, err := scanIndicatorPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, nil
}

// CountIndicatorPoints returns the number of cached points for the key
// within [from, to]. Used by the orchestrator's coverage heuristic.
func (db *DB) CountIndicatorPoints(symbol string, kind models.IndicatorKind, from, to time.Time, parameters string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM indicator_points
		WHERE symbol = $1 AND indicator_kind = $2 AND parameters = $3
			AND date >= $4 AND date <= $5
	`
	var count int
	if err := db.conn.QueryRow(query, symbol, kind, parameters, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count indicator points: %w", err)
	}
	return count, nil
}

// DeleteIndicatorsBySymbol removes all indicator points for a symbol.
func (db *DB) DeleteIndicatorsBySymbol(symbol string) error {
	query := `DELETE FROM indicator_points WHERE symbol = $1`
	if _, err := db.conn.Exec(query, symbol); err != nil {
		return fmt.Errorf("failed to delete indicator points for %s: %w", symbol, err)
	}
	return nil
}

func scanIndicatorPoint(rows *sql.Rows) (*models.IndicatorPoint, error) {
	var p models.IndicatorPoint
	var signal, histogram, upper, lower sql.NullFloat64
	err := rows.Scan(
		&p.ID, &p.Symbol, &p.Date, &p.Kind, &p.Parameters,
		&p.Value, &signal, &histogram, &upper, &lower, &p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan indicator point: %w", err)
	}
	p.Signal = signal.Float64
	p.Histogram = histogram.Float64
	p.Upper = upper.Float64
	p.Lower = lower.Float64
	return &p, nil
}
