package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// CreateReport stores a rendered report. Reports are write-once.
func (db *DB) CreateReport(r *models.Report) error {
	query := `
		INSERT INTO reports (title, symbols, report_type, content_html, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := db.conn.QueryRow(query,
		r.Title, r.Symbols, r.ReportType, r.ContentHTML, time.Now(),
	).Scan(&r.ID, &r.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetReportByID retrieves a report including its rendered content.
func (db *DB) GetReportByID(id int) (*models.Report, error) {
	query := `
		SELECT id, title, symbols, report_type, content_html, created_at
		FROM reports
		WHERE id = $1
	`
	var r models.Report
	err := db.conn.QueryRow(query, id).Scan(
		&r.ID, &r.Title, &r.Symbols, &r.ReportType, &r.ContentHTML, &r.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &r, nil
}

// ListReports retrieves report metadata (without content), newest first.
func (db *DB) ListReports(limit int) ([]*models.Report, error) {
	query := `
		SELECT id, title, symbols, report_type, created_at
		FROM reports
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		var r models.Report
		err := rows.Scan(&r.ID, &r.Title, &r.Symbols, &r.ReportType, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, &r)
	}

	return reports, nil
}
