package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockroom/internal/models"
)

type AIReportRepository interface {
	Create(rep *models.AIReport) error
	List(reportType string, limit, offset int) ([]*models.AIReport, error)
	CreateAnomaly(a *models.AIAnomaly) error
	ListAnomalies(limit int) ([]*models.AIAnomaly, error)
}

type aiReportRepository struct {
	DB *sql.DB
}

func NewAIReportRepository(db *sql.DB) AIReportRepository {
	return &aiReportRepository{DB: db}
}

func (r *aiReportRepository) Create(rep *models.AIReport) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now()
	}
	data := rep.Data
	if len(data) == 0 {
		data = []byte("{}")
	}
	const q = `
		INSERT INTO ai_reports (id, report_type, raw, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.DB.Exec(q, rep.ID, rep.ReportType, rep.Raw, []byte(data), rep.CreatedAt); err != nil {
		return fmt.Errorf("ai_report create: %w", err)
	}
	return nil
}

func (r *aiReportRepository) List(reportType string, limit, offset int) ([]*models.AIReport, error) {
	q := `SELECT id, report_type, raw, data, created_at FROM ai_reports`
	args := []any{}
	if reportType != "" {
		q += ` WHERE report_type = $1`
		args = append(args, reportType)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("ai_report list: %w", err)
	}
	defer rows.Close()

	var out []*models.AIReport
	for rows.Next() {
		rep := &models.AIReport{}
		var data []byte
		if err := rows.Scan(&rep.ID, &rep.ReportType, &rep.Raw, &data, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("ai_report scan: %w", err)
		}
		rep.Data = data
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *aiReportRepository) CreateAnomaly(a *models.AIAnomaly) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.Level == "" {
		a.Level = "warning"
	}
	const q = `INSERT INTO ai_anomalies (id, message, level, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.DB.Exec(q, a.ID, a.Message, a.Level, a.CreatedAt); err != nil {
		return fmt.Errorf("ai_anomaly create: %w", err)
	}
	return nil
}

func (r *aiReportRepository) ListAnomalies(limit int) ([]*models.AIAnomaly, error) {
	q := fmt.Sprintf(`SELECT id, message, level, created_at FROM ai_anomalies ORDER BY created_at DESC LIMIT %d`, limit)
	rows, err := r.DB.Query(q)
	if err != nil {
		return nil, fmt.Errorf("ai_anomaly list: %w", err)
	}
	defer rows.Close()

	var out []*models.AIAnomaly
	for rows.Next() {
		a := &models.AIAnomaly{}
		if err := rows.Scan(&a.ID, &a.Message, &a.Level, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("ai_anomaly scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
