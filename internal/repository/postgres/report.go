package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medicloud/docs-api/internal/model"
	"github.com/medicloud/docs-api/internal/repository"
	apperrors "github.com/medicloud/docs-api/pkg/errors"
)

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	query := `
		INSERT INTO reports (
			id, patient_name, report_type, date, status, content, notes,
			image_url, author_id, signed_by, signed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	report.ID = uuid.New()
	report.CreatedAt = time.Now()
	report.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.PatientName,
		report.ReportType,
		report.Date,
		report.Status,
		report.Content,
		report.Notes,
		report.ImageURL,
		report.AuthorID,
		report.SignedBy,
		report.SignedAt,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	query := `
		SELECT id, patient_name, report_type, date, status, content, notes,
			   image_url, author_id, signed_by, signed_at, created_at, updated_at
		FROM reports
		WHERE id = $1
	`
	var report model.Report
	err := r.db.GetContext(ctx, &report, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("report", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

// Update persists the full record; lifecycle transitions always write every
// field rather than a status-only patch.
func (r *reportRepository) Update(ctx context.Context, report *model.Report) error {
	query := `
		UPDATE reports
		SET patient_name = $1, report_type = $2, date = $3, status = $4,
			content = $5, notes = $6, image_url = $7, signed_by = $8,
			signed_at = $9, updated_at = $10
		WHERE id = $11
	`
	report.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		report.PatientName,
		report.ReportType,
		report.Date,
		report.Status,
		report.Content,
		report.Notes,
		report.ImageURL,
		report.SignedBy,
		report.SignedAt,
		report.UpdatedAt,
		report.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("report", nil)
	}
	return nil
}

func (r *reportRepository) List(ctx context.Context, filters *model.ReportFilters) ([]*model.Report, error) {
	query := `
		SELECT id, patient_name, report_type, date, status, content, notes,
			   image_url, author_id, signed_by, signed_at, created_at, updated_at
		FROM reports
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil && filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if filters != nil && filters.AuthorID != uuid.Nil {
		query += fmt.Sprintf(" AND author_id = $%d", argCount)
		args = append(args, filters.AuthorID)
		argCount++
	}

	query += " ORDER BY date DESC, created_at DESC"

	reports := []*model.Report{}
	err := r.db.SelectContext(ctx, &reports, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}
