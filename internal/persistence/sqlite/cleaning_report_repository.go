package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
)

// CleaningReportRepository persists daily cleaning reports in SQLite.
type CleaningReportRepository struct {
	db *DB
}

// NewCleaningReportRepository constructs a cleaning report repository bound to db.
func NewCleaningReportRepository(db *DB) *CleaningReportRepository {
	return &CleaningReportRepository{db: db}
}

const cleaningReportColumns = `id, room_id, report_date, is_cleaned, cleaned_by,
	cleaned_at, observations, notes, created_at, updated_at`

func (r *CleaningReportRepository) CreateCleaningReport(ctx context.Context, report persistence.CleaningReport) error {
	observations, err := encodeList(report.Observations)
	if err != nil {
		return err
	}

	_, err = r.db.conn.ExecContext(ctx, `INSERT INTO cleaning_reports (`+cleaningReportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.RoomID, formatDate(report.ReportDate), report.IsCleaned,
		report.CleanedBy, toNullTime(report.CleanedAt), observations, report.Notes,
		formatTime(report.CreatedAt), formatTime(report.UpdatedAt))
	return mapError(err)
}

func (r *CleaningReportRepository) GetCleaningReport(ctx context.Context, id string) (persistence.CleaningReport, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+cleaningReportColumns+` FROM cleaning_reports WHERE id = ?`, id)
	return scanCleaningReport(row)
}

func (r *CleaningReportRepository) ListCleaningReports(ctx context.Context, date time.Time) ([]persistence.CleaningReport, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+cleaningReportColumns+` FROM cleaning_reports
		WHERE report_date = ? ORDER BY room_id`, formatDate(date))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reports []persistence.CleaningReport
	for rows.Next() {
		report, err := scanCleaningReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return reports, nil
}

func (r *CleaningReportRepository) UpdateCleaningReport(ctx context.Context, report persistence.CleaningReport) error {
	observations, err := encodeList(report.Observations)
	if err != nil {
		return err
	}

	result, err := r.db.conn.ExecContext(ctx, `UPDATE cleaning_reports SET
		is_cleaned = ?, cleaned_by = ?, cleaned_at = ?, observations = ?,
		notes = ?, updated_at = ?
		WHERE id = ?`,
		report.IsCleaned, report.CleanedBy, toNullTime(report.CleanedAt),
		observations, report.Notes, formatTime(report.UpdatedAt), report.ID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func scanCleaningReport(row rowScanner) (persistence.CleaningReport, error) {
	var (
		report       persistence.CleaningReport
		reportDate   string
		cleanedAt    sql.NullString
		observations string
		createdAt    string
		updatedAt    string
	)

	err := row.Scan(&report.ID, &report.RoomID, &reportDate, &report.IsCleaned,
		&report.CleanedBy, &cleanedAt, &observations, &report.Notes,
		&createdAt, &updatedAt)
	if err != nil {
		return persistence.CleaningReport{}, mapError(err)
	}

	if report.ReportDate, err = parseDate(reportDate); err != nil {
		return persistence.CleaningReport{}, err
	}
	if report.CleanedAt, err = fromNullTime(cleanedAt); err != nil {
		return persistence.CleaningReport{}, err
	}
	if report.Observations, err = decodeList(observations); err != nil {
		return persistence.CleaningReport{}, err
	}
	if report.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.CleaningReport{}, err
	}
	if report.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.CleaningReport{}, err
	}
	return report, nil
}
