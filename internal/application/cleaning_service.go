package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/campus-scheduler/internal/logging"
	"github.com/example/campus-scheduler/internal/persistence"
)

// CleaningReportService manages the daily cleaning checklist: one report per
// room and date, filled in by the cleaning crew over the day.
type CleaningReportService struct {
	reports     persistence.CleaningReportRepository
	rooms       persistence.RoomRepository
	idGenerator func() string
	now         func() time.Time
}

func NewCleaningReportService(
	reports persistence.CleaningReportRepository,
	rooms persistence.RoomRepository,
	idGenerator func() string,
	now func() time.Time,
) *CleaningReportService {
	return &CleaningReportService{
		reports:     reports,
		rooms:       rooms,
		idGenerator: idGenerator,
		now:         now,
	}
}

// CleaningReportParams carries the fields the crew fills in on a report.
type CleaningReportParams struct {
	IsCleaned    bool
	CleanedBy    string
	Observations []string
	Notes        string
}

// GenerateDailyReports creates a blank report for every room that does not
// have one on the given date yet, and returns the full set for that date.
// Calling it again for the same date is a no-op for existing rows.
func (s *CleaningReportService) GenerateDailyReports(ctx context.Context, date time.Time) (reports []persistence.CleaningReport, err error) {
	defer s.logFailure(ctx, "generate cleaning reports", &err)

	date = s.normalizeDate(date)
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	existing, err := s.reports.ListCleaningReports(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list cleaning reports: %w", err)
	}

	covered := make(map[string]bool, len(existing))
	for _, report := range existing {
		covered[report.RoomID] = true
	}

	now := s.now()
	created := 0
	for _, room := range rooms {
		if covered[room.ID] {
			continue
		}
		report := persistence.CleaningReport{
			ID:         s.idGenerator(),
			RoomID:     room.ID,
			ReportDate: date,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.reports.CreateCleaningReport(ctx, report); err != nil {
			// A concurrent generation may have filed this room already.
			if errors.Is(err, persistence.ErrDuplicate) {
				continue
			}
			return nil, fmt.Errorf("store cleaning report: %w", err)
		}
		created++
	}

	if created > 0 {
		logging.FromContext(ctx).InfoContext(ctx, "cleaning reports generated",
			slog.String("date", date.Format("2006-01-02")),
			slog.Int("created", created))
	}

	reports, err = s.reports.ListCleaningReports(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list cleaning reports: %w", err)
	}
	return reports, nil
}

// ListReports returns the reports filed for a date. A zero date means today.
func (s *CleaningReportService) ListReports(ctx context.Context, date time.Time) ([]persistence.CleaningReport, error) {
	reports, err := s.reports.ListCleaningReports(ctx, s.normalizeDate(date))
	if err != nil {
		return nil, fmt.Errorf("list cleaning reports: %w", err)
	}
	return reports, nil
}

// UpdateReport records the crew's checklist entries for one report. Marking
// a room cleaned stamps the time; unmarking it clears the stamp again.
func (s *CleaningReportService) UpdateReport(ctx context.Context, id string, params CleaningReportParams) (report persistence.CleaningReport, err error) {
	defer s.logFailure(ctx, "update cleaning report", &err)

	report, err = s.reports.GetCleaningReport(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.CleaningReport{}, fmt.Errorf("cleaning report %s: %w", id, ErrNotFound)
		}
		return persistence.CleaningReport{}, fmt.Errorf("load cleaning report: %w", err)
	}

	switch {
	case params.IsCleaned && !report.IsCleaned:
		cleanedAt := s.now()
		report.CleanedAt = &cleanedAt
	case !params.IsCleaned:
		report.CleanedAt = nil
	}
	report.IsCleaned = params.IsCleaned
	report.CleanedBy = params.CleanedBy
	report.Observations = params.Observations
	report.Notes = params.Notes
	report.UpdatedAt = s.now()

	if err := s.reports.UpdateCleaningReport(ctx, report); err != nil {
		return persistence.CleaningReport{}, fmt.Errorf("store cleaning report: %w", err)
	}
	return report, nil
}

// normalizeDate truncates to the calendar day, defaulting to today.
func (s *CleaningReportService) normalizeDate(date time.Time) time.Time {
	if date.IsZero() {
		date = s.now()
	}
	date = date.UTC()
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *CleaningReportService) logFailure(ctx context.Context, operation string, err *error) {
	if *err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, operation+" failed",
			slog.String("error_kind", ErrorKind(*err)),
			slog.String("error", (*err).Error()))
	}
}
