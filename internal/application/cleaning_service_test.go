package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
)

type stubCleaningRepo struct {
	reports map[string]persistence.CleaningReport
	order   []string
}

func newStubCleaningRepo() *stubCleaningRepo {
	return &stubCleaningRepo{reports: map[string]persistence.CleaningReport{}}
}

func (r *stubCleaningRepo) CreateCleaningReport(_ context.Context, report persistence.CleaningReport) error {
	for _, existing := range r.reports {
		if existing.RoomID == report.RoomID && existing.ReportDate.Equal(report.ReportDate) {
			return persistence.ErrDuplicate
		}
	}
	r.reports[report.ID] = report
	r.order = append(r.order, report.ID)
	return nil
}

func (r *stubCleaningRepo) GetCleaningReport(_ context.Context, id string) (persistence.CleaningReport, error) {
	report, ok := r.reports[id]
	if !ok {
		return persistence.CleaningReport{}, persistence.ErrNotFound
	}
	return report, nil
}

func (r *stubCleaningRepo) ListCleaningReports(_ context.Context, date time.Time) ([]persistence.CleaningReport, error) {
	var result []persistence.CleaningReport
	for _, id := range r.order {
		if r.reports[id].ReportDate.Equal(date) {
			result = append(result, r.reports[id])
		}
	}
	return result, nil
}

func (r *stubCleaningRepo) UpdateCleaningReport(_ context.Context, report persistence.CleaningReport) error {
	if _, ok := r.reports[report.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.reports[report.ID] = report
	return nil
}

func newTestCleaningService(repo *stubCleaningRepo) *CleaningReportService {
	sequence := 0
	rooms := &stubRoomRepo{rooms: map[string]persistence.Room{
		"room-1": {ID: "room-1", Name: "Lecture Hall A", Code: "LH-A"},
		"room-2": {ID: "room-2", Name: "Lab 2", Code: "LAB-2"},
	}}
	return NewCleaningReportService(
		repo, rooms,
		func() string { sequence++; return fmt.Sprintf("report-%03d", sequence) },
		func() time.Time { return time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC) },
	)
}

func TestCleaningReportService_GenerateDailyReports(t *testing.T) {
	t.Parallel()

	t.Run("creates one blank report per room", func(t *testing.T) {
		t.Parallel()
		repo := newStubCleaningRepo()
		service := newTestCleaningService(repo)

		date := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
		reports, err := service.GenerateDailyReports(context.Background(), date)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(reports) != 2 {
			t.Fatalf("expected a report per room, got %d", len(reports))
		}
		for _, report := range reports {
			if report.IsCleaned || report.CleanedAt != nil {
				t.Fatalf("generated report must start uncleaned: %+v", report)
			}
			if !report.ReportDate.Equal(date) {
				t.Fatalf("report date = %v, want %v", report.ReportDate, date)
			}
		}
	})

	t.Run("rerunning keeps existing reports", func(t *testing.T) {
		t.Parallel()
		repo := newStubCleaningRepo()
		service := newTestCleaningService(repo)
		ctx := context.Background()

		date := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
		first, err := service.GenerateDailyReports(ctx, date)
		if err != nil {
			t.Fatalf("first generate: %v", err)
		}

		// The crew marks a room cleaned before the second generation.
		if _, err := service.UpdateReport(ctx, first[0].ID, CleaningReportParams{IsCleaned: true, CleanedBy: "Crew A"}); err != nil {
			t.Fatalf("update: %v", err)
		}

		second, err := service.GenerateDailyReports(ctx, date)
		if err != nil {
			t.Fatalf("second generate: %v", err)
		}
		if len(second) != 2 {
			t.Fatalf("regeneration must not add rows, got %d", len(second))
		}
		got, _ := repo.GetCleaningReport(ctx, first[0].ID)
		if !got.IsCleaned {
			t.Fatal("regeneration must not reset a filed report")
		}
	})

	t.Run("the time of day does not split dates", func(t *testing.T) {
		t.Parallel()
		repo := newStubCleaningRepo()
		service := newTestCleaningService(repo)
		ctx := context.Background()

		morning := time.Date(2025, time.September, 1, 8, 0, 0, 0, time.UTC)
		evening := time.Date(2025, time.September, 1, 20, 0, 0, 0, time.UTC)
		if _, err := service.GenerateDailyReports(ctx, morning); err != nil {
			t.Fatalf("generate: %v", err)
		}
		reports, err := service.GenerateDailyReports(ctx, evening)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(reports) != 2 {
			t.Fatalf("same calendar day must reuse the reports, got %d", len(reports))
		}
	})
}

func TestCleaningReportService_UpdateReport(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) (*CleaningReportService, *stubCleaningRepo, string) {
		t.Helper()
		repo := newStubCleaningRepo()
		service := newTestCleaningService(repo)
		date := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
		reports, err := service.GenerateDailyReports(context.Background(), date)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		return service, repo, reports[0].ID
	}

	t.Run("marking cleaned stamps the clock", func(t *testing.T) {
		t.Parallel()
		service, _, id := seed(t)

		report, err := service.UpdateReport(context.Background(), id, CleaningReportParams{
			IsCleaned: true,
			CleanedBy: "Crew A",
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		want := time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC)
		if report.CleanedAt == nil || !report.CleanedAt.Equal(want) {
			t.Fatalf("cleaned_at = %v, want the service clock %v", report.CleanedAt, want)
		}
	})

	t.Run("unmarking clears the stamp", func(t *testing.T) {
		t.Parallel()
		service, repo, id := seed(t)
		ctx := context.Background()

		if _, err := service.UpdateReport(ctx, id, CleaningReportParams{IsCleaned: true}); err != nil {
			t.Fatalf("mark cleaned: %v", err)
		}
		if _, err := service.UpdateReport(ctx, id, CleaningReportParams{IsCleaned: false}); err != nil {
			t.Fatalf("unmark: %v", err)
		}
		got, _ := repo.GetCleaningReport(ctx, id)
		if got.IsCleaned || got.CleanedAt != nil {
			t.Fatalf("unmarking must clear the stamp: %+v", got)
		}
	})

	t.Run("records observations and notes", func(t *testing.T) {
		t.Parallel()
		service, repo, id := seed(t)

		_, err := service.UpdateReport(context.Background(), id, CleaningReportParams{
			Observations: []string{"graffiti on wall"},
			Notes:        "reported to maintenance",
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		got, _ := repo.GetCleaningReport(context.Background(), id)
		if len(got.Observations) != 1 || got.Notes != "reported to maintenance" {
			t.Fatalf("observations not stored: %+v", got)
		}
	})

	t.Run("unknown report is reported as not found", func(t *testing.T) {
		t.Parallel()
		service := newTestCleaningService(newStubCleaningRepo())

		_, err := service.UpdateReport(context.Background(), "absent", CleaningReportParams{})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
