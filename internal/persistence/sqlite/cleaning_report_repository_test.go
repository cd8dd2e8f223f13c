package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
)

func makeCleaningReport(id, roomID string, date time.Time) persistence.CleaningReport {
	return persistence.CleaningReport{
		ID:         id,
		RoomID:     roomID,
		ReportDate: date,
		CreatedAt:  date,
		UpdatedAt:  date,
	}
}

func TestCleaningReportRepository_Lifecycle(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	roomID, _ := seedRoomAndUser(t, db)
	repo := NewCleaningReportRepository(db)
	ctx := context.Background()

	date := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.CreateCleaningReport(ctx, makeCleaningReport("report-1", roomID, date)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetCleaningReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IsCleaned {
		t.Fatal("a fresh report must start uncleaned")
	}
	if !got.ReportDate.Equal(date) {
		t.Fatalf("report date = %v, want %v", got.ReportDate, date)
	}
	if got.CleanedAt != nil {
		t.Fatalf("cleaned_at must start unset, got %v", got.CleanedAt)
	}

	cleanedAt := time.Date(2025, time.September, 1, 14, 30, 0, 0, time.UTC)
	got.IsCleaned = true
	got.CleanedBy = "Facilities Crew B"
	got.CleanedAt = &cleanedAt
	got.Observations = []string{"broken chair", "projector lamp out"}
	got.Notes = "chair moved to storage"
	got.UpdatedAt = cleanedAt
	if err := repo.UpdateCleaningReport(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	updated, err := repo.GetCleaningReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if !updated.IsCleaned || updated.CleanedBy != "Facilities Crew B" {
		t.Fatalf("cleaning state not persisted: %+v", updated)
	}
	if updated.CleanedAt == nil || !updated.CleanedAt.Equal(cleanedAt) {
		t.Fatalf("cleaned_at = %v, want %v", updated.CleanedAt, cleanedAt)
	}
	if len(updated.Observations) != 2 {
		t.Fatalf("observations not persisted: %v", updated.Observations)
	}
}

func TestCleaningReportRepository_OneReportPerRoomAndDate(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	roomID, _ := seedRoomAndUser(t, db)
	repo := NewCleaningReportRepository(db)
	ctx := context.Background()

	date := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.CreateCleaningReport(ctx, makeCleaningReport("report-1", roomID, date)); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := repo.CreateCleaningReport(ctx, makeCleaningReport("report-2", roomID, date))
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for the same room and date, got %v", err)
	}

	nextDay := date.AddDate(0, 0, 1)
	if err := repo.CreateCleaningReport(ctx, makeCleaningReport("report-3", roomID, nextDay)); err != nil {
		t.Fatalf("next day must be allowed: %v", err)
	}
}

func TestCleaningReportRepository_ListByDate(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	roomID, _ := seedRoomAndUser(t, db)
	repo := NewCleaningReportRepository(db)
	ctx := context.Background()

	date := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.CreateCleaningReport(ctx, makeCleaningReport("report-1", roomID, date)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.CreateCleaningReport(ctx, makeCleaningReport("report-2", roomID, date.AddDate(0, 0, 1))); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := repo.ListCleaningReports(ctx, date)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "report-1" {
		t.Fatalf("expected only the report for the date, got %v", got)
	}
}

func TestCleaningReportRepository_RequiresRoom(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	repo := NewCleaningReportRepository(db)

	date := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	err := repo.CreateCleaningReport(context.Background(),
		makeCleaningReport("orphan", "no-such-room", date))
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}
