package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "scheduler.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedRoomAndUser(t *testing.T, db *DB) (roomID, userID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	userID = "user-1"
	err := NewUserRepository(db).CreateUser(ctx, persistence.User{
		ID:           userID,
		Email:        "staff@example.edu",
		DisplayName:  "Scheduling Staff",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	roomID = "room-1"
	err = NewRoomRepository(db).CreateRoom(ctx, persistence.Room{
		ID:        roomID,
		Name:      "Lecture Hall A",
		Code:      "LH-A",
		Building:  "Main",
		Capacity:  120,
		RoomType:  "auditorium",
		Features:  []string{"projector", "whiteboard"},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return roomID, userID
}

func makeReservation(id, roomID, userID, status string, start, end time.Time) persistence.Reservation {
	return persistence.Reservation{
		ID:        id,
		RoomID:    roomID,
		Title:     "Lecture",
		Start:     start,
		End:       end,
		EventType: "class",
		Status:    status,
		CreatedBy: userID,
		CreatedAt: start.Add(-24 * time.Hour),
		UpdatedAt: start.Add(-24 * time.Hour),
	}
}

func TestReservationRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	roomID, userID := seedRoomAndUser(t, db)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	start := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)
	group := "group-1"
	course := (*string)(nil)
	reservation := makeReservation("res-1", roomID, userID, "confirmed", start, start.Add(time.Hour))
	reservation.CourseID = course
	reservation.RecurringTemplateID = &group
	reservation.EquipmentNeeded = []string{"microphone"}
	reservation.AttendeeCount = 45

	if err := repo.CreateReservation(ctx, reservation); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetReservation(ctx, "res-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Start.Equal(start) || !got.End.Equal(start.Add(time.Hour)) {
		t.Fatalf("round-tripped window %v-%v, want %v-%v", got.Start, got.End, start, start.Add(time.Hour))
	}
	if got.RecurringTemplateID == nil || *got.RecurringTemplateID != group {
		t.Fatalf("recurring template id not preserved: %v", got.RecurringTemplateID)
	}
	if len(got.EquipmentNeeded) != 1 || got.EquipmentNeeded[0] != "microphone" {
		t.Fatalf("equipment not preserved: %v", got.EquipmentNeeded)
	}
	if got.AttendeeCount != 45 {
		t.Fatalf("attendee count = %d, want 45", got.AttendeeCount)
	}
}

func TestReservationRepository_GetMissing(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	repo := NewReservationRepository(db)

	_, err := repo.GetReservation(context.Background(), "absent")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReservationRepository_FindOverlapping(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	roomID, userID := seedRoomAndUser(t, db)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	base := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)
	occupying := []string{"pending", "confirmed"}

	seed := []persistence.Reservation{
		makeReservation("confirmed-1", roomID, userID, "confirmed", base, base.Add(time.Hour)),
		makeReservation("pending-1", roomID, userID, "pending", base.Add(3*time.Hour), base.Add(4*time.Hour)),
		makeReservation("cancelled-1", roomID, userID, "cancelled", base, base.Add(time.Hour)),
	}
	for _, reservation := range seed {
		if err := repo.CreateReservation(ctx, reservation); err != nil {
			t.Fatalf("seed %s: %v", reservation.ID, err)
		}
	}

	t.Run("overlapping confirmed row is reported", func(t *testing.T) {
		got, err := repo.FindOverlapping(ctx, roomID, base.Add(30*time.Minute), base.Add(90*time.Minute), occupying)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 1 || got[0].ID != "confirmed-1" {
			t.Fatalf("expected confirmed-1, got %v", got)
		}
	})

	t.Run("cancelled rows never block", func(t *testing.T) {
		got, err := repo.FindOverlapping(ctx, roomID, base.Add(90*time.Minute), base.Add(2*time.Hour), occupying)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no conflicts, got %v", got)
		}
	})

	t.Run("back-to-back windows do not overlap", func(t *testing.T) {
		got, err := repo.FindOverlapping(ctx, roomID, base.Add(time.Hour), base.Add(2*time.Hour), occupying)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("a window starting at another's end must not conflict, got %v", got)
		}
	})

	t.Run("pending rows block", func(t *testing.T) {
		got, err := repo.FindOverlapping(ctx, roomID, base.Add(3*time.Hour+30*time.Minute), base.Add(5*time.Hour), occupying)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 1 || got[0].ID != "pending-1" {
			t.Fatalf("expected pending-1, got %v", got)
		}
	})

	t.Run("other rooms are invisible", func(t *testing.T) {
		got, err := repo.FindOverlapping(ctx, "room-other", base, base.Add(8*time.Hour), occupying)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no conflicts in another room, got %v", got)
		}
	})

	t.Run("fractional-second timestamps compare chronologically", func(t *testing.T) {
		// A stored end of 10:00:00.5 must block a window starting at
		// 10:00:00. The string comparison in SQL only gets this right
		// because timestamps are written with a fixed-width fraction.
		start := base.Add(6 * time.Hour)
		end := start.Add(time.Hour).Add(500 * time.Millisecond)
		if err := repo.CreateReservation(ctx, makeReservation("fractional", roomID, userID, "confirmed", start, end)); err != nil {
			t.Fatalf("seed: %v", err)
		}

		got, err := repo.FindOverlapping(ctx, roomID, start.Add(time.Hour), start.Add(2*time.Hour), occupying)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 1 || got[0].ID != "fractional" {
			t.Fatalf("expected the fractional-second reservation to block, got %v", got)
		}
	})
}

func TestReservationRepository_UpdateReservationsByGroup(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	roomID, userID := seedRoomAndUser(t, db)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	base := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)
	group := "group-42"
	statuses := []string{"confirmed", "confirmed", "cancelled", "completed"}
	for i, status := range statuses {
		reservation := makeReservation(
			"member-"+string(rune('a'+i)), roomID, userID, status,
			base.AddDate(0, 0, i), base.AddDate(0, 0, i).Add(time.Hour))
		reservation.RecurringTemplateID = &group
		if err := repo.CreateReservation(ctx, reservation); err != nil {
			t.Fatalf("seed member %d: %v", i, err)
		}
	}

	cancelled := "cancelled"
	stamp := time.Date(2025, time.September, 5, 8, 0, 0, 0, time.UTC)
	affected, err := repo.UpdateReservationsByGroup(ctx, group,
		persistence.ReservationUpdate{Status: &cancelled, UpdatedAt: stamp},
		[]string{"cancelled", "completed"})
	if err != nil {
		t.Fatalf("group update: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected 2 rows cancelled, got %d", affected)
	}

	remaining, err := repo.ListReservations(ctx, persistence.ReservationFilter{
		GroupID:  &group,
		Statuses: []string{"completed"},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("completed member must survive a group cancel, got %v", remaining)
	}

	got, err := repo.GetReservation(ctx, "member-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.UpdatedAt.Equal(stamp) {
		t.Fatalf("updated_at = %v, want the caller's stamp %v", got.UpdatedAt, stamp)
	}
}

func TestReservationRepository_UpdateReservation(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	roomID, userID := seedRoomAndUser(t, db)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	start := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)
	if err := repo.CreateReservation(ctx, makeReservation("res-1", roomID, userID, "pending", start, start.Add(time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}

	confirmed := "confirmed"
	stamp := time.Date(2025, time.September, 2, 10, 30, 0, 0, time.UTC)
	err := repo.UpdateReservation(ctx, "res-1", persistence.ReservationUpdate{Status: &confirmed, UpdatedAt: stamp})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetReservation(ctx, "res-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "confirmed" {
		t.Fatalf("status = %q, want confirmed", got.Status)
	}
	if !got.UpdatedAt.Equal(stamp) {
		t.Fatalf("updated_at = %v, want the caller's stamp %v", got.UpdatedAt, stamp)
	}
}

func TestReservationRepository_MarkCompleted(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	roomID, userID := seedRoomAndUser(t, db)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	now := time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)
	seed := []persistence.Reservation{
		makeReservation("past-confirmed", roomID, userID, "confirmed", now.Add(-3*time.Hour), now.Add(-2*time.Hour)),
		makeReservation("past-pending", roomID, userID, "pending", now.Add(-3*time.Hour), now.Add(-2*time.Hour)),
		makeReservation("future-confirmed", roomID, userID, "confirmed", now.Add(2*time.Hour), now.Add(3*time.Hour)),
	}
	for _, reservation := range seed {
		if err := repo.CreateReservation(ctx, reservation); err != nil {
			t.Fatalf("seed %s: %v", reservation.ID, err)
		}
	}

	affected, err := repo.MarkCompleted(ctx, now)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row completed, got %d", affected)
	}

	got, err := repo.GetReservation(ctx, "past-confirmed")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "completed" {
		t.Fatalf("past confirmed reservation status = %q, want completed", got.Status)
	}

	pending, err := repo.GetReservation(ctx, "past-pending")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if pending.Status != "pending" {
		t.Fatalf("pending reservations must be left for staff review, got %q", pending.Status)
	}
}

func TestReservationRepository_ListFilters(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	roomID, userID := seedRoomAndUser(t, db)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	base := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		reservation := makeReservation(
			"listed-"+string(rune('a'+i)), roomID, userID, "confirmed",
			base.AddDate(0, 0, i), base.AddDate(0, 0, i).Add(time.Hour))
		if err := repo.CreateReservation(ctx, reservation); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	windowStart := base.AddDate(0, 0, 1)
	windowEnd := base.AddDate(0, 0, 3)
	got, err := repo.ListReservations(ctx, persistence.ReservationFilter{
		RoomID:      &roomID,
		StartsAfter: &windowStart,
		EndsBefore:  &windowEnd,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected the 2 reservations inside the window, got %d", len(got))
	}
	if !got[0].Start.Before(got[1].Start) {
		t.Fatalf("listing must be chronological: %v then %v", got[0].Start, got[1].Start)
	}
}

func TestReservationRepository_ForeignKeys(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	_, userID := seedRoomAndUser(t, db)
	repo := NewReservationRepository(db)

	start := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)
	err := repo.CreateReservation(context.Background(),
		makeReservation("orphan", "no-such-room", userID, "pending", start, start.Add(time.Hour)))
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}
