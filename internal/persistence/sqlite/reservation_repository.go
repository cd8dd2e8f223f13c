package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
)

// ReservationRepository persists reservations in SQLite.
type ReservationRepository struct {
	db *DB
}

// NewReservationRepository constructs a reservation repository bound to db.
func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, room_id, course_id, title, description, notes,
	start_datetime, end_datetime, event_type, status, attendee_count,
	equipment_needed, recurring_template_id, created_by, created_at, updated_at`

func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	equipment, err := encodeList(reservation.EquipmentNeeded)
	if err != nil {
		return err
	}

	_, err = r.db.conn.ExecContext(ctx, `INSERT INTO reservations (`+reservationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reservation.ID,
		reservation.RoomID,
		toNullString(reservation.CourseID),
		reservation.Title,
		reservation.Description,
		reservation.Notes,
		formatTime(reservation.Start),
		formatTime(reservation.End),
		reservation.EventType,
		reservation.Status,
		reservation.AttendeeCount,
		equipment,
		toNullString(reservation.RecurringTemplateID),
		reservation.CreatedBy,
		formatTime(reservation.CreatedAt),
		formatTime(reservation.UpdatedAt),
	)
	return mapError(err)
}

func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	return scanReservation(row)
}

func (r *ReservationRepository) UpdateReservation(ctx context.Context, id string, update persistence.ReservationUpdate) error {
	assignments := []string{"updated_at = ?"}
	args := []any{formatTime(update.UpdatedAt)}

	if update.Status != nil {
		assignments = append(assignments, "status = ?")
		args = append(args, *update.Status)
	}
	if update.RecurringTemplateID != nil {
		assignments = append(assignments, "recurring_template_id = ?")
		args = append(args, *update.RecurringTemplateID)
	}
	args = append(args, id)

	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE reservations SET `+strings.Join(assignments, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	var conditions []string
	var args []any

	if filter.RoomID != nil {
		conditions = append(conditions, "room_id = ?")
		args = append(args, *filter.RoomID)
	}
	if filter.GroupID != nil {
		conditions = append(conditions, "recurring_template_id = ?")
		args = append(args, *filter.GroupID)
	}
	if len(filter.Statuses) > 0 {
		conditions = append(conditions, "status IN ("+placeholders(len(filter.Statuses))+")")
		for _, status := range filter.Statuses {
			args = append(args, status)
		}
	}
	if filter.StartsAfter != nil {
		conditions = append(conditions, "end_datetime > ?")
		args = append(args, formatTime(*filter.StartsAfter))
	}
	if filter.EndsBefore != nil {
		conditions = append(conditions, "start_datetime < ?")
		args = append(args, formatTime(*filter.EndsBefore))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_datetime, id"

	return r.queryReservations(ctx, query, args...)
}

// FindOverlapping returns reservations in roomID whose interval intersects
// the half-open window [start, end) and whose status is one of statuses.
// Two intervals overlap when each starts before the other ends.
func (r *ReservationRepository) FindOverlapping(ctx context.Context, roomID string, start, end time.Time, statuses []string) ([]persistence.Reservation, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE room_id = ?
		AND status IN (` + placeholders(len(statuses)) + `)
		AND start_datetime < ?
		AND end_datetime > ?
		ORDER BY start_datetime, id`

	args := []any{roomID}
	for _, status := range statuses {
		args = append(args, status)
	}
	args = append(args, formatTime(end), formatTime(start))

	return r.queryReservations(ctx, query, args...)
}

func (r *ReservationRepository) UpdateReservationsByGroup(ctx context.Context, groupID string, update persistence.ReservationUpdate, excludeStatuses []string) (int64, error) {
	assignments := []string{"updated_at = ?"}
	args := []any{formatTime(update.UpdatedAt)}

	if update.Status != nil {
		assignments = append(assignments, "status = ?")
		args = append(args, *update.Status)
	}
	if update.RecurringTemplateID != nil {
		assignments = append(assignments, "recurring_template_id = ?")
		args = append(args, *update.RecurringTemplateID)
	}

	query := `UPDATE reservations SET ` + strings.Join(assignments, ", ") + ` WHERE recurring_template_id = ?`
	args = append(args, groupID)

	if len(excludeStatuses) > 0 {
		query += ` AND status NOT IN (` + placeholders(len(excludeStatuses)) + `)`
		for _, status := range excludeStatuses {
			args = append(args, status)
		}
	}

	result, err := r.db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return affected, nil
}

func (r *ReservationRepository) MarkCompleted(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE reservations SET status = 'completed', updated_at = ?
		WHERE status = 'confirmed' AND end_datetime <= ?`,
		formatTime(before), formatTime(before))
	if err != nil {
		return 0, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return affected, nil
}

func (r *ReservationRepository) queryReservations(ctx context.Context, query string, args ...any) ([]persistence.Reservation, error) {
	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return reservations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var (
		reservation persistence.Reservation
		courseID    sql.NullString
		groupID     sql.NullString
		start       string
		end         string
		equipment   string
		createdAt   string
		updatedAt   string
	)

	err := row.Scan(
		&reservation.ID,
		&reservation.RoomID,
		&courseID,
		&reservation.Title,
		&reservation.Description,
		&reservation.Notes,
		&start,
		&end,
		&reservation.EventType,
		&reservation.Status,
		&reservation.AttendeeCount,
		&equipment,
		&groupID,
		&reservation.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}

	reservation.CourseID = fromNullString(courseID)
	reservation.RecurringTemplateID = fromNullString(groupID)

	if reservation.Start, err = parseTime(start); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.End, err = parseTime(end); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.EquipmentNeeded, err = decodeList(equipment); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Reservation{}, err
	}
	return reservation, nil
}
