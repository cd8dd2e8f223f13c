package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/campus-scheduler/internal/persistence"
)

// RoomRepository persists the room catalog in SQLite.
type RoomRepository struct {
	db *DB
}

// NewRoomRepository constructs a room repository bound to db.
func NewRoomRepository(db *DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = `id, name, code, building, capacity, room_type, features, faculty_id, created_at, updated_at`

func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	features, err := encodeList(room.Features)
	if err != nil {
		return err
	}

	_, err = r.db.conn.ExecContext(ctx, `INSERT INTO rooms (`+roomColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.Name, room.Code, room.Building, room.Capacity,
		room.RoomType, features, toNullString(room.FacultyID),
		formatTime(room.CreatedAt), formatTime(room.UpdatedAt))
	return mapError(err)
}

func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	features, err := encodeList(room.Features)
	if err != nil {
		return err
	}

	result, err := r.db.conn.ExecContext(ctx, `UPDATE rooms SET
		name = ?, code = ?, building = ?, capacity = ?, room_type = ?,
		features = ?, faculty_id = ?, updated_at = ?
		WHERE id = ?`,
		room.Name, room.Code, room.Building, room.Capacity, room.RoomType,
		features, toNullString(room.FacultyID), formatTime(room.UpdatedAt),
		room.ID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	return scanRoom(row)
}

func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+roomColumns+` FROM rooms ORDER BY code`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return rooms, nil
}

func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var (
		room      persistence.Room
		features  string
		facultyID sql.NullString
		createdAt string
		updatedAt string
	)

	err := row.Scan(&room.ID, &room.Name, &room.Code, &room.Building,
		&room.Capacity, &room.RoomType, &features, &facultyID,
		&createdAt, &updatedAt)
	if err != nil {
		return persistence.Room{}, mapError(err)
	}

	room.FacultyID = fromNullString(facultyID)
	if room.Features, err = decodeList(features); err != nil {
		return persistence.Room{}, err
	}
	if room.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Room{}, err
	}
	if room.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
