package sqlite

import (
	"context"

	"github.com/example/campus-scheduler/internal/persistence"
)

// UserRepository persists staff accounts in SQLite.
type UserRepository struct {
	db *DB
}

// NewUserRepository constructs a user repository bound to db.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, display_name, password_hash, is_admin, created_at, updated_at`

func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	_, err := r.db.conn.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash,
		user.IsAdmin, formatTime(user.CreatedAt), formatTime(user.UpdatedAt))
	return mapError(err)
}

func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	result, err := r.db.conn.ExecContext(ctx, `UPDATE users SET
		email = ?, display_name = ?, password_hash = ?, is_admin = ?, updated_at = ?
		WHERE id = ?`,
		user.Email, user.DisplayName, user.PasswordHash, user.IsAdmin,
		formatTime(user.UpdatedAt), user.ID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user      persistence.User
		createdAt string
		updatedAt string
	)

	err := row.Scan(&user.ID, &user.Email, &user.DisplayName,
		&user.PasswordHash, &user.IsAdmin, &createdAt, &updatedAt)
	if err != nil {
		return persistence.User{}, mapError(err)
	}

	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}
