package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/campus-scheduler/internal/persistence"
)

// CatalogRepository persists the academic catalog: faculties, professors,
// courses, and academic periods. The four entities share one repository
// because they are administered together and have no query surface beyond
// CRUD.
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository constructs a catalog repository bound to db.
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateFaculty(ctx context.Context, faculty persistence.Faculty) error {
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO faculties (id, name, code, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		faculty.ID, faculty.Name, faculty.Code,
		formatTime(faculty.CreatedAt), formatTime(faculty.UpdatedAt))
	return mapError(err)
}

func (r *CatalogRepository) UpdateFaculty(ctx context.Context, faculty persistence.Faculty) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE faculties SET name = ?, code = ?, updated_at = ? WHERE id = ?`,
		faculty.Name, faculty.Code, formatTime(faculty.UpdatedAt), faculty.ID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *CatalogRepository) GetFaculty(ctx context.Context, id string) (persistence.Faculty, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, code, created_at, updated_at FROM faculties WHERE id = ?`, id)
	return scanFaculty(row)
}

func (r *CatalogRepository) ListFaculties(ctx context.Context) ([]persistence.Faculty, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, name, code, created_at, updated_at FROM faculties ORDER BY code`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var faculties []persistence.Faculty
	for rows.Next() {
		faculty, err := scanFaculty(rows)
		if err != nil {
			return nil, err
		}
		faculties = append(faculties, faculty)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return faculties, nil
}

func (r *CatalogRepository) DeleteFaculty(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM faculties WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func scanFaculty(row rowScanner) (persistence.Faculty, error) {
	var (
		faculty   persistence.Faculty
		createdAt string
		updatedAt string
	)
	err := row.Scan(&faculty.ID, &faculty.Name, &faculty.Code, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Faculty{}, mapError(err)
	}
	if faculty.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Faculty{}, err
	}
	if faculty.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Faculty{}, err
	}
	return faculty, nil
}

func (r *CatalogRepository) CreateProfessor(ctx context.Context, professor persistence.Professor) error {
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO professors (id, full_name, email, faculty_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		professor.ID, professor.FullName, professor.Email,
		toNullString(professor.FacultyID),
		formatTime(professor.CreatedAt), formatTime(professor.UpdatedAt))
	return mapError(err)
}

func (r *CatalogRepository) UpdateProfessor(ctx context.Context, professor persistence.Professor) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE professors SET full_name = ?, email = ?, faculty_id = ?, updated_at = ? WHERE id = ?`,
		professor.FullName, professor.Email, toNullString(professor.FacultyID),
		formatTime(professor.UpdatedAt), professor.ID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *CatalogRepository) GetProfessor(ctx context.Context, id string) (persistence.Professor, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, full_name, email, faculty_id, created_at, updated_at FROM professors WHERE id = ?`, id)
	return scanProfessor(row)
}

func (r *CatalogRepository) ListProfessors(ctx context.Context) ([]persistence.Professor, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, full_name, email, faculty_id, created_at, updated_at FROM professors ORDER BY full_name`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var professors []persistence.Professor
	for rows.Next() {
		professor, err := scanProfessor(rows)
		if err != nil {
			return nil, err
		}
		professors = append(professors, professor)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return professors, nil
}

func (r *CatalogRepository) DeleteProfessor(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM professors WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func scanProfessor(row rowScanner) (persistence.Professor, error) {
	var (
		professor persistence.Professor
		facultyID sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(&professor.ID, &professor.FullName, &professor.Email,
		&facultyID, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Professor{}, mapError(err)
	}
	professor.FacultyID = fromNullString(facultyID)
	if professor.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Professor{}, err
	}
	if professor.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Professor{}, err
	}
	return professor, nil
}

func (r *CatalogRepository) CreateCourse(ctx context.Context, course persistence.Course) error {
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO courses (id, name, code, professor_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		course.ID, course.Name, course.Code, toNullString(course.ProfessorID),
		formatTime(course.CreatedAt), formatTime(course.UpdatedAt))
	return mapError(err)
}

func (r *CatalogRepository) UpdateCourse(ctx context.Context, course persistence.Course) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE courses SET name = ?, code = ?, professor_id = ?, updated_at = ? WHERE id = ?`,
		course.Name, course.Code, toNullString(course.ProfessorID),
		formatTime(course.UpdatedAt), course.ID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *CatalogRepository) GetCourse(ctx context.Context, id string) (persistence.Course, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, code, professor_id, created_at, updated_at FROM courses WHERE id = ?`, id)
	return scanCourse(row)
}

func (r *CatalogRepository) ListCourses(ctx context.Context) ([]persistence.Course, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, name, code, professor_id, created_at, updated_at FROM courses ORDER BY code`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var courses []persistence.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return courses, nil
}

func (r *CatalogRepository) DeleteCourse(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func scanCourse(row rowScanner) (persistence.Course, error) {
	var (
		course      persistence.Course
		professorID sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&course.ID, &course.Name, &course.Code, &professorID, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Course{}, mapError(err)
	}
	course.ProfessorID = fromNullString(professorID)
	if course.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Course{}, err
	}
	if course.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Course{}, err
	}
	return course, nil
}

func (r *CatalogRepository) CreateAcademicPeriod(ctx context.Context, period persistence.AcademicPeriod) error {
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO academic_periods (id, name, period_type, starts_on, ends_on, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		period.ID, period.Name, period.PeriodType,
		formatTime(period.StartsOn), formatTime(period.EndsOn), period.IsActive,
		formatTime(period.CreatedAt), formatTime(period.UpdatedAt))
	return mapError(err)
}

func (r *CatalogRepository) UpdateAcademicPeriod(ctx context.Context, period persistence.AcademicPeriod) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE academic_periods SET name = ?, period_type = ?, starts_on = ?, ends_on = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		period.Name, period.PeriodType,
		formatTime(period.StartsOn), formatTime(period.EndsOn), period.IsActive,
		formatTime(period.UpdatedAt), period.ID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *CatalogRepository) GetAcademicPeriod(ctx context.Context, id string) (persistence.AcademicPeriod, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, period_type, starts_on, ends_on, is_active, created_at, updated_at
		FROM academic_periods WHERE id = ?`, id)
	return scanAcademicPeriod(row)
}

func (r *CatalogRepository) ListAcademicPeriods(ctx context.Context, activeOnly bool) ([]persistence.AcademicPeriod, error) {
	query := `SELECT id, name, period_type, starts_on, ends_on, is_active, created_at, updated_at
		FROM academic_periods`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY starts_on`

	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var periods []persistence.AcademicPeriod
	for rows.Next() {
		period, err := scanAcademicPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return periods, nil
}

func (r *CatalogRepository) DeleteAcademicPeriod(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM academic_periods WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func scanAcademicPeriod(row rowScanner) (persistence.AcademicPeriod, error) {
	var (
		period    persistence.AcademicPeriod
		startsOn  string
		endsOn    string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&period.ID, &period.Name, &period.PeriodType,
		&startsOn, &endsOn, &period.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return persistence.AcademicPeriod{}, mapError(err)
	}
	if period.StartsOn, err = parseTime(startsOn); err != nil {
		return persistence.AcademicPeriod{}, err
	}
	if period.EndsOn, err = parseTime(endsOn); err != nil {
		return persistence.AcademicPeriod{}, err
	}
	if period.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.AcademicPeriod{}, err
	}
	if period.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.AcademicPeriod{}, err
	}
	return period, nil
}
