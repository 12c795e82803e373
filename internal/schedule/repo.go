package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository reads schedule data from Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const sessionColumns = `
	SELECT s.id, COALESCE(c.course_name, ''), s.start_time::text, s.end_time::text, COALESCE(p.full_name, '')
	FROM schedules s
	LEFT JOIN courses c ON c.id = s.course_id
	LEFT JOIN profiles p ON p.id = s.teacher_id`

// SessionsForTeacher lists sessions the teacher instructs on the given day.
func (r *Repository) SessionsForTeacher(ctx context.Context, teacherID string, dayOfWeek int) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, sessionColumns+`
		WHERE s.teacher_id = $1 AND s.day_of_week = $2
	`, teacherID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// EnrolledCourseIDs returns the set of course ids the student is enrolled in.
func (r *Repository) EnrolledCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT course_id FROM enrollments WHERE student_id = $1
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SessionsForCourses lists sessions on the given day for any of the courses.
func (r *Repository) SessionsForCourses(ctx context.Context, courseIDs []string, dayOfWeek int) ([]Item, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	query := sessionColumns + ` WHERE s.day_of_week = $1 AND s.course_id IN (`
	args := []any{dayOfWeek}
	for i, id := range courseIDs {
		if i > 0 {
			query += ","
		}
		query += fmt.Sprintf("$%d", len(args)+1)
		args = append(args, id)
	}
	query += ")"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// IsTeacherOf reports whether the teacher is the instructor of record for
// the session.
func (r *Repository) IsTeacherOf(ctx context.Context, teacherID, scheduleID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM schedules WHERE id = $1 AND teacher_id = $2
	`, scheduleID, teacherID)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ScheduleID, &it.CourseName, &it.StartTime, &it.EndTime, &it.TeacherName); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
