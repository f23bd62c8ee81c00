package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

const studentColumns = `id, student_id, name, department, email, is_active, created_at, updated_at`

// StudentFields lists the columns update_student may change.
var StudentFields = []string{"name", "department", "email"}

// GetStudent retrieves a student by public student ID. Returns nil, nil when absent.
func GetStudent(ctx context.Context, db sqlscan.Querier, studentID string) (*Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE student_id = ?`
	var s Student
	err := sqlscan.Get(ctx, db, &s, query, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// CreateStudent inserts a new active student. Fails with ErrStudentExists
// when the student ID is taken.
func CreateStudent(ctx context.Context, db ExecQuerier, student *Student) error {
	existing, err := GetStudent(ctx, db, student.StudentID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", ErrStudentExists, student.StudentID)
	}

	if student.ID == "" {
		student.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	if student.UpdatedAt.IsZero() {
		student.UpdatedAt = now
	}
	student.IsActive = true

	query := `INSERT INTO students (` + studentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.ExecContext(ctx, query,
		student.ID,
		student.StudentID,
		student.Name,
		student.Department,
		student.Email,
		student.IsActive,
		student.CreatedAt,
		student.UpdatedAt,
	)
	return err
}

// ListStudents returns every student in enrollment order.
func ListStudents(ctx context.Context, db sqlscan.Querier) ([]Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY created_at, rowid`
	students := []Student{}
	if err := sqlscan.Select(ctx, db, &students, query); err != nil {
		return nil, err
	}
	return students, nil
}

// UpdateStudentField sets one editable field. Reports false when no student matched.
func UpdateStudentField(ctx context.Context, db Execer, studentID, field, value string) (bool, error) {
	if !isStudentField(field) {
		return false, fmt.Errorf("%w '%s', allowed fields: %v", ErrInvalidField, field, StudentFields)
	}

	// field is checked against StudentFields above, so it is safe to splice.
	query := fmt.Sprintf(`UPDATE students SET %s = ?, updated_at = ? WHERE student_id = ?`, field)
	res, err := db.ExecContext(ctx, query, value, time.Now().UTC(), studentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteStudent removes a student. Reports false when no student matched.
func DeleteStudent(ctx context.Context, db Execer, studentID string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM students WHERE student_id = ?`, studentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountActiveStudents counts students flagged active.
func CountActiveStudents(ctx context.Context, db sqlscan.Querier) (int, error) {
	var count int
	err := sqlscan.Get(ctx, db, &count, `SELECT COUNT(*) FROM students WHERE is_active = 1`)
	return count, err
}

// CountStudentsByDepartment groups active students by department.
func CountStudentsByDepartment(ctx context.Context, db sqlscan.Querier) ([]DepartmentCount, error) {
	query := `SELECT department, COUNT(*) AS count FROM students WHERE is_active = 1 GROUP BY department ORDER BY department`
	counts := []DepartmentCount{}
	if err := sqlscan.Select(ctx, db, &counts, query); err != nil {
		return nil, err
	}
	return counts, nil
}

// RecentStudents returns the newest active students, newest first.
func RecentStudents(ctx context.Context, db sqlscan.Querier, limit int) ([]Student, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `SELECT ` + studentColumns + ` FROM students WHERE is_active = 1 ORDER BY created_at DESC, rowid DESC LIMIT ?`
	students := []Student{}
	if err := sqlscan.Select(ctx, db, &students, query, limit); err != nil {
		return nil, err
	}
	return students, nil
}

func isStudentField(field string) bool {
	for _, f := range StudentFields {
		if f == field {
			return true
		}
	}
	return false
}
