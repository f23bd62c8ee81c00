package storage

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// CreateActivityLog records an action taken on behalf of a student.
func CreateActivityLog(ctx context.Context, db Execer, entry *ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO activity_logs (id, student_id, action, detail, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, entry.ID, entry.StudentID, entry.Action, entry.Detail, entry.CreatedAt.UTC())
	return err
}

// CountActiveStudentsSince counts distinct students with activity at or after since.
func CountActiveStudentsSince(ctx context.Context, db sqlscan.Querier, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(DISTINCT student_id) FROM activity_logs WHERE created_at >= ?`
	err := sqlscan.Get(ctx, db, &count, query, since.UTC())
	return count, err
}

// ListActivity returns the newest entries first. An empty studentID lists all students.
func ListActivity(ctx context.Context, db sqlscan.Querier, studentID string, limit int) ([]ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	logs := []ActivityLog{}
	var err error
	if studentID == "" {
		err = sqlscan.Select(ctx, db, &logs, `SELECT id, student_id, action, detail, created_at FROM activity_logs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	} else {
		err = sqlscan.Select(ctx, db, &logs, `SELECT id, student_id, action, detail, created_at FROM activity_logs WHERE student_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, studentID, limit)
	}
	if err != nil {
		return nil, err
	}
	return logs, nil
}
