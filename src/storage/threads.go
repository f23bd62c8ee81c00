package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// GetThread retrieves a thread header. Returns nil, nil when absent.
func GetThread(ctx context.Context, db sqlscan.Querier, userID, threadID string) (*Thread, error) {
	query := `SELECT user_id, thread_id, attachment, created_at, updated_at FROM threads WHERE user_id = ? AND thread_id = ?`
	var t Thread
	err := sqlscan.Get(ctx, db, &t, query, userID, threadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListThreads returns a user's threads, most recently updated first.
func ListThreads(ctx context.Context, db sqlscan.Querier, userID string) ([]Thread, error) {
	query := `SELECT user_id, thread_id, attachment, created_at, updated_at FROM threads WHERE user_id = ? ORDER BY updated_at DESC`
	threads := []Thread{}
	if err := sqlscan.Select(ctx, db, &threads, query, userID); err != nil {
		return nil, err
	}
	return threads, nil
}

// GetThreadMessages returns a thread's messages in sequence order.
func GetThreadMessages(ctx context.Context, db sqlscan.Querier, userID, threadID string) ([]ThreadMessage, error) {
	query := `SELECT id, user_id, thread_id, seq, role, content, created_at FROM thread_messages WHERE user_id = ? AND thread_id = ? ORDER BY seq`
	messages := []ThreadMessage{}
	if err := sqlscan.Select(ctx, db, &messages, query, userID, threadID); err != nil {
		return nil, err
	}
	return messages, nil
}

// ReplaceThread overwrites the stored copy of a thread with the given
// header and messages. Run it inside a transaction.
func ReplaceThread(ctx context.Context, db Execer, thread *Thread, messages []ThreadMessage) error {
	now := time.Now().UTC()
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = now
	}
	thread.UpdatedAt = now

	upsert := `INSERT INTO threads (user_id, thread_id, attachment, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, thread_id) DO UPDATE SET attachment = excluded.attachment, updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, upsert, thread.UserID, thread.ThreadID, thread.Attachment, thread.CreatedAt, thread.UpdatedAt); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM thread_messages WHERE user_id = ? AND thread_id = ?`, thread.UserID, thread.ThreadID); err != nil {
		return err
	}

	insert := `INSERT INTO thread_messages (id, user_id, thread_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	for i := range messages {
		m := &messages[i]
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.UserID, m.ThreadID, m.Seq = thread.UserID, thread.ThreadID, i
		if _, err := db.ExecContext(ctx, insert, m.ID, m.UserID, m.ThreadID, m.Seq, m.Role, m.Content, m.CreatedAt.UTC()); err != nil {
			return err
		}
	}
	return nil
}

// DeleteThread removes a thread and its messages.
func DeleteThread(ctx context.Context, db Execer, userID, threadID string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM thread_messages WHERE user_id = ? AND thread_id = ?`, userID, threadID); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `DELETE FROM threads WHERE user_id = ? AND thread_id = ?`, userID, threadID)
	return err
}
