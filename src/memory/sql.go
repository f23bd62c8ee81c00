package memory

import (
	"context"
	"database/sql"

	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/elee1766/campusadmin/src/storage"
)

// SQLDurable keeps thread snapshots in the campus database.
type SQLDurable struct {
	db *storage.DB
}

// NewSQLDurable creates a durable backend over db.
func NewSQLDurable(db *storage.DB) *SQLDurable {
	return &SQLDurable{db: db}
}

func (d *SQLDurable) SaveThread(ctx context.Context, id Identity, snap Snapshot) error {
	header := &storage.Thread{UserID: id.UserID, ThreadID: id.ThreadID, Attachment: snap.Attachment}
	if existing, err := storage.GetThread(ctx, d.db.DB(), id.UserID, id.ThreadID); err != nil {
		return err
	} else if existing != nil {
		header.CreatedAt = existing.CreatedAt
	}

	rows := make([]storage.ThreadMessage, len(snap.Messages))
	for i, m := range snap.Messages {
		rows[i] = storage.ThreadMessage{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt}
	}

	return d.db.WithTx(ctx, func(tx *sql.Tx) error {
		return storage.ReplaceThread(ctx, tx, header, rows)
	})
}

func (d *SQLDurable) LoadThread(ctx context.Context, id Identity) (*Snapshot, error) {
	header, err := storage.GetThread(ctx, d.db.DB(), id.UserID, id.ThreadID)
	if err != nil || header == nil {
		return nil, err
	}

	rows, err := storage.GetThreadMessages(ctx, d.db.DB(), id.UserID, id.ThreadID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Attachment: header.Attachment, Messages: make([]aisdk.Message, len(rows))}
	for i, r := range rows {
		snap.Messages[i] = aisdk.Message{Role: r.Role, Content: r.Content, CreatedAt: r.CreatedAt}
	}
	return snap, nil
}

func (d *SQLDurable) DeleteThread(ctx context.Context, id Identity) error {
	return d.db.WithTx(ctx, func(tx *sql.Tx) error {
		return storage.DeleteThread(ctx, tx, id.UserID, id.ThreadID)
	})
}

// ListThreads returns a user's persisted thread ids, most recent first.
func (d *SQLDurable) ListThreads(ctx context.Context, userID string) ([]string, error) {
	threads, err := storage.ListThreads(ctx, d.db.DB(), userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(threads))
	for i, t := range threads {
		ids[i] = t.ThreadID
	}
	return ids, nil
}

var (
	_ Durable      = (*SQLDurable)(nil)
	_ ThreadLister = (*SQLDurable)(nil)
)
