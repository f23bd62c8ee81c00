package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/elee1766/campusadmin/src/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLDurableRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(filepath.Join(t.TempDir(), "campus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	d := NewSQLDurable(db)

	snap, err := d.LoadThread(ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, d.SaveThread(ctx, alice, Snapshot{
		Attachment: "notes",
		Messages:   []aisdk.Message{msg("user", "hi"), msg("assistant", "hello")},
	}))
	require.NoError(t, d.SaveThread(ctx, alice, Snapshot{
		Attachment: "notes v2",
		Messages:   []aisdk.Message{msg("user", "hi"), msg("assistant", "hello"), msg("user", "bye")},
	}))

	snap, err = d.LoadThread(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "notes v2", snap.Attachment)
	require.Len(t, snap.Messages, 3)
	assert.Equal(t, "bye", snap.Messages[2].Content)

	s := NewStore(WithDurable(d))
	require.NoError(t, s.Clear(ctx, alice))
	snap, err = d.LoadThread(ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSQLDurableListThreads(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(filepath.Join(t.TempDir(), "campus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	d := NewSQLDurable(db)
	s := NewStore(WithDurable(d))

	persisted := Identity{UserID: alice.UserID, ThreadID: "saved"}
	s.Append(ctx, persisted, msg("user", "hi"))
	require.NoError(t, s.Persist(ctx, persisted))
	s.Append(ctx, Identity{UserID: alice.UserID, ThreadID: "scratch"}, msg("user", "draft"))
	s.Append(ctx, Identity{UserID: "someone-else", ThreadID: "other"}, msg("user", "hey"))

	ids, err := d.ListThreads(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"saved"}, ids)

	ids, err = s.Threads(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"saved", "scratch"}, ids)
}
