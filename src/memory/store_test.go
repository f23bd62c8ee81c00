package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDurable struct {
	mu      sync.Mutex
	threads map[Identity]Snapshot
	loads   atomic.Int32
	delay   time.Duration
	saveErr error
	loadErr error
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{threads: map[Identity]Snapshot{}}
}

func (f *fakeDurable) SaveThread(ctx context.Context, id Identity, snap Snapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threads[id] = snap
	return nil
}

func (f *fakeDurable) LoadThread(ctx context.Context, id Identity) (*Snapshot, error) {
	f.loads.Add(1)
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	snap, ok := f.threads[id]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (f *fakeDurable) DeleteThread(ctx context.Context, id Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.threads, id)
	return nil
}

func msg(role, content string) aisdk.Message {
	return aisdk.Message{Role: role, Content: content}
}

var alice = Identity{UserID: "alice", ThreadID: "t1"}

func TestHistoryKeepsMostRecent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for i := 0; i < 15; i++ {
		s.Append(ctx, alice, msg("user", fmt.Sprintf("m%d", i)))
	}

	got := s.History(ctx, alice, 10)
	require.Len(t, got, 10)
	for i, m := range got {
		assert.Equal(t, fmt.Sprintf("m%d", i+5), m.Content)
		assert.False(t, m.CreatedAt.IsZero())
	}

	assert.Len(t, s.History(ctx, alice, 0), 15, "non-positive limit returns everything")
	assert.Len(t, s.History(ctx, alice, 100), 15)
	assert.Empty(t, s.History(ctx, Identity{UserID: "nobody"}, 10))
}

func TestHistoryIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.Append(ctx, alice, msg("user", "hi"))

	h := s.History(ctx, alice, 0)
	h[0].Content = "changed"
	assert.Equal(t, "hi", s.History(ctx, alice, 0)[0].Content)
}

func TestIdentitiesAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	other := Identity{UserID: "alice", ThreadID: "t2"}

	s.Append(ctx, alice, msg("user", "one"))
	s.Append(ctx, other, msg("user", "two"))

	assert.Equal(t, "one", s.History(ctx, alice, 0)[0].Content)
	assert.Equal(t, "two", s.History(ctx, other, 0)[0].Content)
	assert.Equal(t, 2, s.Len())
}

func TestContextText(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	assert.Equal(t, "", s.ContextText(ctx, alice))

	s.Append(ctx, alice, msg("user", "how many students?"), msg("assistant", "5"))
	assert.Equal(t, "user: how many students?\nassistant: 5", s.ContextText(ctx, alice))

	s.SetAttachment(ctx, alice, "Syllabus text")
	assert.Equal(t, "Syllabus text\nuser: how many students?\nassistant: 5", s.ContextText(ctx, alice))
	assert.Equal(t, "Syllabus text", s.Attachment(ctx, alice))
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	d := newFakeDurable()
	s := NewStore(WithDurable(d))

	s.Append(ctx, alice, msg("user", "hi"))
	require.NoError(t, s.Persist(ctx, alice))

	require.NoError(t, s.Clear(ctx, alice))
	require.NoError(t, s.Clear(ctx, alice))
	assert.Empty(t, s.History(ctx, alice, 0))
	assert.Empty(t, d.threads, "durable copy is removed too")
}

func TestPersistAndReload(t *testing.T) {
	ctx := context.Background()
	d := newFakeDurable()

	s1 := NewStore(WithDurable(d))
	s1.SetAttachment(ctx, alice, "doc")
	s1.Append(ctx, alice, msg("user", "hi"), msg("assistant", "hello"))
	require.NoError(t, s1.Persist(ctx, alice))

	// a fresh process picks the thread up on first access
	s2 := NewStore(WithDurable(d))
	assert.Equal(t, "doc\nuser: hi\nassistant: hello", s2.ContextText(ctx, alice))

	s2.Append(ctx, alice, msg("user", "again"))
	assert.Len(t, s2.History(ctx, alice, 0), 3)
	assert.Len(t, d.threads[alice].Messages, 2, "memory is authoritative until the next persist")
}

func TestThreadsInMemory(t *testing.T) {
	ctx := context.Background()
	s := NewStore(WithDurable(newFakeDurable()))
	for _, thread := range []string{"b", "a"} {
		s.Append(ctx, Identity{UserID: "u", ThreadID: thread}, msg("user", "hi"))
	}
	s.Append(ctx, Identity{UserID: "v", ThreadID: "c"}, msg("user", "hi"))

	ids, err := s.Threads(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	ids, err = s.Threads(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPersistWithoutDurable(t *testing.T) {
	s := NewStore()
	s.Append(context.Background(), alice, msg("user", "hi"))
	assert.NoError(t, s.Persist(context.Background(), alice))
}

func TestPersistError(t *testing.T) {
	d := newFakeDurable()
	d.saveErr = errors.New("disk full")
	s := NewStore(WithDurable(d))
	s.Append(context.Background(), alice, msg("user", "hi"))

	err := s.Persist(context.Background(), alice)
	assert.ErrorIs(t, err, d.saveErr)
	assert.Len(t, s.History(context.Background(), alice, 0), 1)
}

func TestFailedLoadNeverOverwritesDurable(t *testing.T) {
	ctx := context.Background()
	d := newFakeDurable()
	stored := []aisdk.Message{msg("user", "q1"), msg("assistant", "a1"), msg("user", "q2"), msg("assistant", "a2")}
	d.threads[alice] = Snapshot{Attachment: "doc", Messages: stored}
	d.loadErr = errors.New("connection reset")
	s := NewStore(WithDurable(d))

	s.Append(ctx, alice, msg("user", "new"), msg("assistant", "reply"))

	err := s.Persist(ctx, alice)
	require.ErrorIs(t, err, ErrUnsynced)
	assert.Len(t, d.threads[alice].Messages, 4, "stored turns survive a failed load")

	d.loadErr = nil
	got := s.History(ctx, alice, 0)
	require.Len(t, got, 6)
	assert.Equal(t, "q1", got[0].Content)
	assert.Equal(t, "reply", got[5].Content)
	assert.Equal(t, "doc", s.Attachment(ctx, alice))

	require.NoError(t, s.Persist(ctx, alice))
	assert.Len(t, d.threads[alice].Messages, 6)
}

func TestPersistReloadsBeforeSaving(t *testing.T) {
	ctx := context.Background()
	d := newFakeDurable()
	d.threads[alice] = Snapshot{Messages: []aisdk.Message{msg("user", "old")}}
	d.loadErr = errors.New("timeout")
	s := NewStore(WithDurable(d))

	s.Append(ctx, alice, msg("user", "new"))
	d.loadErr = nil

	require.NoError(t, s.Persist(ctx, alice))
	saved := d.threads[alice].Messages
	require.Len(t, saved, 2)
	assert.Equal(t, "old", saved[0].Content)
	assert.Equal(t, "new", saved[1].Content)
}

func TestClearWaitsForIdentityLock(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.Append(ctx, alice, msg("user", "hi"))

	unlock, err := s.Lock(ctx, alice)
	require.NoError(t, err)

	cleared := make(chan error, 1)
	go func() { cleared <- s.Clear(ctx, alice) }()

	select {
	case <-cleared:
		t.Fatal("Clear ran while the identity was locked")
	case <-time.After(30 * time.Millisecond):
	}
	s.Append(ctx, alice, msg("assistant", "hello"))
	unlock()

	require.NoError(t, <-cleared)
	assert.Empty(t, s.History(ctx, alice, 0))

	tctx, cancel := context.WithCancel(ctx)
	unlock, err = s.Lock(ctx, alice)
	require.NoError(t, err)
	defer unlock()
	cancel()
	assert.ErrorIs(t, s.Clear(tctx, alice), context.Canceled)
}

func TestConcurrentLoadsAreShared(t *testing.T) {
	ctx := context.Background()
	d := newFakeDurable()
	d.threads[alice] = Snapshot{Messages: []aisdk.Message{msg("user", "stored")}}
	d.delay = 20 * time.Millisecond
	s := NewStore(WithDurable(d))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, s.History(ctx, alice, 0), 1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, d.loads.Load(), int32(2))
}

func TestLockSerializesIdentity(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var inside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := s.Lock(ctx, alice)
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			assert.EqualValues(t, 1, inside.Add(1))
			n := len(s.History(ctx, alice, 0))
			s.Append(ctx, alice, msg("user", fmt.Sprintf("%d", n)))
			inside.Add(-1)
		}()
	}
	wg.Wait()

	// every writer saw the previous writer's append
	for i, m := range s.History(ctx, alice, 0) {
		assert.Equal(t, fmt.Sprintf("%d", i), m.Content)
	}
}

func TestLockHonorsContext(t *testing.T) {
	s := NewStore()
	unlock, err := s.Lock(context.Background(), alice)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = s.Lock(ctx, alice)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// other identities are unaffected
	unlockOther, err := s.Lock(context.Background(), Identity{UserID: "bob", ThreadID: "t1"})
	require.NoError(t, err)
	unlockOther()

	unlock()
	unlock() // second call is a no-op

	unlock, err = s.Lock(context.Background(), alice)
	require.NoError(t, err)
	unlock()
}
