// Package memory keeps per-identity conversation history in process memory,
// optionally backed by a durable store.
package memory

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/elee1766/campusadmin/src/aisdk"
	"golang.org/x/sync/singleflight"
)

const shardCount = 32

// Identity scopes one conversation.
type Identity struct {
	UserID   string
	ThreadID string
}

func (id Identity) String() string {
	return id.UserID + "/" + id.ThreadID
}

// Snapshot is the durable form of a thread.
type Snapshot struct {
	Attachment string          `json:"attachment,omitempty"`
	Messages   []aisdk.Message `json:"messages"`
}

// ErrUnsynced is returned by Persist when the durable copy of a thread
// could not be read and saving would overwrite it.
var ErrUnsynced = errors.New("durable thread not loaded")

// Durable stores thread snapshots outside the process.
// LoadThread returns nil, nil for unknown identities.
type Durable interface {
	SaveThread(ctx context.Context, id Identity, snap Snapshot) error
	LoadThread(ctx context.Context, id Identity) (*Snapshot, error)
	DeleteThread(ctx context.Context, id Identity) error
}

// ThreadLister is implemented by durable backends that can enumerate a
// user's threads.
type ThreadLister interface {
	ListThreads(ctx context.Context, userID string) ([]string, error)
}

type thread struct {
	attachment string
	messages   []aisdk.Message
	// unsynced is set when the durable copy could not be read. Such a
	// thread is merged behind the stored one on the next successful load
	// and is never saved over it.
	unsynced bool
}

// identityLock is a context-aware mutex shared by every holder of the same
// identity. refs counts holders and waiters so idle locks can be dropped.
type identityLock struct {
	ch   chan struct{}
	refs int
}

type shard struct {
	mu      sync.Mutex
	threads map[Identity]*thread
	locks   map[Identity]*identityLock
}

// Store is the process-wide conversation store. Identities are spread over
// a fixed set of shards so unrelated conversations do not contend.
type Store struct {
	shards  [shardCount]shard
	durable Durable
	loads   singleflight.Group
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithDurable enables persistence and on-demand loading.
func WithDurable(d Durable) Option {
	return func(s *Store) { s.durable = d }
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "memory")
	for i := range s.shards {
		s.shards[i].threads = make(map[Identity]*thread)
		s.shards[i].locks = make(map[Identity]*identityLock)
	}
	return s
}

func (s *Store) shardFor(id Identity) *shard {
	h := fnv.New32a()
	h.Write([]byte(id.UserID))
	h.Write([]byte{0})
	h.Write([]byte(id.ThreadID))
	return &s.shards[h.Sum32()%shardCount]
}

// Lock enters the identity's critical section. The returned func releases
// it and must be called exactly once.
func (s *Store) Lock(ctx context.Context, id Identity) (func(), error) {
	sh := s.shardFor(id)

	sh.mu.Lock()
	l := sh.locks[id]
	if l == nil {
		l = &identityLock{ch: make(chan struct{}, 1)}
		sh.locks[id] = l
	}
	l.refs++
	sh.mu.Unlock()

	release := func() {
		sh.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(sh.locks, id)
		}
		sh.mu.Unlock()
	}

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		release()
		return nil, fmt.Errorf("lock %s: %w", id, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			release()
		})
	}, nil
}

// load returns the in-memory thread, consulting the durable backend on a
// miss or when an earlier load failed. A failed load is reported so the
// caller can mark the thread as not reconciled with the backend.
func (s *Store) load(ctx context.Context, id Identity) (*thread, error) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	t := sh.threads[id]
	sh.mu.Unlock()
	if s.durable == nil || (t != nil && !t.unsynced) {
		return t, nil
	}

	v, err, _ := s.loads.Do(id.String(), func() (any, error) {
		snap, err := s.durable.LoadThread(ctx, id)
		if err != nil {
			return (*thread)(nil), err
		}

		sh.mu.Lock()
		defer sh.mu.Unlock()
		existing := sh.threads[id]
		switch {
		case existing != nil && existing.unsynced:
			// turns added while the backend was unreachable go after the
			// stored ones
			if snap != nil {
				existing.messages = append(append([]aisdk.Message{}, snap.Messages...), existing.messages...)
				if existing.attachment == "" {
					existing.attachment = snap.Attachment
				}
			}
			existing.unsynced = false
			s.logger.Debug("thread reconciled", "identity", id.String(), "messages", len(existing.messages))
			return existing, nil
		case existing != nil:
			return existing, nil
		case snap == nil:
			return (*thread)(nil), nil
		}
		t := &thread{attachment: snap.Attachment, messages: snap.Messages}
		sh.threads[id] = t
		s.logger.Debug("thread loaded", "identity", id.String(), "messages", len(t.messages))
		return t, nil
	})
	if err != nil {
		s.logger.Warn("failed to load thread", "identity", id.String(), "error", err)
		return nil, err
	}
	return v.(*thread), nil
}

// update runs fn on the identity's thread, creating it if needed. A thread
// created after a failed load is marked unsynced so it never replaces the
// durable copy before the two are reconciled.
func (s *Store) update(ctx context.Context, id Identity, fn func(t *thread)) {
	_, loadErr := s.load(ctx, id)

	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	t := sh.threads[id]
	if t == nil {
		t = &thread{unsynced: loadErr != nil}
		sh.threads[id] = t
	}
	fn(t)
}

// view runs fn on a consistent view of the thread. fn sees nil when the
// identity has no state.
func (s *Store) view(ctx context.Context, id Identity, fn func(t *thread)) {
	s.load(ctx, id)

	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fn(sh.threads[id])
}

// Append adds messages to the end of the identity's history.
func (s *Store) Append(ctx context.Context, id Identity, msgs ...aisdk.Message) {
	now := time.Now().UTC()
	s.update(ctx, id, func(t *thread) {
		for _, m := range msgs {
			if m.CreatedAt.IsZero() {
				m.CreatedAt = now
			}
			t.messages = append(t.messages, m)
		}
	})
}

// History returns up to maxTurns of the most recent messages in their
// original order. maxTurns <= 0 returns everything.
func (s *Store) History(ctx context.Context, id Identity, maxTurns int) []aisdk.Message {
	var out []aisdk.Message
	s.view(ctx, id, func(t *thread) {
		if t == nil {
			return
		}
		msgs := t.messages
		if maxTurns > 0 && len(msgs) > maxTurns {
			msgs = msgs[len(msgs)-maxTurns:]
		}
		out = make([]aisdk.Message, len(msgs))
		copy(out, msgs)
	})
	return out
}

// SetAttachment replaces the identity's auxiliary document text.
func (s *Store) SetAttachment(ctx context.Context, id Identity, text string) {
	s.update(ctx, id, func(t *thread) { t.attachment = text })
}

// Attachment returns the identity's auxiliary document text.
func (s *Store) Attachment(ctx context.Context, id Identity) string {
	var out string
	s.view(ctx, id, func(t *thread) {
		if t != nil {
			out = t.attachment
		}
	})
	return out
}

// ContextText renders the attachment followed by "role: content" lines.
func (s *Store) ContextText(ctx context.Context, id Identity) string {
	var parts []string
	s.view(ctx, id, func(t *thread) {
		if t == nil {
			return
		}
		if t.attachment != "" {
			parts = append(parts, t.attachment)
		}
		for _, m := range t.messages {
			parts = append(parts, m.Role+": "+m.Content)
		}
	})
	return strings.Join(parts, "\n")
}

// Clear drops the identity's state from memory and from the durable
// backend. Clearing an unknown identity is a no-op. Clear enters the
// identity's critical section, so it waits for a run in progress and must
// not be called while holding Lock for the same identity.
func (s *Store) Clear(ctx context.Context, id Identity) error {
	unlock, err := s.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	sh := s.shardFor(id)
	sh.mu.Lock()
	delete(sh.threads, id)
	sh.mu.Unlock()

	if s.durable == nil {
		return nil
	}
	if err := s.durable.DeleteThread(ctx, id); err != nil {
		return fmt.Errorf("clear %s: %w", id, err)
	}
	return nil
}

// Persist copies the identity's current state to the durable backend.
// Memory stays authoritative for the rest of the process lifetime. A thread
// whose stored copy could not be loaded is reloaded first; if that still
// fails Persist returns ErrUnsynced and leaves the backend untouched.
func (s *Store) Persist(ctx context.Context, id Identity) error {
	if s.durable == nil {
		return nil
	}

	var snap *Snapshot
	unsynced := false
	s.view(ctx, id, func(t *thread) {
		if t == nil {
			return
		}
		if t.unsynced {
			unsynced = true
			return
		}
		snap = &Snapshot{Attachment: t.attachment, Messages: make([]aisdk.Message, len(t.messages))}
		copy(snap.Messages, t.messages)
	})
	if unsynced {
		return fmt.Errorf("persist %s: %w", id, ErrUnsynced)
	}
	if snap == nil {
		return nil
	}

	if err := s.durable.SaveThread(ctx, id, *snap); err != nil {
		return fmt.Errorf("persist %s: %w", id, err)
	}
	s.logger.Debug("thread persisted", "identity", id.String(), "messages", len(snap.Messages))
	return nil
}

// Len returns the number of identities held in memory.
func (s *Store) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.threads)
		sh.mu.Unlock()
	}
	return n
}

// Threads lists the thread ids known for userID. Durable threads come first
// in the backend's order, followed by threads that only exist in memory,
// sorted by id.
func (s *Store) Threads(ctx context.Context, userID string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	if lister, ok := s.durable.(ThreadLister); ok {
		ids, err := lister.ListThreads(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list threads of %s: %w", userID, err)
		}
		for _, id := range ids {
			seen[id] = true
		}
		out = append(out, ids...)
	}

	var local []string
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for id := range sh.threads {
			if id.UserID == userID && !seen[id.ThreadID] {
				local = append(local, id.ThreadID)
			}
		}
		sh.mu.Unlock()
	}
	sort.Strings(local)
	return append(out, local...), nil
}
