package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
	"github.com/Zuo-Peng/framechat/internal/logging"
)

// Store holds every chat session and the active session id. All mutations
// write the full snapshot to the backend before returning; a failed write
// rolls the in-memory state back.
type Store struct {
	mu      sync.Mutex
	backend Backend
	log     *logging.Logger
	now     func() time.Time
	newID   func() string

	sessions map[string]*Session
	order    []string
	active   string
}

type Option func(*Store)

func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the chat_<uuid> id scheme.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Open loads the store from backend. Missing data yields a fresh store holding
// only the default session. Corrupt data is logged, discarded and replaced
// with a fresh store which is written back immediately.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		log:     logging.Nop(),
		now:     time.Now,
		newID:   func() string { return "chat_" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := backend.Load(ctx)
	if err == nil && snap != nil {
		err = snap.Validate()
	}

	switch {
	case err != nil && errors.Is(err, apperrors.ErrCorrupt):
		s.log.Warn("chat", "discarding corrupt chat store", map[string]interface{}{"error": err})
		s.reset()
		if err := s.save(ctx); err != nil {
			return nil, fmt.Errorf("rewrite chat store: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load chat store: %w", err)
	case snap == nil:
		s.reset()
	default:
		s.apply(snap)
	}

	return s, nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) reset() {
	now := s.now()
	s.sessions = map[string]*Session{
		DefaultSessionID: {ID: DefaultSessionID, Name: DefaultSessionName, Messages: []Message{}, CreatedAt: now},
	}
	s.order = []string{DefaultSessionID}
	s.active = DefaultSessionID
}

func (s *Store) apply(snap *Snapshot) {
	s.sessions = make(map[string]*Session, len(snap.Sessions))
	s.order = make([]string, 0, len(snap.Sessions))
	for _, sess := range snap.Sessions {
		c := sess.clone()
		s.sessions[c.ID] = &c
		s.order = append(s.order, c.ID)
	}
	s.active = snap.ActiveID
	if _, ok := s.sessions[s.active]; !ok {
		s.log.Debug("chat", "persisted active session missing, using default", map[string]interface{}{"active_id": snap.ActiveID})
		s.active = DefaultSessionID
	}
}

func (s *Store) snapshotLocked() *Snapshot {
	snap := &Snapshot{ActiveID: s.active, Sessions: make([]Session, 0, len(s.order))}
	for _, id := range s.order {
		snap.Sessions = append(snap.Sessions, s.sessions[id].clone())
	}
	return snap
}

func (s *Store) save(ctx context.Context) error {
	return s.backend.Save(ctx, s.snapshotLocked())
}

// mutate runs fn under the lock and persists the result, restoring the
// previous state if either fn or the write fails.
func (s *Store) mutate(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snapshotLocked()
	if err := fn(); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		s.apply(prev)
		return fmt.Errorf("persist chat store: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Active returns a copy of the active session.
func (s *Store) Active() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[s.active].clone()
}

// Sessions returns copies of all sessions in display order.
func (s *Store) Sessions() []Session {
	return s.Snapshot().Sessions
}

func (s *Store) Session(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return sess.clone(), true
}

// Resolve maps a session id or name to an id. Ids win over names.
func (s *Store) Resolve(ref string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked(ref)
}

func (s *Store) resolveLocked(ref string) (string, bool) {
	if _, ok := s.sessions[ref]; ok {
		return ref, true
	}
	for _, id := range s.order {
		if s.sessions[id].Name == ref {
			return id, true
		}
	}
	return "", false
}

func (s *Store) nameTakenLocked(name string) bool {
	for _, sess := range s.sessions {
		if sess.Name == name {
			return true
		}
	}
	return false
}

// CreateSession adds a session and makes it active.
func (s *Store) CreateSession(ctx context.Context, name string) (Session, error) {
	name = strings.TrimSpace(name)
	var created Session
	err := s.mutate(ctx, func() error {
		if name == "" {
			return &SessionError{Op: "create", Ref: name, Err: ErrEmptyName}
		}
		if s.nameTakenLocked(name) {
			return &SessionError{Op: "create", Ref: name, Err: ErrNameTaken}
		}
		sess := &Session{ID: s.newID(), Name: name, Messages: []Message{}, CreatedAt: s.now()}
		s.sessions[sess.ID] = sess
		s.order = append(s.order, sess.ID)
		s.active = sess.ID
		created = sess.clone()
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	s.log.Info("chat", "session created", map[string]interface{}{"id": created.ID, "name": created.Name})
	return created, nil
}

// SwitchSession makes id the active session. An unknown id fails with
// ErrNotFound and leaves the active session unchanged.
func (s *Store) SwitchSession(ctx context.Context, id string) error {
	return s.mutate(ctx, func() error {
		if _, ok := s.sessions[id]; !ok {
			return &SessionError{Op: "switch", Ref: id, Err: apperrors.ErrNotFound}
		}
		s.active = id
		return nil
	})
}

// AppendMessage appends msg to the session with the given id.
func (s *Store) AppendMessage(ctx context.Context, id string, msg Message) error {
	if msg.Role == "" {
		msg.Role = RoleUser
	}
	return s.mutate(ctx, func() error {
		sess, ok := s.sessions[id]
		if !ok {
			return &SessionError{Op: "append", Ref: id, Err: apperrors.ErrNotFound}
		}
		if strings.TrimSpace(msg.Text) == "" && msg.Image == nil {
			return &SessionError{Op: "append", Ref: id, Err: ErrEmptyMessage}
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = s.now()
		}
		if msg.Image != nil {
			img := *msg.Image
			msg.Image = &img
		}
		sess.Messages = append(sess.Messages, msg)
		return nil
	})
}

// ClearActive empties the active session in place.
func (s *Store) ClearActive(ctx context.Context) error {
	return s.mutate(ctx, func() error {
		s.sessions[s.active].Messages = []Message{}
		return nil
	})
}

// ClearAll drops every session and leaves a single empty default session.
func (s *Store) ClearAll(ctx context.Context) error {
	err := s.mutate(ctx, func() error {
		s.reset()
		return nil
	})
	if err == nil {
		s.log.Info("chat", "all sessions cleared", nil)
	}
	return err
}

// DeleteSession removes the session identified by id or name. The default
// session is never removed. Deleting the active session activates default.
func (s *Store) DeleteSession(ctx context.Context, ref string) (Session, error) {
	var deleted Session
	err := s.mutate(ctx, func() error {
		id, ok := s.resolveLocked(ref)
		if !ok {
			return &SessionError{Op: "delete", Ref: ref, Err: apperrors.ErrNotFound}
		}
		if id == DefaultSessionID {
			return &SessionError{Op: "delete", Ref: ref, Err: ErrDefaultSession}
		}
		deleted = s.sessions[id].clone()
		delete(s.sessions, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		if s.active == id {
			s.active = DefaultSessionID
		}
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	s.log.Info("chat", "session deleted", map[string]interface{}{"id": deleted.ID, "name": deleted.Name})
	return deleted, nil
}

// ImportStats summarises an Import call.
type ImportStats struct {
	Sessions int
	Messages int
	Skipped  []string // names that collided with existing sessions
}

// Import merges snap into the store. Messages of the imported default session
// are appended to the local default session; other sessions are added under
// fresh ids unless their name is already taken. The active session is kept.
func (s *Store) Import(ctx context.Context, snap *Snapshot) (ImportStats, error) {
	var stats ImportStats
	if snap == nil {
		return stats, nil
	}
	err := s.mutate(ctx, func() error {
		for _, in := range snap.Sessions {
			msgs := in.clone().Messages
			if in.ID == DefaultSessionID {
				def := s.sessions[DefaultSessionID]
				def.Messages = append(def.Messages, msgs...)
				stats.Messages += len(msgs)
				continue
			}
			name := strings.TrimSpace(in.Name)
			if name == "" || s.nameTakenLocked(name) {
				stats.Skipped = append(stats.Skipped, in.Name)
				continue
			}
			created := in.CreatedAt
			if created.IsZero() {
				created = s.now()
			}
			sess := &Session{ID: s.newID(), Name: name, Messages: msgs, CreatedAt: created}
			s.sessions[sess.ID] = sess
			s.order = append(s.order, sess.ID)
			stats.Sessions++
			stats.Messages += len(msgs)
		}
		return nil
	})
	return stats, err
}
