package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/tableform/internal/storage"
	"github.com/JonMunkholm/tableform/internal/tableform"
	"github.com/google/uuid"
)

var (
	// ErrUnknownForm is returned for form keys that are not registered.
	ErrUnknownForm = errors.New("unknown form")

	// ErrSessionNotFound is returned for session ids that never existed,
	// belong to another form or have expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the session limit is reached.
	ErrTooManySessions = errors.New("too many editing sessions")
)

const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 1000
)

// Options configures a Service. Zero values select the defaults.
type Options struct {
	SessionTTL           time.Duration
	MaxSessions          int
	MaxConcurrentSubmits int
	SubmitWait           time.Duration

	// Now and HandleFunc replace the clock and row handle generator in tests.
	Now        func() time.Time
	HandleFunc func() string
}

// Service owns the editing sessions of all forms and persists their output.
// Each session holds one tableform.Table; the table itself is not safe for
// concurrent use, so every operation runs under the session's mutex.
type Service struct {
	store       storage.Store
	ttl         time.Duration
	maxSessions int
	limiter     *SubmitLimiter
	now         func() time.Time
	tableOpts   []tableform.TableOption

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id      string
	form    FormDefinition
	expires atomic.Int64 // unix nanoseconds

	mu     sync.Mutex
	table  *tableform.Table
	output tableform.OutputField
	failed []FieldFailure
	saved  bool
}

func (sess *session) expiresAt() time.Time {
	return time.Unix(0, sess.expires.Load())
}

// NewService creates a new Service instance.
func NewService(store storage.Store, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Service{
		store:       store,
		ttl:         opts.SessionTTL,
		maxSessions: opts.MaxSessions,
		limiter:     NewSubmitLimiter(opts.MaxConcurrentSubmits, opts.SubmitWait),
		now:         opts.Now,
		sessions:    make(map[string]*session),
	}
	if opts.HandleFunc != nil {
		s.tableOpts = append(s.tableOpts, tableform.WithHandleFunc(opts.HandleFunc))
	}
	return s
}

// ListForms returns information about all registered forms.
func (s *Service) ListForms() []FormInfo {
	defs := All()
	infos := make([]FormInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// Form returns a registered form definition.
func (s *Service) Form(key string) (FormDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return FormDefinition{}, fmt.Errorf("%w: %s", ErrUnknownForm, key)
	}
	return def, nil
}

// StoredValue returns the persisted output field value of a form, or the
// form's default when nothing has been saved.
func (s *Service) StoredValue(ctx context.Context, formKey string) (string, error) {
	def, err := s.Form(formKey)
	if err != nil {
		return "", err
	}
	return s.storedValue(ctx, def)
}

func (s *Service) storedValue(ctx context.Context, def FormDefinition) (string, error) {
	value, ok, err := s.store.Get(ctx, def.Info.StorageKey)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", def.Info.StorageKey, err)
	}
	if !ok {
		return def.Info.Default, nil
	}
	return value, nil
}

// loadTable builds the session table. A stored value that does not decode
// is treated as an empty table.
func (s *Service) loadTable(def FormDefinition, value string) *tableform.Table {
	table, err := loadTable(def.Schema(), value, s.tableOpts...)
	if err != nil {
		slog.Warn("stored value ignored",
			"form", def.Info.Key,
			"storage_key", def.Info.StorageKey,
			"error", err,
		)
	}
	return table
}

// OpenSession starts an editing session on the stored value of a form.
func (s *Service) OpenSession(ctx context.Context, formKey string) (SessionView, error) {
	def, err := s.Form(formKey)
	if err != nil {
		return SessionView{}, err
	}
	value, err := s.storedValue(ctx, def)
	if err != nil {
		return SessionView{}, err
	}

	sess := &session{
		id:     uuid.NewString(),
		form:   def,
		table:  s.loadTable(def, value),
		output: tableform.OutputField{Name: def.Info.StorageKey, Value: value},
	}
	sess.expires.Store(s.now().Add(s.ttl).UnixNano())

	s.mu.Lock()
	if len(s.sessions) >= s.maxSessions {
		s.reapLocked(s.now())
	}
	if len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		return SessionView{}, ErrTooManySessions
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	slog.Debug("session opened", "form", formKey, "session", sess.id, "rows", sess.table.Len())

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return buildView(sess), nil
}

// Session returns the current state of a session.
func (s *Service) Session(formKey, id string) (SessionView, error) {
	return s.withSession(formKey, id, func(*session) error { return nil })
}

// CloseSession discards a session and its unsaved edits.
func (s *Service) CloseSession(formKey, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.form.Info.Key != formKey {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ReapExpired drops sessions idle for longer than the TTL and returns how
// many were removed.
func (s *Service) ReapExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reapLocked(s.now())
}

func (s *Service) reapLocked(now time.Time) int {
	n := 0
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt()) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Service) lookup(formKey, id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || sess.form.Info.Key != formKey || s.now().After(sess.expiresAt()) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// withSession runs fn under the session lock, extends the session and
// returns the resulting view. The view is valid even when fn fails.
func (s *Service) withSession(formKey, id string, fn func(*session) error) (SessionView, error) {
	sess, err := s.lookup(formKey, id)
	if err != nil {
		return SessionView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.expires.Store(s.now().Add(s.ttl).UnixNano())
	err = fn(sess)
	return buildView(sess), err
}

// Ping checks the storage backend.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// WaitForSubmits blocks until in-flight storage writes finish or ctx ends.
func (s *Service) WaitForSubmits(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ActiveSubmits returns the number of storage writes in progress.
func (s *Service) ActiveSubmits() int {
	return s.limiter.ActiveCount()
}

// SubmitSlots returns how many storage writes may run at once.
func (s *Service) SubmitSlots() int {
	return s.limiter.MaxConcurrent()
}
