// Package session tracks live browser sessions from launch to teardown.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webpuppet/internal/driver"
)

// Session is one launched browser with its owning driver.
type Session struct {
	ID        string
	Type      driver.Type
	CreatedAt time.Time
	Driver    *driver.Driver
}

// Launcher starts browsers. *driver.Factory is the production
// implementation.
type Launcher interface {
	Launch(ctx context.Context, typ driver.Type, opts driver.Options) (*driver.Driver, error)
}

// Manager owns the set of live sessions.
type Manager struct {
	launcher Launcher
	log      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(l Launcher, log *zap.Logger) *Manager {
	return &Manager{
		launcher: l,
		log:      log.With(zap.String("component", "session")),
		sessions: make(map[string]*Session),
	}
}

// Open launches a browser and registers the resulting session.
func (m *Manager) Open(ctx context.Context, typ driver.Type, opts driver.Options) (*Session, error) {
	d, err := m.launcher.Launch(ctx, typ, opts)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Type:      typ,
		CreatedAt: time.Now(),
		Driver:    d,
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.log.Info("session opened", zap.String("id", sess.ID), zap.String("browser", string(typ)))
	return sess, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, driver.SessionNotFoundError(id)
	}
	return sess, nil
}

// List returns live sessions ordered by creation time.
func (m *Manager) List() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Close tears down one session and releases its browser process.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return driver.SessionNotFoundError(id)
	}

	m.log.Info("session closed", zap.String("id", id))
	return sess.Driver.Close()
}

// CloseAll tears down every live session, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		if err := s.Driver.Close(); err != nil {
			m.log.Warn("session teardown failed", zap.String("id", s.ID), zap.Error(err))
		}
	}
}
