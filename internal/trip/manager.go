package trip

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ManagerConfig holds the shared collaborators handed to every session.
type ManagerConfig struct {
	Router    RouteComputer
	Weather   WeatherFetcher
	Notifier  Notifier
	Guardians GuardianLookup
	Store     ScheduleStore
	Logger    zerolog.Logger

	// Now overrides the session clock in tests.
	Now func() time.Time
}

// Manager owns one session per user. A user's events always land on the
// same session, which serializes them.
type Manager struct {
	cfg ManagerConfig

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Session returns the user's session, creating it on first use.
func (m *Manager) Session(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s
	}

	s := NewSession(SessionConfig{
		UserID:    userID,
		Router:    m.cfg.Router,
		Weather:   m.cfg.Weather,
		Notifier:  m.cfg.Notifier,
		Guardians: m.cfg.Guardians,
		Store:     m.cfg.Store,
		Logger:    m.cfg.Logger,
		Now:       m.cfg.Now,
	})
	m.sessions[userID] = s
	return s
}

// Active returns the user's session only if one already exists.
func (m *Manager) Active(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	return s, ok
}

// End drops the user's session.
func (m *Manager) End(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
