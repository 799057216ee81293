package auth

import (
	"context"
	"sync"
	"time"

	"maybach_liquor/internal/cache"
	"maybach_liquor/internal/database"
	"maybach_liquor/internal/models"

	"go.uber.org/zap"
)

const (
	anonymousTTL = time.Minute
	loggedInTTL  = 30 * time.Minute
	sweepEvery   = time.Minute
)

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Manager garde une Session chargée par session navigateur.
// Les sessions anonymes sont relâchées vite, les sessions connectées après
// une longue inactivité ; un Get ultérieur les relit du stockage local.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*entry
	storage   cache.Storage
	users     database.UserRepository
	latency   time.Duration
	log       *zap.Logger
	now       func() time.Time
	lastSweep time.Time
}

func NewManager(storage cache.Storage, users database.UserRepository, latency time.Duration, log *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		storage:  storage,
		users:    users,
		latency:  latency,
		log:      log,
		now:      time.Now,
	}
}

func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	if e, ok := m.sessions[sessionID]; ok {
		e.lastSeen = now
		return e.session, nil
	}
	s := newSession(cache.UserKey(sessionID), m.storage, m.users, m.latency, m.log)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	m.sessions[sessionID] = &entry{session: s, lastSeen: now}
	return s, nil
}

// UpdateProfile modifie le compte sans passer par une session navigateur
// (clients authentifiés par token Bearer)
func (m *Manager) UpdateProfile(ctx context.Context, userID, name, email string) (models.User, error) {
	return updateUser(ctx, m.users, userID, name, email)
}

// Loaded retourne le nombre de sessions gardées en mémoire
func (m *Manager) Loaded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// sweep tourne au plus une fois par minute, sous m.mu.
// Une session avec un login en cours n'est jamais relâchée.
func (m *Manager) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < sweepEvery {
		return
	}
	m.lastSweep = now

	evicted := 0
	for sid, e := range m.sessions {
		anonymous, busy := e.session.idle()
		ttl := loggedInTTL
		if anonymous {
			ttl = anonymousTTL
		}
		if !busy && now.Sub(e.lastSeen) > ttl {
			delete(m.sessions, sid)
			evicted++
		}
	}
	if evicted > 0 {
		m.log.Debug("🧹 Sessions inactives relâchées", zap.Int("count", evicted))
	}
}
