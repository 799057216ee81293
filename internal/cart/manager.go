package cart

import (
	"context"
	"sync"
	"time"

	"maybach_liquor/internal/cache"

	"go.uber.org/zap"
)

const (
	// un panier vide ne vaut rien en mémoire : le stockage local suffit
	emptyCartTTL = time.Minute
	idleCartTTL  = 30 * time.Minute
	sweepEvery   = time.Minute
)

type entry struct {
	cart     *Container
	lastSeen time.Time
}

// Manager garde un panier chargé par session navigateur.
// Les paniers inactifs sont relâchés ; le prochain Get les relit du stockage.
type Manager struct {
	mu        sync.Mutex
	carts     map[string]*entry
	storage   cache.Storage
	products  ProductLookup
	broker    Broker
	log       *zap.Logger
	now       func() time.Time
	lastSweep time.Time
}

// NewManager accepte un broker nil : aucun événement n'est alors publié
func NewManager(storage cache.Storage, products ProductLookup, broker Broker, log *zap.Logger) *Manager {
	return &Manager{
		carts:    make(map[string]*entry),
		storage:  storage,
		products: products,
		broker:   broker,
		log:      log,
		now:      time.Now,
	}
}

// Get retourne le panier de la session, chargé depuis le stockage local au premier accès
func (m *Manager) Get(ctx context.Context, sessionID string) (*Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	if e, ok := m.carts[sessionID]; ok {
		e.lastSeen = now
		return e.cart, nil
	}

	c := newContainer(cache.CartKey(sessionID), m.storage, m.products, m.log)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	if m.broker != nil {
		c.onChange = func(ctx context.Context, ev Event) { m.broker.Publish(ctx, sessionID, ev) }
	}
	m.carts[sessionID] = &entry{cart: c, lastSeen: now}
	return c, nil
}

// Loaded retourne le nombre de paniers gardés en mémoire
func (m *Manager) Loaded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.carts)
}

// sweep tourne au plus une fois par minute, sous m.mu
func (m *Manager) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < sweepEvery {
		return
	}
	m.lastSweep = now

	evicted := 0
	for sid, e := range m.carts {
		ttl := idleCartTTL
		if e.cart.ItemCount() == 0 {
			ttl = emptyCartTTL
		}
		if now.Sub(e.lastSeen) > ttl {
			delete(m.carts, sid)
			evicted++
		}
	}
	if evicted > 0 {
		m.log.Debug("🧹 Paniers inactifs relâchés", zap.Int("count", evicted))
	}
}
