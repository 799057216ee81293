package cart

import (
	"context"
	"sync"
)

// Event est envoyé aux abonnés quand un panier change
type Event struct {
	Type      string `json:"type"`
	ItemCount int    `json:"itemCount"`
}

const subscriberBuffer = 8

// Broker diffuse les changements de panier par session (flux websocket).
// Publish n'attend jamais : un abonné trop lent perd l'événement.
type Broker interface {
	Publish(ctx context.Context, sessionID string, ev Event)
	Subscribe(ctx context.Context, sessionID string) (<-chan Event, func(), error)
}

// MemoryBroker : diffusion dans le processus, quand Redis n'est pas configuré
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe retourne le canal de la session et la fonction de désabonnement
func (b *MemoryBroker) Subscribe(_ context.Context, sessionID string) (<-chan Event, func(), error) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan Event]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[sessionID], ch)
			if len(b.subs[sessionID]) == 0 {
				delete(b.subs, sessionID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}, nil
}

func (b *MemoryBroker) Publish(_ context.Context, sessionID string, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[sessionID] {
		select {
		case ch <- ev:
		default:
		}
	}
}
