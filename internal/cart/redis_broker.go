package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker diffuse les changements via Redis Pub/Sub, canal "cart:events:<session>".
// Tous les serveurs branchés sur le même Redis voient les mêmes événements.
type RedisBroker struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisBroker(client *redis.Client, log *zap.Logger) *RedisBroker {
	return &RedisBroker{client: client, log: log}
}

func cartChannel(sessionID string) string {
	return "cart:events:" + sessionID
}

func (b *RedisBroker) Publish(ctx context.Context, sessionID string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		b.log.Error("❌ Encodage événement panier", zap.Error(err))
		return
	}
	if err := b.client.Publish(ctx, cartChannel(sessionID), data).Err(); err != nil {
		b.log.Warn("⚠️ Publication panier impossible", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Subscribe attend la confirmation de l'abonnement avant de rendre la main
func (b *RedisBroker) Subscribe(ctx context.Context, sessionID string) (<-chan Event, func(), error) {
	pubsub := b.client.Subscribe(ctx, cartChannel(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("abonnement panier: %w", err)
	}

	out := make(chan Event, subscriberBuffer)
	msgs := pubsub.Channel()
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("⚠️ Événement panier illisible", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			select {
			case out <- ev:
			default:
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() { _ = pubsub.Close() })
	}, nil
}
