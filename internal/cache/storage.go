package cache

import (
	"context"
	"errors"
)

// ErrMiss signale une clé absente du stockage local
var ErrMiss = errors.New("clé absente")

// Storage est le stockage local par navigateur (l'équivalent du localStorage).
// Les valeurs sont des blobs JSON opaques.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Clés bien connues, une par session navigateur
const (
	cartKeyPrefix = "cart:"
	userKeyPrefix = "maybachLiquorUser:"
)

func CartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}

func UserKey(sessionID string) string {
	return userKeyPrefix + sessionID
}
