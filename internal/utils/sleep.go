package utils

import (
	"context"
	"time"
)

// Sleep attend d, ou s'interrompt dès que ctx est annulé.
// Remplace les setTimeout « fire-and-forget » : l'appelant vérifie l'erreur
// avant de toucher à l'état.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
