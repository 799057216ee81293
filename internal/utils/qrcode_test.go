package utils

import (
	"bytes"
	"testing"
	"time"

	"maybach_liquor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickupPayload(t *testing.T) {
	pickup := time.Date(2026, 11, 2, 15, 0, 0, 0, time.UTC)
	order := models.Order{
		ID:            "42",
		CustomerName:  "Jane Smith",
		TotalAmount:   149.99,
		PaymentStatus: models.PaymentPending,
		PickupDate:    &pickup,
	}

	payload := PickupPayload(order)
	assert.Contains(t, payload, "ID:42")
	assert.Contains(t, payload, "TOTAL:149.99")
	assert.Contains(t, payload, "PICKUP:2026-11-02T15:00:00Z")
}

func TestGeneratePickupQR(t *testing.T) {
	png, err := GeneratePickupQR(models.Order{ID: "1"}, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
