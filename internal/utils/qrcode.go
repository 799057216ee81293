package utils

import (
	"fmt"
	"time"

	"maybach_liquor/internal/models"

	"github.com/skip2/go-qrcode"
)

// PickupPayload construit le texte encodé dans le QR de retrait
func PickupPayload(order models.Order) string {
	pickup := "-"
	if order.PickupDate != nil {
		pickup = order.PickupDate.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("MAYBACH-ORDER\nID:%s\nNAME:%s\nTOTAL:%.2f\nPAYMENT:%s\nPICKUP:%s",
		order.ID, order.CustomerName, order.TotalAmount, order.PaymentStatus, pickup)
}

// GeneratePickupQR retourne le PNG du QR code à présenter au comptoir
func GeneratePickupQR(order models.Order, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(PickupPayload(order), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("erreur génération QR: %w", err)
	}
	return png, nil
}
