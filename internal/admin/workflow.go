package admin

import "maybach_liquor/internal/models"

// transitions : statuts atteignables depuis chaque statut de commande.
// completed et cancelled sont terminaux.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:   {models.OrderConfirmed, models.OrderReady, models.OrderCompleted, models.OrderCancelled},
	models.OrderConfirmed: {models.OrderReady, models.OrderCompleted, models.OrderCancelled},
	models.OrderReady:     {models.OrderCompleted, models.OrderCancelled},
	models.OrderCompleted: nil,
	models.OrderCancelled: nil,
}

// AllowedTransitions liste les statuts proposés à l'admin pour une commande
func AllowedTransitions(from models.OrderStatus) []models.OrderStatus {
	return append([]models.OrderStatus(nil), transitions[from]...)
}

func canTransition(from, to models.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
