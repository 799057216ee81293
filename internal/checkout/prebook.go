package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maybach_liquor/internal/cart"
	"maybach_liquor/internal/database"
	"maybach_liquor/internal/models"

	"go.uber.org/zap"
)

// PreBookRequest : ProductID vide = réserver le contenu du panier
type PreBookRequest struct {
	UserID     string    `json:"-"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	PickupDate time.Time `json:"pickupDate"`
	Notes      string    `json:"notes"`
	ProductID  string    `json:"productId"`
}

// PreBook crée une commande en attente de paiement, à retirer à la date choisie
func (s *Service) PreBook(ctx context.Context, sessionID string, req PreBookRequest) (models.Order, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Email == "" || req.Phone == "" {
		return models.Order{}, ErrInvalidInput
	}
	if !req.PickupDate.After(s.now()) {
		return models.Order{}, ErrPickupInPast
	}

	var (
		items    []models.CartLine
		fromCart *cart.Container
	)
	if req.ProductID != "" {
		p, err := s.products.GetProduct(ctx, req.ProductID)
		if errors.Is(err, database.ErrNotFound) {
			return models.Order{}, cart.ErrProductNotFound
		}
		if err != nil {
			return models.Order{}, err
		}
		items = []models.CartLine{{ProductID: p.ID, Quantity: 1, Product: p}}
	} else {
		c, err := s.carts.Get(ctx, sessionID)
		if err != nil {
			return models.Order{}, err
		}
		view, err := c.View(ctx)
		if err != nil {
			return models.Order{}, err
		}
		items = view.Items
		fromCart = c
	}
	if len(items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	pickup := req.PickupDate.UTC()
	order, err := s.orders.CreateOrder(ctx, models.Order{
		UserID:        req.UserID,
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
		Items:         items,
		Status:        models.OrderPending,
		TotalAmount:   models.SumLines(items),
		PaymentStatus: models.PaymentPending,
		Notes:         strings.TrimSpace(req.Notes),
		PickupDate:    &pickup,
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("création pré-réservation: %w", err)
	}
	s.log.Info("📅 Pré-réservation créée", zap.String("order_id", order.ID), zap.Time("pickup", pickup))

	if fromCart != nil {
		if err := fromCart.RemovePurchased(ctx, items); err != nil {
			s.log.Error("❌ Pré-réservation créée mais panier non vidé", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.OrderPlaced(order)
	}
	return order, nil
}
