package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"maybach_liquor/internal/database"
	"maybach_liquor/internal/models"
	"maybach_liquor/internal/payment"

	"go.uber.org/zap"
)

var (
	ErrInvalidInput         = errors.New("données produit invalides")
	ErrInvalidStatus        = errors.New("statut inconnu")
	ErrTransitionNotAllowed = errors.New("changement de statut non autorisé")
)

// StatusNotifier est prévenu quand un admin change le statut d'une commande
type StatusNotifier interface {
	OrderStatusChanged(order models.Order)
}

type Service struct {
	store         database.Store
	ledger        *payment.Ledger
	notifier      StatusNotifier
	lowStockUnder int
	log           *zap.Logger
}

func NewService(store database.Store, ledger *payment.Ledger, notifier StatusNotifier, lowStockUnder int, log *zap.Logger) *Service {
	return &Service{store: store, ledger: ledger, notifier: notifier, lowStockUnder: lowStockUnder, log: log}
}

// ================== INVENTAIRE ==================

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *Service) AddProduct(ctx context.Context, p models.Product) (models.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := validateProduct(p); err != nil {
		return models.Product{}, err
	}
	created, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		return models.Product{}, err
	}
	s.log.Info("✅ Produit ajouté", zap.String("product_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// UpdateProduct applique le patch ; pas de détection de conflit entre admins
func (s *Service) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error) {
	current, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	next := patch.Apply(current)
	next.ID = current.ID
	if err := validateProduct(next); err != nil {
		return models.Product{}, err
	}
	updated, err := s.store.UpdateProduct(ctx, next)
	if err != nil {
		return models.Product{}, err
	}
	s.log.Info("📦 Produit mis à jour", zap.String("product_id", id), zap.Int("stock", updated.Stock), zap.Float64("price", updated.Price))
	return updated, nil
}

func validateProduct(p models.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: nom manquant", ErrInvalidInput)
	case p.Price < 0:
		return fmt.Errorf("%w: prix négatif", ErrInvalidInput)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock négatif", ErrInvalidInput)
	}
	return nil
}

// ================== COMMANDES ==================

// OrderFilter : Status vide = tous ; Query cherche dans l'id, le nom et l'email du client
type OrderFilter struct {
	Status models.OrderStatus
	Query  string
}

// ListOrders retourne les commandes filtrées, les plus récentes d'abord
func (s *Service) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := orders[:0]
	for _, o := range orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(o.ID), q) &&
			!strings.Contains(strings.ToLower(o.CustomerName), q) &&
			!strings.Contains(strings.ToLower(o.CustomerEmail), q) {
			continue
		}
		out = append(out, o)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// UpdateOrderStatus suit la table des transitions ; seul le statut est modifié
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if order.Status == status {
		return order, nil
	}
	if !canTransition(order.Status, status) {
		return models.Order{}, fmt.Errorf("%w: %s → %s", ErrTransitionNotAllowed, order.Status, status)
	}

	order.Status = status
	updated, err := s.store.UpdateOrder(ctx, order)
	if err != nil {
		return models.Order{}, err
	}
	s.log.Info("✅ Statut commande mis à jour", zap.String("order_id", id), zap.String("status", string(status)))

	if s.notifier != nil {
		s.notifier.OrderStatusChanged(updated)
	}
	return updated, nil
}

// UpdatePaymentStatus : une commande payée ne redevient jamais en attente
func (s *Service) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if order.PaymentStatus == status {
		return order, nil
	}
	if order.PaymentStatus == models.PaymentPaid {
		return models.Order{}, fmt.Errorf("%w: paid → %s", ErrTransitionNotAllowed, status)
	}

	order.PaymentStatus = status
	updated, err := s.store.UpdateOrder(ctx, order)
	if err != nil {
		return models.Order{}, err
	}
	s.log.Info("💰 Paiement commande mis à jour", zap.String("order_id", id), zap.String("payment_status", string(status)))
	return updated, nil
}

// ================== TABLEAU DE BORD ==================

const recentOrdersLimit = 5

func (s *Service) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}

	stats := models.DashboardStats{
		TotalOrders:      len(orders),
		SalesByCategory:  []models.CategorySales{},
		LowStockProducts: []models.Product{},
	}
	for _, o := range orders {
		if o.Status == models.OrderPending {
			stats.PendingOrders++
		}
		if o.PaymentStatus == models.PaymentPaid {
			stats.TotalRevenue += o.TotalAmount
		}
	}

	for _, p := range products {
		if p.Stock < s.lowStockUnder {
			stats.LowStockItems++
			stats.LowStockProducts = append(stats.LowStockProducts, p)
		}
	}

	// ventes par catégorie : lignes de toutes les commandes, catégorie courante du produit
	categoryOf := make(map[string]string, len(products))
	index := make(map[string]int)
	for _, p := range products {
		categoryOf[p.ID] = p.Category
		if _, ok := index[p.Category]; !ok {
			index[p.Category] = len(stats.SalesByCategory)
			stats.SalesByCategory = append(stats.SalesByCategory, models.CategorySales{Category: p.Category})
		}
	}
	for _, o := range orders {
		for _, line := range o.Items {
			cat, ok := categoryOf[line.ProductID]
			if !ok {
				continue
			}
			stats.SalesByCategory[index[cat]].Amount += line.Subtotal()
		}
	}
	best := 0.0
	for _, cs := range stats.SalesByCategory {
		if cs.Amount > best {
			best = cs.Amount
			stats.TopCategory = cs.Category
		}
	}

	sortNewestFirst(orders)
	if len(orders) > recentOrdersLimit {
		orders = orders[:recentOrdersLimit]
	}
	stats.RecentOrders = orders
	return stats, nil
}

// Payments retourne le rapport des transactions M-Pesa
func (s *Service) Payments(f payment.Filter) models.PaymentsReport {
	return s.ledger.Report(f)
}

func sortNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
