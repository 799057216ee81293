package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"maybach_liquor/internal/cache"
	"maybach_liquor/internal/database"
	"maybach_liquor/internal/models"

	"go.uber.org/zap"
)

var (
	ErrInvalidQuantity = errors.New("la quantité doit être au moins 1")
	ErrProductNotFound = errors.New("produit introuvable")
)

// ProductLookup est la partie du Fixture Store dont le panier a besoin
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (models.Product, error)
}

// Container est le panier d'une session navigateur.
// Chaque mutation est écrite dans le stockage local avant d'être appliquée en mémoire.
type Container struct {
	mu       sync.Mutex
	key      string
	storage  cache.Storage
	products ProductLookup
	items    []models.CartItem
	log      *zap.Logger
	onChange func(context.Context, Event)
}

func newContainer(key string, storage cache.Storage, products ProductLookup, log *zap.Logger) *Container {
	return &Container{key: key, storage: storage, products: products, log: log}
}

// Load relit le blob du stockage local. Un blob illisible donne un panier vide.
func (c *Container) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.storage.Get(ctx, c.key)
	if errors.Is(err, cache.ErrMiss) {
		c.items = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("lecture panier: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.log.Warn("⚠️ Panier corrompu, on repart d'un panier vide", zap.String("key", c.key), zap.Error(err))
		c.items = nil
		return nil
	}

	c.items = mergeLines(items)
	return nil
}

// mergeLines écarte les lignes invalides et regroupe les doublons d'un même produit
func mergeLines(items []models.CartItem) []models.CartItem {
	var clean []models.CartItem
	index := make(map[string]int, len(items))
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			continue
		}
		if i, ok := index[it.ProductID]; ok {
			clean[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(clean)
		clean = append(clean, it)
	}
	return clean
}

// Add ajoute qty unités ; une ligne existante est fusionnée
func (c *Container) Add(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if _, err := c.products.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	return c.mutate(ctx, "cart_updated", func(items []models.CartItem) []models.CartItem {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity += qty
				return items
			}
		}
		return append(items, models.CartItem{ProductID: productID, Quantity: qty})
	})
}

func (c *Container) Remove(ctx context.Context, productID string) error {
	return c.mutate(ctx, "cart_updated", func(items []models.CartItem) []models.CartItem {
		return removeLine(items, productID)
	})
}

// UpdateQuantity remplace la quantité ; qty <= 0 retire la ligne
func (c *Container) UpdateQuantity(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return c.Remove(ctx, productID)
	}
	return c.mutate(ctx, "cart_updated", func(items []models.CartItem) []models.CartItem {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity = qty
			}
		}
		return items
	})
}

func (c *Container) Clear(ctx context.Context) error {
	return c.mutate(ctx, "cart_cleared", func([]models.CartItem) []models.CartItem {
		return nil
	})
}

// RemovePurchased retire les quantités achetées. Ce qui a été ajouté
// pendant le paiement reste dans le panier.
func (c *Container) RemovePurchased(ctx context.Context, purchased []models.CartLine) error {
	bought := make(map[string]int, len(purchased))
	for _, l := range purchased {
		bought[l.ProductID] += l.Quantity
	}

	return c.mutateEvent(ctx, func(items []models.CartItem) ([]models.CartItem, string) {
		out := items[:0]
		for _, it := range items {
			it.Quantity -= bought[it.ProductID]
			if it.Quantity > 0 {
				out = append(out, it)
			}
		}
		if len(out) == 0 {
			return nil, "cart_cleared"
		}
		return out, "cart_updated"
	})
}

// Items retourne une copie des lignes persistées
func (c *Container) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartItem(nil), c.items...)
}

func (c *Container) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return countItems(c.items)
}

// View résout chaque ligne avec le produit courant ; total et nombre d'articles
// sont recalculés à chaque lecture.
func (c *Container) View(ctx context.Context) (models.CartView, error) {
	items := c.Items()

	view := models.CartView{Items: make([]models.CartLine, 0, len(items))}
	for _, it := range items {
		p, err := c.products.GetProduct(ctx, it.ProductID)
		if errors.Is(err, database.ErrNotFound) {
			c.log.Warn("⚠️ Produit du panier introuvable, ligne ignorée", zap.String("product_id", it.ProductID))
			continue
		}
		if err != nil {
			return models.CartView{}, err
		}
		view.Items = append(view.Items, models.CartLine{ProductID: it.ProductID, Quantity: it.Quantity, Product: p})
		view.ItemCount += it.Quantity
	}
	view.Total = models.SumLines(view.Items)
	return view, nil
}

func (c *Container) mutate(ctx context.Context, event string, fn func([]models.CartItem) []models.CartItem) error {
	return c.mutateEvent(ctx, func(items []models.CartItem) ([]models.CartItem, string) {
		return fn(items), event
	})
}

func (c *Container) mutateEvent(ctx context.Context, fn func([]models.CartItem) ([]models.CartItem, string)) error {
	c.mu.Lock()
	next, event := fn(append([]models.CartItem(nil), c.items...))
	if err := c.persist(ctx, next); err != nil {
		c.mu.Unlock()
		return err
	}
	c.items = next
	count := countItems(next)
	notify := c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify(context.WithoutCancel(ctx), Event{Type: event, ItemCount: count})
	}
	return nil
}

func (c *Container) persist(ctx context.Context, items []models.CartItem) error {
	if len(items) == 0 {
		items = []models.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := c.storage.Set(ctx, c.key, string(data)); err != nil {
		return fmt.Errorf("sauvegarde panier: %w", err)
	}
	return nil
}

func removeLine(items []models.CartItem, productID string) []models.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

func countItems(items []models.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
