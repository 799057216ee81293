package services

import (
	"context"
	"strings"

	"maybach_liquor/internal/database"
	"maybach_liquor/internal/models"

	"go.uber.org/zap"
)

const relatedLimit = 4

// Catalog sert les pages boutique : liste filtrée, vedettes, fiche et produits associés
type Catalog struct {
	products database.ProductRepository
	searcher ProductSearcher
	log      *zap.Logger
}

// NewCatalog : searcher peut être nil, la recherche se fait alors en mémoire
func NewCatalog(products database.ProductRepository, searcher ProductSearcher, log *zap.Logger) *Catalog {
	return &Catalog{products: products, searcher: searcher, log: log}
}

// List filtre par texte (nom, description ou catégorie) et par catégorie
func (c *Catalog) List(ctx context.Context, query, category string) ([]models.Product, error) {
	all, err := c.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)

	matched := all
	if query != "" {
		matched = c.search(ctx, all, query)
	}

	if category == "" || strings.EqualFold(category, "all") {
		return matched, nil
	}
	out := make([]models.Product, 0, len(matched))
	for _, p := range matched {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Catalog) search(ctx context.Context, all []models.Product, query string) []models.Product {
	if c.searcher != nil {
		ids, err := c.searcher.Search(ctx, query)
		if err == nil {
			byID := make(map[string]models.Product, len(all))
			for _, p := range all {
				byID[p.ID] = p
			}
			out := make([]models.Product, 0, len(ids))
			for _, id := range ids {
				if p, ok := byID[id]; ok {
					out = append(out, p)
				}
			}
			return out
		}
		c.log.Warn("⚠️ Recherche Elastic indisponible, repli en mémoire", zap.Error(err))
	}

	q := strings.ToLower(query)
	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if matchesQuery(p, q) {
			out = append(out, p)
		}
	}
	return out
}

// matchesQuery couvre les mêmes champs que la requête Elasticsearch
func matchesQuery(p models.Product, q string) bool {
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Category), q)
}

func (c *Catalog) Featured(ctx context.Context) ([]models.Product, error) {
	all, err := c.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (models.Product, error) {
	return c.products.GetProduct(ctx, id)
}

// Related : même catégorie, sans le produit lui-même, 4 au plus
func (c *Catalog) Related(ctx context.Context, id string) ([]models.Product, error) {
	p, err := c.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := c.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, relatedLimit)
	for _, other := range all {
		if other.ID != p.ID && other.Category == p.Category {
			out = append(out, other)
			if len(out) == relatedLimit {
				break
			}
		}
	}
	return out, nil
}

// Categories retourne les catégories dans l'ordre où elles apparaissent
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	all, err := c.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range all {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out, nil
}

// Reindex pousse un produit modifié vers le moteur de recherche ; une erreur est seulement journalisée
func (c *Catalog) Reindex(ctx context.Context, p models.Product) {
	if c.searcher == nil {
		return
	}
	if err := c.searcher.Index(ctx, p); err != nil {
		c.log.Warn("⚠️ Réindexation impossible", zap.String("product_id", p.ID), zap.Error(err))
	}
}
