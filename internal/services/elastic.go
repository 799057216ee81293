package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"maybach_liquor/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const productsIndex = "products"

// ProductSearcher indexe les produits et retourne les ids correspondant à une recherche
type ProductSearcher interface {
	Index(ctx context.Context, p models.Product) error
	Search(ctx context.Context, query string) ([]string, error)
}

// ElasticSearcher recherche les produits dans Elasticsearch
type ElasticSearcher struct {
	client *elasticsearch.Client
	index  string
	log    *zap.Logger
}

func NewElasticSearcher(url, username, password string, log *zap.Logger) (*ElasticSearcher, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("client Elasticsearch: %w", err)
	}
	return &ElasticSearcher{client: client, index: productsIndex, log: log}, nil
}

func (e *ElasticSearcher) Index(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("erreur envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elastic a refusé %s: %s", p.ID, res.Status())
	}
	e.log.Debug("✅ Produit indexé", zap.String("product_id", p.ID))
	return nil
}

// IndexAll indexe le catalogue au démarrage ; s'arrête à la première erreur
func (e *ElasticSearcher) IndexAll(ctx context.Context, products []models.Product) error {
	for _, p := range products {
		if err := e.Index(ctx, p); err != nil {
			return err
		}
	}
	e.log.Info("✅ Catalogue indexé dans Elasticsearch", zap.Int("count", len(products)))
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source struct {
				ID string `json:"id"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search cherche dans le nom, la description et la catégorie
func (e *ElasticSearcher) Search(ctx context.Context, query string) ([]string, error) {
	var buf bytes.Buffer
	q := map[string]interface{}{
		"size": 100,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("recherche Elastic: %s", res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		if h.Source.ID != "" {
			ids = append(ids, h.Source.ID)
		}
	}
	return ids, nil
}
