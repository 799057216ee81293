package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"maybach_liquor/internal/models"
	"maybach_liquor/internal/utils"

	"github.com/google/uuid"
)

// MemoryStore est le Fixture Store : produits, commandes et utilisateurs en mémoire.
// Les lectures retournent des copies ; un appelant doit relire pour voir une mise à jour.
type MemoryStore struct {
	mu       sync.RWMutex
	products []models.Product
	orders   []models.Order
	users    []models.User
	now      func() time.Time
	newID    func() string
}

type Option func(*MemoryStore)

// WithClock remplace l'horloge utilisée pour CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// WithIDGenerator remplace le générateur d'identifiants (UUID par défaut)
func WithIDGenerator(gen func() string) Option {
	return func(s *MemoryStore) { s.newID = gen }
}

// NewMemoryStore charge les fixtures ; les mots de passe en clair sont hashés ici
func NewMemoryStore(fx Fixtures, opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}

	s.products = append([]models.Product(nil), fx.Products...)
	for _, o := range fx.Orders {
		s.orders = append(s.orders, o.Clone())
	}
	for _, su := range fx.Users {
		u := su.User
		if su.Password != "" {
			hash, err := utils.HashPassword(su.Password)
			if err != nil {
				return nil, fmt.Errorf("hash mot de passe fixture %s: %w", u.Email, err)
			}
			u.Password = hash
		}
		s.users = append(s.users, u)
	}
	return s, nil
}

// --- Produits ---

func (s *MemoryStore) ListProducts(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...), nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("produit %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) CreateProduct(_ context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.newID()
	s.products = append(s.products, p)
	return p, nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("produit %s: %w", p.ID, ErrNotFound)
}

// --- Commandes ---

func (s *MemoryStore) ListOrders(_ context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	return out, nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return models.Order{}, fmt.Errorf("commande %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) CreateOrder(_ context.Context, o models.Order) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o = o.Clone()
	o.ID = s.newID()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now().UTC()
	}
	s.orders = append(s.orders, o)
	return o.Clone(), nil
}

func (s *MemoryStore) UpdateOrder(_ context.Context, o models.Order) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == o.ID {
			s.orders[i] = o.Clone()
			return o.Clone(), nil
		}
	}
	return models.Order{}, fmt.Errorf("commande %s: %w", o.ID, ErrNotFound)
}

// --- Utilisateurs ---

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User(nil), s.users...), nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("utilisateur %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOfEmail(email); i >= 0 {
		return s.users[i], nil
	}
	return models.User{}, fmt.Errorf("utilisateur %s: %w", email, ErrNotFound)
}

// CreateUser vérifie l'unicité de l'email sous le même verrou que l'insertion
func (s *MemoryStore) CreateUser(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfEmail(u.Email) >= 0 {
		return models.User{}, ErrDuplicateEmail
	}
	u.ID = s.newID()
	s.users = append(s.users, u)
	return u, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := -1
	for i := range s.users {
		if s.users[i].ID == u.ID {
			found = i
			break
		}
	}
	if found < 0 {
		return models.User{}, fmt.Errorf("utilisateur %s: %w", u.ID, ErrNotFound)
	}
	if i := s.indexOfEmail(u.Email); i >= 0 && i != found {
		return models.User{}, ErrDuplicateEmail
	}
	s.users[found] = u
	return u, nil
}

func (s *MemoryStore) indexOfEmail(email string) int {
	for i, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return i
		}
	}
	return -1
}
