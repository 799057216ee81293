package database

import (
	"context"
	"errors"

	"maybach_liquor/internal/models"
)

var (
	ErrNotFound       = errors.New("enregistrement introuvable")
	ErrDuplicateEmail = errors.New("un compte avec cet email existe déjà")
)

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) (models.Product, error)
}

type OrderRepository interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (models.Order, error)
	CreateOrder(ctx context.Context, o models.Order) (models.Order, error)
	UpdateOrder(ctx context.Context, o models.Order) (models.Order, error)
}

type UserRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
}

// Store regroupe les trois dépôts ; l'implémentation mémoire peut être
// remplacée par une vraie base sans toucher aux appelants.
type Store interface {
	ProductRepository
	OrderRepository
	UserRepository
}
