package database

import (
	"time"

	"maybach_liquor/internal/models"
)

// SeedUser est un compte de démonstration avec son mot de passe en clair
type SeedUser struct {
	User     models.User
	Password string
}

type Fixtures struct {
	Products []models.Product
	Orders   []models.Order
	Users    []SeedUser
}

const unsplash = "https://images.unsplash.com/photo-"

var seedProducts = []models.Product{
	{ID: "1", Name: "Macallan 12 Year", Category: "Whisky", Description: "Single malt Scotch whisky aged for 12 years with notes of vanilla and oak.", Price: 89.99, Stock: 24, Image: unsplash + "1569529465841-dfecdab7503b?auto=format&fit=crop&w=800&q=80", Featured: true},
	{ID: "2", Name: "Hendrick's Gin", Category: "Gin", Description: "Scottish gin infused with rose and cucumber.", Price: 34.99, Stock: 42, Image: unsplash + "1543253687-c931c8e01820?auto=format&fit=crop&w=800&q=80", Featured: true},
	{ID: "3", Name: "Grey Goose Vodka", Category: "Vodka", Description: "Premium French vodka made from high-quality wheat.", Price: 29.99, Stock: 36, Image: unsplash + "1617171544581-28a5b06b5a9a?auto=format&fit=crop&w=800&q=80"},
	{ID: "4", Name: "Don Julio 1942", Category: "Tequila", Description: "Luxury añejo tequila aged for at least two and a half years.", Price: 149.99, Stock: 15, Image: unsplash + "1581704976910-4d5cb3a91288?auto=format&fit=crop&w=800&q=80", Featured: true},
	{ID: "5", Name: "Veuve Clicquot", Category: "Champagne", Description: "Brut Yellow Label champagne with apple and citrus notes.", Price: 59.99, Stock: 28, Image: unsplash + "1594372830925-9aea3bd60a0a?auto=format&fit=crop&w=800&q=80"},
	{ID: "6", Name: "Lagavulin 16 Year", Category: "Whisky", Description: "Islay single malt Scotch whisky with intense peat smoke.", Price: 94.99, Stock: 19, Image: unsplash + "1589111538098-3cef0eda6e4e?auto=format&fit=crop&w=800&q=80"},
	{ID: "7", Name: "Patrón Silver", Category: "Tequila", Description: "Premium silver tequila with citrus and light pepper notes.", Price: 44.99, Stock: 32, Image: unsplash + "1592861611585-c8a97ef2b97f?auto=format&fit=crop&w=800&q=80"},
	{ID: "8", Name: "Moët & Chandon", Category: "Champagne", Description: "Imperial Brut champagne with vibrant fruitiness.", Price: 49.99, Stock: 24, Image: unsplash + "1627608238900-b95c1be4e5df?auto=format&fit=crop&w=800&q=80"},
}

// DefaultFixtures retourne une copie fraîche des données de démo
func DefaultFixtures() Fixtures {
	products := append([]models.Product(nil), seedProducts...)
	byID := func(id string) models.Product {
		for _, p := range products {
			if p.ID == id {
				return p
			}
		}
		return models.Product{}
	}
	line := func(id string, qty int) models.CartLine {
		return models.CartLine{ProductID: id, Quantity: qty, Product: byID(id)}
	}
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	pickup := func(s string) *time.Time {
		t := at(s)
		return &t
	}

	orders := []models.Order{
		{
			ID: "1", CustomerName: "John Doe", CustomerEmail: "john.doe@example.com", CustomerPhone: "555-123-4567",
			Items:  []models.CartLine{line("1", 1), line("2", 2)},
			Status: models.OrderConfirmed, TotalAmount: 159.97, PaymentStatus: models.PaymentPaid, PaymentMethod: "Credit Card",
			CreatedAt: at("2023-05-15T10:30:00Z"), PickupDate: pickup("2023-05-17T15:00:00Z"),
		},
		{
			ID: "2", CustomerName: "Jane Smith", CustomerEmail: "jane.smith@example.com", CustomerPhone: "555-987-6543",
			Items:  []models.CartLine{line("4", 1)},
			Status: models.OrderPending, TotalAmount: 149.99, PaymentStatus: models.PaymentPending,
			CreatedAt: at("2023-05-16T14:45:00Z"), PickupDate: pickup("2023-05-18T16:30:00Z"),
		},
		{
			ID: "3", CustomerName: "Robert Johnson", CustomerEmail: "robert.j@example.com", CustomerPhone: "555-555-5555",
			Items:  []models.CartLine{line("5", 3), line("8", 2)},
			Status: models.OrderReady, TotalAmount: 279.95, PaymentStatus: models.PaymentPaid, PaymentMethod: "Credit Card",
			CreatedAt: at("2023-05-14T09:15:00Z"), PickupDate: pickup("2023-05-17T11:00:00Z"),
		},
	}

	users := []SeedUser{
		{User: models.User{ID: "1", Name: "Admin User", Email: "admin@example.com", Role: models.RoleAdmin}, Password: "admin123"},
		{User: models.User{ID: "2", Name: "John Doe", Email: "john.doe@example.com", Role: models.RoleCustomer}, Password: "password123"},
		{User: models.User{ID: "admin-1", Name: "Admin User", Email: "admin@maybachliquor.com", Role: models.RoleAdmin}, Password: "admin123"},
		{User: models.User{ID: "user-1", Name: "Demo User", Email: "user@example.com", Role: models.RoleCustomer}, Password: "user123"},
	}

	return Fixtures{Products: products, Orders: orders, Users: users}
}
