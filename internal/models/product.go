package models

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image"`
	Featured    bool    `json:"featured,omitempty"`
}

// ProductPatch contient les champs modifiables depuis l'inventaire admin.
// Un champ nil n'est pas modifié.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Image       *string  `json:"image"`
	Featured    *bool    `json:"featured"`
}

// Apply retourne une copie du produit avec le patch appliqué
func (p ProductPatch) Apply(product Product) Product {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.Image != nil {
		product.Image = *p.Image
	}
	if p.Featured != nil {
		product.Featured = *p.Featured
	}
	return product
}
