package models

// CartItem est la ligne persistée dans le stockage local : pas de copie du produit,
// le prix est relu au moment de l'affichage.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartLine est une ligne résolue : produit courant + quantité.
// Sert aussi de ligne de commande (le produit y est figé au moment de l'achat).
type CartLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

func (l CartLine) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

type CartView struct {
	Items     []CartLine `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"itemCount"`
}

// SumLines calcule le total d'une liste de lignes
func SumLines(lines []CartLine) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}
