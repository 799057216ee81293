package models

type CategorySales struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type DashboardStats struct {
	TotalOrders      int             `json:"totalOrders"`
	PendingOrders    int             `json:"pendingOrders"`
	TotalRevenue     float64         `json:"totalRevenue"`
	LowStockItems    int             `json:"lowStockItems"`
	SalesByCategory  []CategorySales `json:"salesByCategory"`
	TopCategory      string          `json:"topCategory,omitempty"`
	RecentOrders     []Order         `json:"recentOrders"`
	LowStockProducts []Product       `json:"lowStockProducts"`
}
