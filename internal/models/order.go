package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses liste les statuts dans l'ordre du workflow
var OrderStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderReady, OrderCompleted, OrderCancelled}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid
}

type Order struct {
	ID               string        `json:"id"`
	UserID           string        `json:"userId,omitempty"`
	CustomerName     string        `json:"customerName"`
	CustomerEmail    string        `json:"customerEmail"`
	CustomerPhone    string        `json:"customerPhone"`
	Items            []CartLine    `json:"items"`
	Status           OrderStatus   `json:"status"`
	TotalAmount      float64       `json:"totalAmount"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	PaymentMethod    string        `json:"paymentMethod,omitempty"`
	PaymentReference string        `json:"paymentReference,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	PickupDate       *time.Time    `json:"pickupDate,omitempty"`
}

// Clone copie la commande sans partager le slice des lignes
func (o Order) Clone() Order {
	c := o
	c.Items = append([]CartLine(nil), o.Items...)
	if o.PickupDate != nil {
		d := *o.PickupDate
		c.PickupDate = &d
	}
	return c
}
