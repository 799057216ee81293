package models

import "time"

type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionPending   TransactionStatus = "pending"
	TransactionFailed    TransactionStatus = "failed"
)

// MpesaTransaction est une transaction M-Pesa simulée (page Paiements de l'admin)
type MpesaTransaction struct {
	ID           string            `json:"id"`
	CustomerName string            `json:"customerName"`
	Phone        string            `json:"phone"`
	Amount       float64           `json:"amount"`
	Status       TransactionStatus `json:"status"`
	OrderRef     string            `json:"orderRef"`
	Timestamp    time.Time         `json:"timestamp"`
}

type PaymentsReport struct {
	Transactions    []MpesaTransaction `json:"transactions"`
	CompletedAmount float64            `json:"completedAmount"`
	PendingAmount   float64            `json:"pendingAmount"`
	FailedAmount    float64            `json:"failedAmount"`
	CompletedCount  int                `json:"completedCount"`
	PendingCount    int                `json:"pendingCount"`
	FailedCount     int                `json:"failedCount"`
}
