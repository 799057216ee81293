package payment

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"maybach_liquor/internal/models"
)

var ErrTransactionNotFound = errors.New("transaction introuvable")

// Ledger est le registre des transactions M-Pesa
type Ledger struct {
	mu  sync.RWMutex
	txs []models.MpesaTransaction
}

func NewLedger(seed []models.MpesaTransaction) *Ledger {
	return &Ledger{txs: append([]models.MpesaTransaction(nil), seed...)}
}

// SampleTransactions reproduit l'historique de démo, horodaté par rapport à now
func SampleTransactions(now time.Time) []models.MpesaTransaction {
	ago := func(h int) time.Time { return now.Add(-time.Duration(h) * time.Hour).UTC() }
	return []models.MpesaTransaction{
		{ID: "MPE12345", CustomerName: "John Kamau", Phone: "254712345678", Amount: 2500, Status: models.TransactionCompleted, OrderRef: "ORD-2501", Timestamp: ago(1)},
		{ID: "MPE12346", CustomerName: "Mary Wanjiku", Phone: "254723456789", Amount: 5000, Status: models.TransactionPending, OrderRef: "ORD-2502", Timestamp: ago(2)},
		{ID: "MPE12347", CustomerName: "David Ochieng", Phone: "254734567890", Amount: 3200, Status: models.TransactionCompleted, OrderRef: "ORD-2503", Timestamp: ago(3)},
		{ID: "MPE12348", CustomerName: "Sarah Njeri", Phone: "254745678901", Amount: 1800, Status: models.TransactionFailed, OrderRef: "ORD-2504", Timestamp: ago(4)},
		{ID: "MPE12349", CustomerName: "Peter Mwangi", Phone: "254756789012", Amount: 4200, Status: models.TransactionCompleted, OrderRef: "ORD-2505", Timestamp: ago(5)},
		{ID: "MPE12350", CustomerName: "Elizabeth Atieno", Phone: "254767890123", Amount: 6000, Status: models.TransactionCompleted, OrderRef: "ORD-2506", Timestamp: ago(6)},
		{ID: "MPE12351", CustomerName: "Michael Gitonga", Phone: "254778901234", Amount: 3500, Status: models.TransactionPending, OrderRef: "ORD-2507", Timestamp: ago(7)},
		{ID: "MPE12352", CustomerName: "Lucy Waithera", Phone: "254789012345", Amount: 2800, Status: models.TransactionCompleted, OrderRef: "ORD-2508", Timestamp: ago(8)},
	}
}

func (l *Ledger) Record(tx models.MpesaTransaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs = append(l.txs, tx)
}

func (l *Ledger) Get(id string) (models.MpesaTransaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, tx := range l.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return models.MpesaTransaction{}, ErrTransactionNotFound
}

func (l *Ledger) SetStatus(id string, status models.TransactionStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.txs {
		if l.txs[i].ID == id {
			l.txs[i].Status = status
			return nil
		}
	}
	return ErrTransactionNotFound
}

// Filter : Status vide = tous ; Query cherche dans nom, téléphone, id et référence
type Filter struct {
	Query     string
	Status    models.TransactionStatus
	Ascending bool
}

// List retourne les transactions filtrées, les plus récentes d'abord sauf Ascending
func (l *Ledger) List(f Filter) []models.MpesaTransaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.MpesaTransaction, 0, len(l.txs))
	for _, tx := range l.txs {
		if f.Status != "" && tx.Status != f.Status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(tx.CustomerName), q) &&
			!strings.Contains(tx.Phone, q) &&
			!strings.Contains(strings.ToLower(tx.ID), q) &&
			!strings.Contains(strings.ToLower(tx.OrderRef), q) {
			continue
		}
		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if f.Ascending {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Report : les totaux portent sur tout le registre, la liste sur le filtre
func (l *Ledger) Report(f Filter) models.PaymentsReport {
	r := models.PaymentsReport{Transactions: l.List(f)}

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, tx := range l.txs {
		switch tx.Status {
		case models.TransactionCompleted:
			r.CompletedAmount += tx.Amount
			r.CompletedCount++
		case models.TransactionPending:
			r.PendingAmount += tx.Amount
			r.PendingCount++
		case models.TransactionFailed:
			r.FailedAmount += tx.Amount
			r.FailedCount++
		}
	}
	return r
}
