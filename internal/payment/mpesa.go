package payment

import (
	"context"
	"strings"
	"time"

	"maybach_liquor/internal/models"
	"maybach_liquor/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MpesaRequest struct {
	CustomerName string
	Phone        string
	Amount       float64
	OrderRef     string
}

// MpesaGateway envoie la demande STK push puis attend la confirmation du client
type MpesaGateway interface {
	RequestPayment(ctx context.Context, req MpesaRequest) (string, error)
	AwaitConfirmation(ctx context.Context, transactionID string) error
}

// SimulatedMpesa réussit toujours, après deux délais annulables
type SimulatedMpesa struct {
	ledger       *Ledger
	requestDelay time.Duration
	confirmDelay time.Duration
	now          func() time.Time
	log          *zap.Logger
}

func NewSimulatedMpesa(ledger *Ledger, requestDelay, confirmDelay time.Duration, log *zap.Logger) *SimulatedMpesa {
	return &SimulatedMpesa{
		ledger:       ledger,
		requestDelay: requestDelay,
		confirmDelay: confirmDelay,
		now:          time.Now,
		log:          log,
	}
}

func (m *SimulatedMpesa) RequestPayment(ctx context.Context, req MpesaRequest) (string, error) {
	if err := utils.Sleep(ctx, m.requestDelay); err != nil {
		return "", err
	}

	id := "MPE" + strings.ToUpper(uuid.NewString()[:8])
	m.ledger.Record(models.MpesaTransaction{
		ID:           id,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Amount:       req.Amount,
		Status:       models.TransactionPending,
		OrderRef:     req.OrderRef,
		Timestamp:    m.now().UTC(),
	})
	m.log.Info("📲 Demande M-Pesa envoyée", zap.String("tx", id), zap.String("phone", req.Phone), zap.Float64("amount", req.Amount))
	return id, nil
}

// AwaitConfirmation : si ctx est annulé la transaction reste en attente
func (m *SimulatedMpesa) AwaitConfirmation(ctx context.Context, transactionID string) error {
	if err := utils.Sleep(ctx, m.confirmDelay); err != nil {
		return err
	}
	if err := m.ledger.SetStatus(transactionID, models.TransactionCompleted); err != nil {
		return err
	}
	m.log.Info("✅ Paiement M-Pesa confirmé", zap.String("tx", transactionID))
	return nil
}
