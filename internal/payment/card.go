package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"maybach_liquor/internal/utils"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"go.uber.org/zap"
)

var ErrCardDeclined = errors.New("paiement par carte refusé")

type CardCharge struct {
	Amount      float64
	Email       string
	Description string
}

// CardProcessor débite une carte et retourne la référence du paiement
type CardProcessor interface {
	Charge(ctx context.Context, charge CardCharge) (string, error)
}

// SimulatedCard accepte tout paiement après un délai
type SimulatedCard struct {
	delay time.Duration
	log   *zap.Logger
}

func NewSimulatedCard(delay time.Duration, log *zap.Logger) *SimulatedCard {
	return &SimulatedCard{delay: delay, log: log}
}

func (s *SimulatedCard) Charge(ctx context.Context, charge CardCharge) (string, error) {
	if err := utils.Sleep(ctx, s.delay); err != nil {
		return "", err
	}
	ref := "CARD-" + strings.ToUpper(uuid.NewString()[:8])
	s.log.Info("💳 Paiement carte simulé", zap.String("ref", ref), zap.Float64("amount", charge.Amount))
	return ref, nil
}

const (
	stripeCurrency          = "usd"
	stripeTestPaymentMethod = "pm_card_visa"
)

// StripeCard crée et confirme un PaymentIntent côté serveur
type StripeCard struct {
	paymentMethod string
	log           *zap.Logger
}

func NewStripeCard(secretKey string, log *zap.Logger) *StripeCard {
	stripe.Key = secretKey
	return &StripeCard{paymentMethod: stripeTestPaymentMethod, log: log}
}

func (s *StripeCard) Charge(ctx context.Context, charge CardCharge) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(math.Round(charge.Amount * 100))),
		Currency:      stripe.String(stripeCurrency),
		PaymentMethod: stripe.String(s.paymentMethod),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(charge.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	if charge.Email != "" {
		params.ReceiptEmail = stripe.String(charge.Email)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		s.log.Error("❌ Erreur Stripe", zap.Error(err))
		return "", fmt.Errorf("stripe: %w", err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		s.log.Warn("⚠️ PaymentIntent non abouti", zap.String("id", intent.ID), zap.String("status", string(intent.Status)))
		return "", ErrCardDeclined
	}

	s.log.Info("💳 PaymentIntent confirmé", zap.String("id", intent.ID), zap.Float64("amount", charge.Amount))
	return intent.ID, nil
}
