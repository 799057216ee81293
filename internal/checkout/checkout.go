package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"maybach_liquor/internal/cart"
	"maybach_liquor/internal/database"
	"maybach_liquor/internal/models"
	"maybach_liquor/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State string

const (
	StateCollectingInfo  State = "collecting_info"
	StateAwaitingPayment State = "awaiting_payment_confirmation"
	StateCompleted       State = "completed"
)

type PaymentMethod string

const (
	MethodMpesa PaymentMethod = "mpesa"
	MethodCard  PaymentMethod = "card"
)

var (
	ErrNotFound     = errors.New("checkout introuvable")
	ErrEmptyCart    = errors.New("le panier est vide")
	ErrInvalidInput = errors.New("informations client incomplètes")
	ErrInvalidState = errors.New("action impossible dans l'état actuel du checkout")
	ErrBusy         = errors.New("une étape du checkout est déjà en cours")
	ErrAbandoned    = errors.New("checkout abandonné")
	ErrPickupInPast = errors.New("la date de retrait doit être dans le futur")
)

type CustomerInfo struct {
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// Checkout est l'instantané renvoyé aux appelants
type Checkout struct {
	ID            string        `json:"id"`
	SessionID     string        `json:"-"`
	UserID        string        `json:"userId,omitempty"`
	State         State         `json:"state"`
	Info          CustomerInfo  `json:"info"`
	TransactionID string        `json:"transactionId,omitempty"`
	Order         *models.Order `json:"order,omitempty"`
	Busy          bool          `json:"busy"`
}

// Carts donne accès au panier d'une session navigateur
type Carts interface {
	Get(ctx context.Context, sessionID string) (*cart.Container, error)
}

// OrderNotifier est prévenu de chaque commande créée
type OrderNotifier interface {
	OrderPlaced(order models.Order)
}

const (
	idleFlowTTL      = 30 * time.Minute
	completedFlowTTL = 5 * time.Minute
	flowSweepEvery   = time.Minute
)

type flow struct {
	mu        sync.Mutex
	co        Checkout
	cancel    context.CancelFunc
	busy      bool
	abandoned bool

	// protégé par Service.mu
	seen time.Time
}

// Service pilote les checkouts en cours, un au plus par session navigateur
type Service struct {
	mu        sync.Mutex
	flows     map[string]*flow
	bySession map[string]string
	lastSweep time.Time

	carts    Carts
	products cart.ProductLookup
	orders   database.OrderRepository
	mpesa    payment.MpesaGateway
	card     payment.CardProcessor
	notifier OrderNotifier
	now      func() time.Time
	log      *zap.Logger
}

type Deps struct {
	Carts    Carts
	Products cart.ProductLookup
	Orders   database.OrderRepository
	Mpesa    payment.MpesaGateway
	Card     payment.CardProcessor
	Notifier OrderNotifier
	Log      *zap.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		flows:     make(map[string]*flow),
		bySession: make(map[string]string),
		carts:     d.Carts,
		products:  d.Products,
		orders:    d.Orders,
		mpesa:     d.Mpesa,
		card:      d.Card,
		notifier:  d.Notifier,
		now:       time.Now,
		log:       d.Log,
	}
}

// Begin démarre un checkout vierge ; celui déjà ouvert pour la session est abandonné
func (s *Service) Begin(sessionID, userID string) Checkout {
	f := &flow{co: Checkout{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		UserID:    userID,
		State:     StateCollectingInfo,
	}}

	s.mu.Lock()
	now := s.now()
	s.sweep(now)
	f.seen = now
	prev := s.flows[s.bySession[sessionID]]
	delete(s.flows, s.bySession[sessionID])
	s.flows[f.co.ID] = f
	s.bySession[sessionID] = f.co.ID
	s.mu.Unlock()

	if prev != nil {
		prev.abandon()
	}
	return f.co
}

func (s *Service) Get(sessionID, id string) (Checkout, error) {
	f, err := s.lookup(sessionID, id)
	if err != nil {
		return Checkout{}, err
	}
	return f.snapshot(), nil
}

// Abandon annule l'étape en cours ; son résultat tardif est ignoré
func (s *Service) Abandon(sessionID, id string) error {
	f, err := s.lookup(sessionID, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.flows, id)
	if s.bySession[sessionID] == id {
		delete(s.bySession, sessionID)
	}
	s.mu.Unlock()

	f.abandon()
	return nil
}

// SubmitInfo enregistre les infos client. M-Pesa attend ensuite la confirmation,
// la carte est débitée tout de suite et la commande créée.
func (s *Service) SubmitInfo(ctx context.Context, sessionID, id string, info CustomerInfo) (Checkout, error) {
	info = normalize(info)
	if info.Name == "" || info.Email == "" || info.Phone == "" {
		return Checkout{}, ErrInvalidInput
	}
	if info.PaymentMethod != MethodMpesa && info.PaymentMethod != MethodCard {
		return Checkout{}, fmt.Errorf("%w: moyen de paiement %q", ErrInvalidInput, info.PaymentMethod)
	}

	f, err := s.lookup(sessionID, id)
	if err != nil {
		return Checkout{}, err
	}

	view, err := s.cartView(ctx, sessionID)
	if err != nil {
		return Checkout{}, err
	}
	if len(view.Items) == 0 {
		return Checkout{}, ErrEmptyCart
	}

	if info.PaymentMethod == MethodMpesa {
		f.mu.Lock()
		defer f.mu.Unlock()
		if err := f.ready(StateCollectingInfo); err != nil {
			return Checkout{}, err
		}
		f.co.Info = info
		f.co.State = StateAwaitingPayment
		return f.co, nil
	}

	return s.run(ctx, f, StateCollectingInfo,
		func(stepCtx context.Context) (string, error) {
			return s.card.Charge(stepCtx, payment.CardCharge{
				Amount:      view.Total,
				Email:       info.Email,
				Description: "Maybach Liquor - checkout " + id,
			})
		},
		func(ctx context.Context, ref string) error {
			f.co.Info = info
			return s.placeOrder(ctx, f, "Card", ref, view)
		})
}

// ConfirmMpesa simule la demande STK push puis la confirmation
func (s *Service) ConfirmMpesa(ctx context.Context, sessionID, id, phone string) (Checkout, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return Checkout{}, fmt.Errorf("%w: numéro M-Pesa manquant", ErrInvalidInput)
	}

	f, err := s.lookup(sessionID, id)
	if err != nil {
		return Checkout{}, err
	}

	view, err := s.cartView(ctx, sessionID)
	if err != nil {
		return Checkout{}, err
	}
	if len(view.Items) == 0 {
		return Checkout{}, ErrEmptyCart
	}
	name := f.snapshot().Info.Name

	return s.run(ctx, f, StateAwaitingPayment,
		func(stepCtx context.Context) (string, error) {
			txID, err := s.mpesa.RequestPayment(stepCtx, payment.MpesaRequest{
				CustomerName: name,
				Phone:        phone,
				Amount:       view.Total,
				OrderRef:     "CHK-" + strings.ToUpper(id[:8]),
			})
			if err != nil {
				return "", err
			}
			if err := s.mpesa.AwaitConfirmation(stepCtx, txID); err != nil {
				return "", err
			}
			return txID, nil
		},
		func(ctx context.Context, txID string) error {
			f.co.TransactionID = txID
			return s.placeOrder(ctx, f, "M-Pesa", txID, view)
		})
}

// Back revient au formulaire depuis l'attente M-Pesa
func (s *Service) Back(sessionID, id string) (Checkout, error) {
	f, err := s.lookup(sessionID, id)
	if err != nil {
		return Checkout{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(StateAwaitingPayment); err != nil {
		return Checkout{}, err
	}
	f.co.State = StateCollectingInfo
	return f.co, nil
}

// run exécute une étape longue hors verrou puis applique son résultat.
// Un paiement réussi est toujours enregistré, même si le checkout a été
// abandonné pendant l'étape : l'argent a déjà bougé.
func (s *Service) run(
	ctx context.Context,
	f *flow,
	from State,
	step func(context.Context) (string, error),
	commit func(context.Context, string) error,
) (Checkout, error) {
	f.mu.Lock()
	if err := f.ready(from); err != nil {
		f.mu.Unlock()
		return Checkout{}, err
	}
	stepCtx, cancel := context.WithCancel(ctx)
	f.busy = true
	f.cancel = cancel
	f.mu.Unlock()

	ref, stepErr := step(stepCtx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	f.cancel = nil
	cancel()

	if stepErr != nil {
		if f.abandoned {
			s.log.Info("🚫 Étape interrompue, checkout abandonné", zap.String("checkout_id", f.co.ID))
			return Checkout{}, ErrAbandoned
		}
		return Checkout{}, stepErr
	}
	if f.abandoned {
		s.log.Warn("⚠️ Paiement accepté après abandon, commande créée quand même", zap.String("checkout_id", f.co.ID))
	}
	// le paiement est passé : la commande est créée même si le client s'est déconnecté
	if err := commit(context.WithoutCancel(ctx), ref); err != nil {
		return Checkout{}, err
	}
	f.co.State = StateCompleted
	return f.co, nil
}

// placeOrder est appelé avec f.mu tenu. La commande reprend exactement le
// panier qui a été débité ; seules ces quantités quittent le panier.
func (s *Service) placeOrder(ctx context.Context, f *flow, method, ref string, paid models.CartView) error {
	c, err := s.carts.Get(ctx, f.co.SessionID)
	if err != nil {
		return err
	}

	order, err := s.orders.CreateOrder(ctx, models.Order{
		UserID:           f.co.UserID,
		CustomerName:     f.co.Info.Name,
		CustomerEmail:    f.co.Info.Email,
		CustomerPhone:    f.co.Info.Phone,
		Items:            paid.Items,
		Status:           models.OrderConfirmed,
		TotalAmount:      paid.Total,
		PaymentStatus:    models.PaymentPaid,
		PaymentMethod:    method,
		PaymentReference: ref,
	})
	if err != nil {
		return fmt.Errorf("création commande: %w", err)
	}
	f.co.Order = &order
	s.log.Info("✅ Commande créée", zap.String("order_id", order.ID), zap.String("method", method), zap.Float64("total", order.TotalAmount))

	if err := c.RemovePurchased(ctx, paid.Items); err != nil {
		s.log.Error("❌ Commande créée mais panier non vidé", zap.String("order_id", order.ID), zap.Error(err))
	}
	if s.notifier != nil {
		s.notifier.OrderPlaced(order)
	}
	return nil
}

func (s *Service) lookup(sessionID, id string) (*flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	f, ok := s.flows[id]
	if !ok || f.co.SessionID != sessionID {
		return nil, ErrNotFound
	}
	f.seen = now
	return f, nil
}

// sweep oublie les checkouts terminés ou délaissés, jamais ceux dont une
// étape tourne. Appelé avec s.mu tenu.
func (s *Service) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < flowSweepEvery {
		return
	}
	s.lastSweep = now

	for id, f := range s.flows {
		f.mu.Lock()
		busy, completed, sid := f.busy, f.co.State == StateCompleted, f.co.SessionID
		f.mu.Unlock()

		ttl := idleFlowTTL
		if completed {
			ttl = completedFlowTTL
		}
		if busy || now.Sub(f.seen) <= ttl {
			continue
		}
		delete(s.flows, id)
		if s.bySession[sid] == id {
			delete(s.bySession, sid)
		}
		s.log.Debug("🧹 Checkout expiré", zap.String("checkout_id", id), zap.Bool("completed", completed))
	}
}

// Active retourne le nombre de checkouts gardés en mémoire
func (s *Service) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}

func (s *Service) cartView(ctx context.Context, sessionID string) (models.CartView, error) {
	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return models.CartView{}, err
	}
	return c.View(ctx)
}

// ready est appelé avec f.mu tenu
func (f *flow) ready(want State) error {
	if f.abandoned {
		return ErrNotFound
	}
	if f.busy {
		return ErrBusy
	}
	if f.co.State != want {
		return fmt.Errorf("%w: %s", ErrInvalidState, f.co.State)
	}
	return nil
}

func (f *flow) snapshot() Checkout {
	f.mu.Lock()
	defer f.mu.Unlock()
	co := f.co
	co.Busy = f.busy
	return co
}

func (f *flow) abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abandoned = true
	if f.cancel != nil {
		f.cancel()
	}
}

func normalize(info CustomerInfo) CustomerInfo {
	info.Name = strings.TrimSpace(info.Name)
	info.Email = strings.TrimSpace(info.Email)
	info.Phone = strings.TrimSpace(info.Phone)
	info.PaymentMethod = PaymentMethod(strings.ToLower(strings.TrimSpace(string(info.PaymentMethod))))
	return info
}
