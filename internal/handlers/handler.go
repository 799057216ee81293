package handlers

import (
	"context"
	"errors"
	"net/http"

	"maybach_liquor/internal/admin"
	"maybach_liquor/internal/auth"
	"maybach_liquor/internal/cart"
	"maybach_liquor/internal/checkout"
	"maybach_liquor/internal/database"
	"maybach_liquor/internal/payment"
	"maybach_liquor/internal/services"
	"maybach_liquor/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler regroupe les dépendances des routes HTTP
type Handler struct {
	Catalog        *services.Catalog
	Carts          *cart.Manager
	Broker         cart.Broker
	Auth           *auth.Manager
	Tokens         *utils.TokenIssuer
	Checkout       *checkout.Service
	Admin          *admin.Service
	Orders         database.OrderRepository
	Images         services.ImageStore
	Notifier       *utils.Notifier
	AllowedOrigins []string
	Log            *zap.Logger
}

// Health répond tant que le serveur tourne
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail traduit une erreur métier en code HTTP + gin.H{"error": ...}
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Log.Error("❌ Erreur interne", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "Erreur interne du serveur"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, checkout.ErrInvalidInput),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrPickupInPast),
		errors.Is(err, admin.ErrInvalidInput),
		errors.Is(err, admin.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, payment.ErrCardDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, checkout.ErrNotFound),
		errors.Is(err, payment.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, database.ErrDuplicateEmail),
		errors.Is(err, checkout.ErrInvalidState),
		errors.Is(err, checkout.ErrBusy),
		errors.Is(err, checkout.ErrAbandoned),
		errors.Is(err, admin.ErrTransitionNotAllowed):
		return http.StatusConflict
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
