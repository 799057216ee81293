package handlers

import (
	"net/http"
	"time"

	"maybach_liquor/internal/checkout"
	"maybach_liquor/internal/middleware"

	"github.com/gin-gonic/gin"
)

// 🟢 POST /api/checkout : (re)démarre le checkout de la session
func (h *Handler) BeginCheckout(c *gin.Context) {
	u, _ := middleware.User(c)
	co := h.Checkout.Begin(middleware.SessionID(c), u.ID)
	c.JSON(http.StatusCreated, co)
}

// 🟢 GET /api/checkout/:id
func (h *Handler) GetCheckout(c *gin.Context) {
	co, err := h.Checkout.Get(middleware.SessionID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, co)
}

// 🟢 DELETE /api/checkout/:id
func (h *Handler) AbandonCheckout(c *gin.Context) {
	if err := h.Checkout.Abandon(middleware.SessionID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checkout abandonné"})
}

// 🟢 POST /api/checkout/:id/info
func (h *Handler) SubmitCheckoutInfo(c *gin.Context) {
	var info checkout.CustomerInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	co, err := h.Checkout.SubmitInfo(c.Request.Context(), middleware.SessionID(c), c.Param("id"), info)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, co)
}

// 🟢 POST /api/checkout/:id/mpesa
func (h *Handler) ConfirmMpesa(c *gin.Context) {
	var input struct {
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	co, err := h.Checkout.ConfirmMpesa(c.Request.Context(), middleware.SessionID(c), c.Param("id"), input.Phone)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, co)
}

// 🟢 POST /api/checkout/:id/back
func (h *Handler) CheckoutBack(c *gin.Context) {
	co, err := h.Checkout.Back(middleware.SessionID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, co)
}

// 🟢 POST /api/prebook
func (h *Handler) PreBook(c *gin.Context) {
	var input struct {
		Name       string    `json:"name"`
		Email      string    `json:"email"`
		Phone      string    `json:"phone"`
		PickupDate time.Time `json:"pickupDate"`
		Notes      string    `json:"notes"`
		ProductID  string    `json:"productId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides (pickupDate au format RFC 3339)"})
		return
	}

	u, _ := middleware.User(c)
	order, err := h.Checkout.PreBook(c.Request.Context(), middleware.SessionID(c), checkout.PreBookRequest{
		UserID:     u.ID,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		PickupDate: input.PickupDate,
		Notes:      input.Notes,
		ProductID:  input.ProductID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}
