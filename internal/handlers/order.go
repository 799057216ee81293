package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"maybach_liquor/internal/middleware"
	"maybach_liquor/internal/models"
	"maybach_liquor/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

func ownsOrder(u models.User, o models.Order) bool {
	if o.UserID != "" && o.UserID == u.ID {
		return true
	}
	return u.Email != "" && strings.EqualFold(o.CustomerEmail, u.Email)
}

// 🟢 GET /api/orders/mine
func (h *Handler) MyOrders(c *gin.Context) {
	u, _ := middleware.User(c)

	all, err := h.Orders.ListOrders(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	mine := make([]models.Order, 0)
	for _, o := range all {
		if ownsOrder(u, o) {
			mine = append(mine, o)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })

	c.JSON(http.StatusOK, mine)
}

// 🟢 GET /api/orders/:id/qrcode : QR de retrait en PNG
func (h *Handler) OrderQRCode(c *gin.Context) {
	u, _ := middleware.User(c)

	order, err := h.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !u.IsAdmin() && !ownsOrder(u, order) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}

	size := defaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > maxQRSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Taille invalide"})
			return
		}
		size = n
	}

	png, err := utils.GeneratePickupQR(order, size)
	if err != nil {
		h.Log.Error("❌ Génération QR code", zap.String("order", order.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de générer le QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
