package handlers

import (
	"net/http"
	"time"

	"maybach_liquor/internal/cart"
	"maybach_liquor/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func (h *Handler) sessionCart(c *gin.Context) (*cart.Container, bool) {
	container, err := h.Carts.Get(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return container, true
}

func (h *Handler) respondCart(c *gin.Context, container *cart.Container) {
	view, err := container.View(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// 🟢 GET /api/cart
func (h *Handler) GetCart(c *gin.Context) {
	container, ok := h.sessionCart(c)
	if !ok {
		return
	}
	h.respondCart(c, container)
}

// 🟢 POST /api/cart/add
func (h *Handler) AddToCart(c *gin.Context) {
	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  *int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	qty := 1
	if input.Quantity != nil {
		qty = *input.Quantity
	}

	container, ok := h.sessionCart(c)
	if !ok {
		return
	}
	if err := container.Add(c.Request.Context(), input.ProductID, qty); err != nil {
		h.fail(c, err)
		return
	}
	h.respondCart(c, container)
}

// 🟢 PUT /api/cart/:productId
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var input struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité manquante"})
		return
	}

	container, ok := h.sessionCart(c)
	if !ok {
		return
	}
	if err := container.UpdateQuantity(c.Request.Context(), c.Param("productId"), *input.Quantity); err != nil {
		h.fail(c, err)
		return
	}
	h.respondCart(c, container)
}

// 🟢 DELETE /api/cart/:productId
func (h *Handler) RemoveFromCart(c *gin.Context) {
	container, ok := h.sessionCart(c)
	if !ok {
		return
	}
	if err := container.Remove(c.Request.Context(), c.Param("productId")); err != nil {
		h.fail(c, err)
		return
	}
	h.respondCart(c, container)
}

// 🟢 DELETE /api/cart
func (h *Handler) ClearCart(c *gin.Context) {
	container, ok := h.sessionCart(c)
	if !ok {
		return
	}
	if err := container.Clear(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	h.respondCart(c, container)
}

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
}

// CartWebSocket pousse le panier à chaque modification (GET /api/cart/ws)
func (h *Handler) CartWebSocket(c *gin.Context) {
	sid := middleware.SessionID(c)
	ctx := c.Request.Context()

	events, unsubscribe, err := h.Broker.Subscribe(ctx, sid)
	if err != nil {
		h.Log.Error("❌ Abonnement panier impossible", zap.String("session_id", sid), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Flux panier indisponible"})
		return
	}
	defer unsubscribe()

	up := h.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("❌ Erreur upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	// lecture en fond : seule façon de voir la fermeture côté client
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// relu du stockage à chaque envoi : la mutation a pu passer par une autre instance
	send := func(msgType string) error {
		container, err := h.Carts.Get(ctx, sid)
		if err != nil {
			return err
		}
		if err := container.Load(ctx); err != nil {
			return err
		}
		view, err := container.View(ctx)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(gin.H{"type": msgType, "cart": view})
	}

	if err := send("connected"); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := send(ev.Type); err != nil {
				h.Log.Debug("❌ Erreur envoi WebSocket", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
