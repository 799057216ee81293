package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"maybach_liquor/internal/admin"
	"maybach_liquor/internal/models"
	"maybach_liquor/internal/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	maxImageSize  = 5 << 20
	previewURLTTL = time.Hour
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ===== Inventaire =====

func (h *Handler) AdminListProducts(c *gin.Context) {
	products, err := h.Admin.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) AdminAddProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	created, err := h.Admin.AddProduct(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Catalog.Reindex(c.Request.Context(), created)
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) AdminUpdateProduct(c *gin.Context) {
	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	updated, err := h.Admin.UpdateProduct(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Catalog.Reindex(c.Request.Context(), updated)
	c.JSON(http.StatusOK, updated)
}

// 🟢 POST /api/admin/products/:id/image (multipart, champ "image")
func (h *Handler) AdminUploadProductImage(c *gin.Context) {
	if h.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stockage d'images non configuré"})
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := h.Catalog.Get(ctx, id); err != nil {
		h.fail(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image manquant"})
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Image trop volumineuse (max %d Mo)", maxImageSize>>20)})
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format d'image non supporté"})
		return
	}

	f, err := file.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	url, err := h.Images.Upload(ctx, id, file.Filename, f, file.Size, contentType)
	if err != nil {
		h.Log.Error("❌ Upload image produit", zap.String("product", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Échec de l'upload de l'image"})
		return
	}

	updated, err := h.Admin.UpdateProduct(ctx, id, models.ProductPatch{Image: &url})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Catalog.Reindex(ctx, updated)

	preview, err := h.Images.SignedURL(ctx, url, previewURLTTL)
	if err != nil {
		h.Log.Warn("⚠️ URL signée indisponible", zap.String("product", id), zap.Error(err))
		preview = url
	}
	c.JSON(http.StatusOK, gin.H{"product": updated, "previewUrl": preview})
}

// ===== Commandes =====

func (h *Handler) AdminListOrders(c *gin.Context) {
	orders, err := h.Admin.ListOrders(c.Request.Context(), admin.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Query:  c.Query("q"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) AdminGetOrder(c *gin.Context) {
	order, err := h.Admin.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":              order,
		"allowedTransitions": admin.AllowedTransitions(order.Status),
	})
}

func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	var input struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut requis"})
		return
	}
	order, err := h.Admin.UpdateOrderStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) AdminUpdatePaymentStatus(c *gin.Context) {
	var input struct {
		PaymentStatus models.PaymentStatus `json:"paymentStatus" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut de paiement requis"})
		return
	}
	order, err := h.Admin.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), input.PaymentStatus)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ===== Tableau de bord & paiements =====

func (h *Handler) AdminDashboard(c *gin.Context) {
	stats, err := h.Admin.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) AdminPayments(c *gin.Context) {
	report := h.Admin.Payments(payment.Filter{
		Query:     c.Query("q"),
		Status:    models.TransactionStatus(c.Query("status")),
		Ascending: strings.EqualFold(c.Query("sort"), "asc"),
	})
	c.JSON(http.StatusOK, report)
}
