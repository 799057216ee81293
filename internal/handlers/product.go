package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 🟢 GET /api/products?q=&category=
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.Catalog.List(c.Request.Context(), c.Query("q"), c.Query("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// 🟢 GET /api/products/featured
func (h *Handler) FeaturedProducts(c *gin.Context) {
	products, err := h.Catalog.Featured(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// 🟢 GET /api/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// 🟢 GET /api/products/:id/related
func (h *Handler) RelatedProducts(c *gin.Context) {
	products, err := h.Catalog.Related(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// 🟢 GET /api/categories
func (h *Handler) Categories(c *gin.Context) {
	cats, err := h.Catalog.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}
