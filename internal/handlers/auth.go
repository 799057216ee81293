package handlers

import (
	"net/http"

	"maybach_liquor/internal/auth"
	"maybach_liquor/internal/middleware"
	"maybach_liquor/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) session(c *gin.Context) (*auth.Session, bool) {
	s, err := h.Auth.Get(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) respondWithToken(c *gin.Context, status int, u models.User) {
	token, err := h.Tokens.Generate(u)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, gin.H{
		"token":   token,
		"user":    u,
		"isAdmin": u.IsAdmin(),
	})
}

// 🟢 POST /api/auth/signup
func (h *Handler) Signup(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}
	u, err := s.Signup(c.Request.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.Notifier != nil {
		h.Notifier.Welcome(u)
	}
	h.respondWithToken(c, http.StatusCreated, u)
}

// 🟢 POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}
	u, err := s.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, u)
}

// 🟢 POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Logout(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

// 🟢 GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	u, logged := middleware.User(c)
	if !logged {
		c.JSON(http.StatusOK, gin.H{"user": nil, "isAdmin": false, "isLoading": s.IsLoading()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "isAdmin": u.IsAdmin(), "isLoading": s.IsLoading()})
}

// 🟢 PUT /api/auth/me
func (h *Handler) UpdateMe(c *gin.Context) {
	var input struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	current, _ := middleware.User(c)
	s, ok := h.session(c)
	if !ok {
		return
	}

	// la session navigateur garde une copie de l'utilisateur : on passe par elle
	// quand c'est le même compte, sinon (token Bearer) directement par le compte
	var (
		u   models.User
		err error
	)
	if su, logged := s.User(); logged && su.ID == current.ID {
		u, err = s.UpdateProfile(c.Request.Context(), input.Name, input.Email)
	} else {
		u, err = h.Auth.UpdateProfile(c.Request.Context(), current.ID, input.Name, input.Email)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "isAdmin": u.IsAdmin()})
}
