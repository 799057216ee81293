package middleware

import (
	"net/http"
	"strings"

	"maybach_liquor/internal/auth"
	"maybach_liquor/internal/models"
	"maybach_liquor/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CurrentUser résout l'utilisateur : d'abord le token Bearer, sinon la session navigateur.
// Aucune requête n'est bloquée ici, sauf un token présent mais invalide.
func CurrentUser(tokens *utils.TokenIssuer, sessions *auth.Manager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Format Authorization invalide"})
				return
			}
			user, err := tokens.Parse(parts[1])
			if err != nil {
				log.Debug("❌ Token refusé", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
				return
			}
			c.Set(ctxUser, user)
			c.Next()
			return
		}

		if sid := SessionID(c); sid != "" {
			s, err := sessions.Get(c.Request.Context(), sid)
			if err != nil {
				log.Warn("⚠️ Session auth illisible", zap.String("session_id", sid), zap.Error(err))
			} else if user, ok := s.User(); ok {
				c.Set(ctxUser, user)
			}
		}
		c.Next()
	}
}

// User retourne l'utilisateur résolu par CurrentUser
func User(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

func RequireUser(c *gin.Context) {
	if _, ok := User(c); !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}
	c.Next()
}

// RequireAdmin vérifie que l'utilisateur a le rôle "admin"
func RequireAdmin(c *gin.Context) {
	u, ok := User(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}
	if !u.IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
		return
	}
	c.Next()
}
