package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	SessionName  = "maybach_session"
	sessionIDKey = "session_id"
	ctxSessionID = "session_id"
	ctxUser      = "user"
)

// BrowserSession donne à chaque navigateur un identifiant stable, gardé dans un cookie signé.
// Panier et utilisateur connecté sont rangés dans le stockage local sous cet identifiant.
func BrowserSession(store sessions.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Get(c.Request, SessionName)
		if err != nil {
			// cookie illisible (secret changé) : on repart d'une session neuve
			log.Debug("⚠️ Cookie de session invalide", zap.Error(err))
		}

		sid, _ := session.Values[sessionIDKey].(string)
		if sid == "" {
			sid = uuid.NewString()
			session.Values[sessionIDKey] = sid
			if err := session.Save(c.Request, c.Writer); err != nil {
				log.Error("❌ Sauvegarde session impossible", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Erreur session"})
				return
			}
		}

		c.Set(ctxSessionID, sid)
		c.Next()
	}
}

// SessionID retourne l'identifiant posé par BrowserSession
func SessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

// NewCookieStore configure le cookie de session (30 jours, HttpOnly)
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
