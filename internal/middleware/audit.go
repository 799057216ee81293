package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Actions auditées dans la console admin
const (
	ActionProductCreate      = "product.create"
	ActionProductUpdate      = "product.update"
	ActionProductImage       = "product.image"
	ActionOrderStatusChange  = "order.status"
	ActionOrderPaymentChange = "order.payment_status"
)

// AuditAdminAction journalise qui a fait quoi sur quelle ressource, une fois la requête traitée
func AuditAdminAction(action string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		u, _ := User(c)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("action", action),
			zap.String("resource_id", c.Param("id")),
			zap.String("user_id", u.ID),
			zap.String("user_email", u.Email),
			zap.String("ip", c.ClientIP()),
			zap.Int("status", status),
		}
		if status >= 200 && status < 300 {
			log.Info("📝 Audit admin", fields...)
		} else {
			log.Warn("📝 Audit admin (échec)", fields...)
		}
	}
}
