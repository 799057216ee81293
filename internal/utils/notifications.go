package utils

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"maybach_liquor/internal/models"

	"go.uber.org/zap"
)

const notificationTimeout = 30 * time.Second

// Notifier prévient les clients des événements de leurs commandes
type Notifier struct {
	mailer Mailer
	log    *zap.Logger
}

func NewNotifier(mailer Mailer, log *zap.Logger) *Notifier {
	return &Notifier{mailer: mailer, log: log}
}

// OrderPlaced envoie la confirmation de commande en arrière-plan.
// Le contexte de la requête n'est pas réutilisé : l'e-mail part même si le client s'est déconnecté.
func (n *Notifier) OrderPlaced(order models.Order) {
	if order.CustomerEmail == "" {
		return
	}
	subject := fmt.Sprintf("Order #%s confirmed - Maybach Liquor", shortID(order.ID))
	if order.PickupDate != nil {
		subject = fmt.Sprintf("Pre-booking #%s received - Maybach Liquor", shortID(order.ID))
	}
	n.sendAsync(order.CustomerEmail, subject, OrderConfirmationHTML(order))
}

// OrderStatusChanged notifie un changement de statut fait par un admin
func (n *Notifier) OrderStatusChanged(order models.Order) {
	if order.CustomerEmail == "" {
		return
	}
	n.sendAsync(order.CustomerEmail, statusSubject(order.Status), statusHTML(order))
}

func (n *Notifier) sendAsync(to, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()
		if err := n.mailer.Send(ctx, to, subject, body); err != nil {
			n.log.Warn("⚠️ Erreur envoi e-mail", zap.String("to", to), zap.Error(err))
		}
	}()
}

// OrderConfirmationHTML génère le HTML de confirmation de commande
func OrderConfirmationHTML(order models.Order) string {
	var rows strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&rows, `
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>%.2f</td>
				<td>%.2f</td>
			</tr>`, html.EscapeString(item.Product.Name), item.Quantity, item.Product.Price, item.Subtotal())
	}

	pickup := ""
	if order.PickupDate != nil {
		pickup = fmt.Sprintf(`<p>Pickup date: <strong>%s</strong></p>`, order.PickupDate.Format("Mon 2 Jan 2006 15:04"))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Order confirmation</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2>Thank you, %s!</h2>
		<p>Your order <strong>#%s</strong> has been received.</p>
		%s
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead><tr><th>Product</th><th>Qty</th><th>Unit price</th><th>Total</th></tr></thead>
			<tbody>%s</tbody>
			<tfoot><tr><td colspan="3" style="text-align: right; font-weight: bold;">Total:</td><td style="font-weight: bold;">%.2f</td></tr></tfoot>
		</table>
		<p>Payment: %s</p>
		<p>Maybach Liquor</p>
	</div>
</body>
</html>`, html.EscapeString(order.CustomerName), shortID(order.ID), pickup, rows.String(), order.TotalAmount, order.PaymentStatus)
}

func statusSubject(status models.OrderStatus) string {
	switch status {
	case models.OrderConfirmed:
		return "✅ Your order is confirmed - Maybach Liquor"
	case models.OrderReady:
		return "📦 Your order is ready for pickup - Maybach Liquor"
	case models.OrderCompleted:
		return "🎉 Thank you for your visit - Maybach Liquor"
	case models.OrderCancelled:
		return "❌ Order cancelled - Maybach Liquor"
	default:
		return "📋 Order update - Maybach Liquor"
	}
}

func statusMessage(status models.OrderStatus) string {
	switch status {
	case models.OrderConfirmed:
		return "We have confirmed your order and are preparing it."
	case models.OrderReady:
		return "Your order is ready. Bring your pickup QR code to the counter."
	case models.OrderCompleted:
		return "Your order has been collected. Enjoy responsibly!"
	case models.OrderCancelled:
		return "Your order has been cancelled. Contact us if you have any question."
	default:
		return "The status of your order has been updated."
	}
}

func statusHTML(order models.Order) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Order update</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 12px;">
		<h2>Order #%s: %s</h2>
		<p>%s</p>
		<p>Total: <strong>%.2f</strong></p>
	</div>
</body>
</html>`, shortID(order.ID), order.Status, statusMessage(order.Status), order.TotalAmount)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
