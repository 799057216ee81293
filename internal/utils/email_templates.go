package utils

import (
	"fmt"
	"html"

	"maybach_liquor/internal/models"
)

const storefrontURL = "http://localhost:5173"

// Welcome envoie l'e-mail de bienvenue après une inscription
func (n *Notifier) Welcome(user models.User) {
	if user.Email == "" {
		return
	}
	n.sendAsync(user.Email, "🎉 Welcome to Maybach Liquor!", WelcomeHTML(user))
}

// WelcomeHTML génère l'e-mail de bienvenue
func WelcomeHTML(user models.User) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Welcome to Maybach Liquor</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f5f5f5;">
    <table role="presentation" style="width: 100%%; border-collapse: collapse; background-color: #f5f5f5;">
        <tr>
            <td style="padding: 40px 20px;">
                <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px;">
                    <!-- Header -->
                    <tr>
                        <td style="background-color: #1a1a1a; padding: 40px 30px; text-align: center; border-radius: 12px 12px 0 0;">
                            <h1 style="margin: 0; color: #d4af37; font-size: 28px;">Welcome, %s!</h1>
                        </td>
                    </tr>
                    <!-- Content -->
                    <tr>
                        <td style="padding: 40px 30px;">
                            <p style="margin: 0 0 25px 0; color: #333333; font-size: 16px; line-height: 1.6;">
                                Your account is ready. Browse our selection and pre-book your favourite bottles for pickup.
                            </p>
                            <table role="presentation" style="width: 100%%; margin: 30px 0;">
                                <tr>
                                    <td style="text-align: center;">
                                        <a href="%s/shop" style="display: inline-block; padding: 16px 40px; background-color: #d4af37; color: #1a1a1a; text-decoration: none; border-radius: 8px; font-weight: 600;">
                                            Start shopping
                                        </a>
                                    </td>
                                </tr>
                            </table>
                            <p style="margin: 0; color: #999999; font-size: 12px;">Please drink responsibly. Sales restricted to adults of legal drinking age.</p>
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>`, html.EscapeString(user.Name), storefrontURL)
}
