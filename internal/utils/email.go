package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"africana_backend/internal/models"

	"github.com/wneessen/go-mail"
)

// SendEmail envoie un e-mail HTML via le SMTP configuré, avec pièce
// jointe PDF optionnelle.
func SendEmail(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@africanacouture.com"
	}
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("facture_africana.pdf", bytes.NewReader(pdfAttachment))
	}

	host := os.Getenv("SMTP_HOST")
	client, err := mail.NewClient(host,
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// SendConfirmEmail envoie le lien de confirmation d'adresse e-mail.
func SendConfirmEmail(to, token string) error {
	frontURL := os.Getenv("FRONTEND_URL")
	link := fmt.Sprintf("%s/confirm-email?token=%s", frontURL, token)

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Bienvenue chez Africana Couture</h2>
		<p>Bonjour,</p>
		<p>Merci de votre inscription. Cliquez sur le lien ci-dessous pour confirmer votre adresse e-mail :</p>
		<p><a href="%s" style="color: #b8860b;">Confirmer mon adresse</a></p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Africana Couture</strong>
		</p>
	</div>
</body>
</html>`, link)

	return SendEmail(to, "Confirmez votre adresse e-mail", html, nil)
}

// SendLoginDetailsEmail envoie ses identifiants à un client créé au
// passage d'une commande invitée.
func SendLoginDetailsEmail(to, password string) error {
	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Votre compte Africana Couture</h2>
		<p>Bonjour,</p>
		<p>Un compte a été créé pour suivre votre commande. Vos identifiants :</p>
		<p><strong>E-mail :</strong> %s<br><strong>Mot de passe :</strong> %s</p>
		<p>Pensez à changer ce mot de passe après votre première connexion.</p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Africana Couture</strong>
		</p>
	</div>
</body>
</html>`, to, password)

	return SendEmail(to, "Vos identifiants Africana Couture", html, nil)
}

// OrderLine porte le détail affiché dans l'e-mail de confirmation,
// les noms de produits étant résolus par l'appelant.
type OrderLine struct {
	Name     string
	Quantity int
	Price    float64
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande
func GenerateOrderConfirmationHTML(order models.Order, lines []OrderLine, currencySymbol string) string {
	itemsHTML := ""
	for _, line := range lines {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%.2f%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%.2f%s</td>
			</tr>`, line.Name, line.Quantity, line.Price, currencySymbol,
			line.Price*float64(line.Quantity), currencySymbol)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande %s</h2>
		<p>Bonjour,</p>
		<p>Votre commande a été confirmée avec succès.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right;">Sous-total:</td>
					<td style="padding: 10px;">%.2f%s</td>
				</tr>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">%.2f%s</td>
				</tr>
			</tfoot>
		</table>

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Africana Couture</strong>
		</p>
	</div>
</body>
</html>`, order.Code, itemsHTML, order.SubTotal, currencySymbol, order.Total, currencySymbol)
}
