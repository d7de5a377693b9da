package utils

import (
	"fmt"
	"math/rand"
	"time"

	"ferneynails-backend/models"
)

// GenerateInvoiceNumber builds an invoice number of the form F<yyyy><mm><nnnn>
// where nnnn is a random 4-digit suffix. Collisions are possible, so callers
// must insert under a unique index and retry.
func GenerateInvoiceNumber() string {
	return fmt.Sprintf("F%s%04d", time.Now().Format("200601"), rand.Intn(10000))
}

// BuildInvoiceHTML renders the invoice email body. The same renderer serves
// the initial send and resends so the client always receives an identical
// document.
func BuildInvoiceHTML(settings *models.Settings, inv *models.Invoice) string {
	salonName := "Ferney Nails"
	address := ""
	siret := ""
	if settings != nil {
		if settings.SalonName != "" {
			salonName = settings.SalonName
		}
		address = settings.Address
		siret = settings.Siret
	}

	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
<h2 style="color:#b76e79;">%s</h2>
<p>%s</p>
<hr>
<h3>Invoice %s</h3>
<p><strong>Date:</strong> %s</p>
<p><strong>Client:</strong> %s</p>
<table style="width:100%%;border-collapse:collapse;">
<tr style="border-bottom:1px solid #ddd;"><th style="text-align:left;padding:8px;">Service</th><th style="text-align:right;padding:8px;">Amount</th></tr>
<tr><td style="padding:8px;">%s</td><td style="text-align:right;padding:8px;">%.2f&euro;</td></tr>
</table>`,
		salonName, address, inv.InvoiceNumber, inv.Date.Format("02/01/2006"), inv.ClientName, inv.ServiceName, inv.Amount)

	if inv.Discount > 0 {
		body += fmt.Sprintf(`<p><strong>Discount:</strong> -%.2f&euro;</p>`, inv.Discount)
	}
	body += fmt.Sprintf(`<p style="font-size:18px;"><strong>Total: %.2f&euro;</strong></p>`, inv.Amount-inv.Discount)
	if inv.PointsEarned > 0 {
		body += fmt.Sprintf(`<p>You earned <strong>%d loyalty points</strong> with this visit.</p>`, inv.PointsEarned)
	}
	if siret != "" {
		body += fmt.Sprintf(`<p style="color:#888;font-size:12px;">SIRET: %s</p>`, siret)
	}
	body += `<p>Thank you for your visit!</p></div>`
	return body
}
