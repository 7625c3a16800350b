package quote

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/maldonadorepuestos/storefront/pkg/storefront/cart"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/gateway"
)

// DefaultWhatsAppNumber is the store's sales line.
const DefaultWhatsAppNumber = "542614544128"

// BuildPayload converts the form and cart into the persistence request.
// Blank vehicle and message are sent as null.
func BuildPayload(contact Contact, entries []cart.Entry) gateway.QuoteRequest {
	c := contact.normalized()
	items := make([]gateway.QuoteItemRequest, 0, len(entries))
	for _, e := range entries {
		items = append(items, gateway.QuoteItemRequest{
			ProductID:   e.ProductID,
			ProductCode: e.Product.Code,
			ProductName: e.Product.Name,
			Quantity:    e.Quantity,
		})
	}
	return gateway.QuoteRequest{
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		VehicleInfo:     nullable(c.VehicleInfo),
		Message:         nullable(c.Message),
		SentViaWhatsApp: true,
		Items:           items,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// RenderMessage builds the WhatsApp text. quoteID is omitted when <= 0.
// The output depends only on its inputs.
func RenderMessage(contact Contact, entries []cart.Entry, quoteID int64) string {
	c := contact.normalized()

	var b strings.Builder
	b.WriteString("Hola, buenos días.\n\n")
	b.WriteString("Soy *" + c.Name + "*, solicito cotización de:\n\n")
	for _, e := range entries {
		b.WriteString("• *" + e.Product.Name + "*\n")
		b.WriteString("  Cód: " + e.Product.Code + " - Cant: " + strconv.Itoa(e.Quantity) + "\n")
	}
	b.WriteString("\n")
	if c.VehicleInfo != "" {
		b.WriteString("Vehículo: " + c.VehicleInfo + "\n")
	}
	b.WriteString("Tel: " + c.Phone)
	if quoteID > 0 {
		b.WriteString(" | Solicitud #" + strconv.FormatInt(quoteID, 10))
	}
	if c.Message != "" {
		b.WriteString("\n\n" + c.Message)
	}
	b.WriteString("\n\nAguardo respuesta. Gracias.")
	return b.String()
}

// url.QueryEscape escapes a few characters encodeURIComponent keeps.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// DeepLink returns the wa.me link that opens a chat with message prefilled.
// Non digits are stripped from number; an empty number uses the default.
func DeepLink(number, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		digits = DefaultWhatsAppNumber
	}
	return "https://wa.me/" + digits + "?text=" + componentUnescaper.Replace(url.QueryEscape(message))
}
