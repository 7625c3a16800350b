package payloads

import "time"

// QuoteItemSnapshot is a quote line as it was submitted.
type QuoteItemSnapshot struct {
	ProductID   int64  `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// QuoteCreatedEvent carries everything the notification emails need so the
// consumer never reads the quotes table.
type QuoteCreatedEvent struct {
	QuoteID         int64               `json:"quote_id"`
	UserID          *int64              `json:"user_id,omitempty"`
	Name            string              `json:"name"`
	Email           string              `json:"email"`
	Phone           string              `json:"phone"`
	VehicleInfo     *string             `json:"vehicle_info,omitempty"`
	Message         *string             `json:"message,omitempty"`
	SentViaWhatsApp bool                `json:"sent_via_whatsapp"`
	Items           []QuoteItemSnapshot `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}
