package quotes

import (
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	"github.com/maldonadorepuestos/storefront/pkg/outbox/payloads"
	"github.com/maldonadorepuestos/storefront/pkg/pagination"
)

// CreateItemInput is one line of a quote request. A missing quantity means 1.
type CreateItemInput struct {
	ProductID   int64  `json:"product_id" validate:"required,gt=0"`
	ProductCode string `json:"product_code" validate:"required,max=50"`
	ProductName string `json:"product_name" validate:"required,max=200"`
	Quantity    int    `json:"quantity" validate:"omitempty,gte=1"`
}

// CreateQuoteInput is the POST /quotes/whatsapp payload.
type CreateQuoteInput struct {
	Name            string            `json:"name" validate:"required,min=2,max=100"`
	Email           string            `json:"email" validate:"required,email"`
	Phone           string            `json:"phone" validate:"required,min=8,max=50"`
	VehicleInfo     *string           `json:"vehicle_info" validate:"omitempty,max=200"`
	Message         *string           `json:"message" validate:"omitempty,max=500"`
	Items           []CreateItemInput `json:"items" validate:"required,min=1,dive"`
	SentViaWhatsApp *bool             `json:"sent_via_whatsapp"`
}

// CreateContactInput is the POST /quotes payload: a free-form request
// without cart lines.
type CreateContactInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone" validate:"required,min=8,max=50"`
	VehicleInfo *string `json:"vehicle_info" validate:"omitempty,max=200"`
	Message     string  `json:"message" validate:"required,min=10"`
}

// UpdateStatusInput is the PATCH /admin/quotes/{id}/status payload.
type UpdateStatusInput struct {
	Status     enums.QuoteStatus `json:"status" validate:"required,oneof=pending contacted quoted closed"`
	AdminNotes *string           `json:"admin_notes"`
}

// ListQuotesInput drives the admin listing.
type ListQuotesInput struct {
	Status     *enums.QuoteStatus
	Pagination pagination.Params
}

type QuoteItemDTO struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type QuoteDTO struct {
	ID              int64             `json:"id"`
	UserID          *int64            `json:"user_id"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	VehicleInfo     *string           `json:"vehicle_info"`
	Message         *string           `json:"message"`
	SentViaWhatsApp bool              `json:"sent_via_whatsapp"`
	Status          enums.QuoteStatus `json:"status"`
	AdminNotes      *string           `json:"admin_notes"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	RespondedAt     *time.Time        `json:"responded_at"`
	Items           []QuoteItemDTO    `json:"items"`
}

type QuoteListResult = pagination.Page[QuoteDTO]

func FromModel(q models.Quote) QuoteDTO {
	dto := QuoteDTO{
		ID:              q.ID,
		UserID:          q.UserID,
		Name:            q.Name,
		Email:           q.Email,
		Phone:           q.Phone,
		VehicleInfo:     q.VehicleInfo,
		Message:         q.Message,
		SentViaWhatsApp: q.SentViaWhatsApp,
		Status:          q.Status,
		AdminNotes:      q.AdminNotes,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
		RespondedAt:     q.RespondedAt,
		Items:           make([]QuoteItemDTO, 0, len(q.Items)),
	}
	for _, item := range q.Items {
		dto.Items = append(dto.Items, QuoteItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}
	return dto
}

func createdEvent(q models.Quote) payloads.QuoteCreatedEvent {
	event := payloads.QuoteCreatedEvent{
		QuoteID:         q.ID,
		UserID:          q.UserID,
		Name:            q.Name,
		Email:           q.Email,
		Phone:           q.Phone,
		VehicleInfo:     q.VehicleInfo,
		Message:         q.Message,
		SentViaWhatsApp: q.SentViaWhatsApp,
		Items:           make([]payloads.QuoteItemSnapshot, 0, len(q.Items)),
		CreatedAt:       q.CreatedAt,
	}
	for _, item := range q.Items {
		event.Items = append(event.Items, payloads.QuoteItemSnapshot{
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}
	return event
}
