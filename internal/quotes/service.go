package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/outbox"
	"github.com/maldonadorepuestos/storefront/pkg/pagination"
)

const (
	minContactMessage = 10

	quoteNotFoundMessage  = "Cotización no encontrada"
	quoteForbiddenMessage = "No tenés permiso para ver esta cotización"
)

// Viewer is the caller of an owner-scoped read.
type Viewer struct {
	UserID  int64
	IsAdmin bool
}

// Service exposes quote persistence and rendering.
type Service interface {
	Create(ctx context.Context, userID *int64, input CreateQuoteInput) (*QuoteDTO, error)
	CreateContact(ctx context.Context, userID *int64, input CreateContactInput) (*QuoteDTO, error)
	ListMine(ctx context.Context, userID *int64) ([]QuoteDTO, error)
	List(ctx context.Context, input ListQuotesInput) (*QuoteListResult, error)
	UpdateStatus(ctx context.Context, id int64, input UpdateStatusInput) (*QuoteDTO, error)
	Get(ctx context.Context, id int64, viewer Viewer) (*QuoteDTO, error)
	RenderPDF(ctx context.Context, id int64, viewer Viewer) ([]byte, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type ServiceParams struct {
	Repo   QuoteRepository
	Tx     txRunner
	Outbox outboxEmitter
	// Notify emits quote.created so the notification worker emails the
	// shop and the customer.
	Notify bool
	Logger *logger.Logger
}

type service struct {
	repo   QuoteRepository
	tx     txRunner
	outbox outboxEmitter
	notify bool
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Notify && params.Outbox == nil {
		return nil, fmt.Errorf("outbox required when notifications are enabled")
	}
	return &service{
		repo:   params.Repo,
		tx:     params.Tx,
		outbox: params.Outbox,
		notify: params.Notify,
		logg:   params.Logger,
		now:    time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, userID *int64, input CreateQuoteInput) (*QuoteDTO, error) {
	quote, err := newQuote(userID, input)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, userID, quote)
}

// CreateContact stores a quote with no items. The message carries the
// request and must have at least minContactMessage characters.
func (s *service) CreateContact(ctx context.Context, userID *int64, input CreateContactInput) (*QuoteDTO, error) {
	name := strings.TrimSpace(input.Name)
	if len([]rune(name)) < 2 {
		return nil, pkgerrors.Validation("validation failed", pkgerrors.FieldErrors{"name": "must be at least 2"})
	}
	message := strings.TrimSpace(input.Message)
	if len([]rune(message)) < minContactMessage {
		return nil, pkgerrors.Validation("validation failed", pkgerrors.FieldErrors{"message": fmt.Sprintf("must be at least %d", minContactMessage)})
	}
	return s.persist(ctx, userID, &models.Quote{
		UserID:      userID,
		Name:        name,
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		VehicleInfo: trimmedOrNil(input.VehicleInfo),
		Message:     &message,
		Status:      enums.QuoteStatusPending,
	})
}

// persist writes quote and, when enabled, its quote.created event in one
// transaction.
func (s *service) persist(ctx context.Context, userID *int64, quote *models.Quote) (*QuoteDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create quote")
		}
		if !s.notify {
			return nil
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventQuoteCreated,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			Data:          createdEvent(*quote),
			OccurredAt:    quote.CreatedAt,
		}
		if userID != nil {
			event.Actor = &outbox.ActorRef{UserID: userID, Role: string(enums.UserRoleUser)}
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue quote notification")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithQuoteID(ctx, quote.ID), "quote created")
	dto := FromModel(*quote)
	return &dto, nil
}

func newQuote(userID *int64, input CreateQuoteInput) (*models.Quote, error) {
	name := strings.TrimSpace(input.Name)
	if len([]rune(name)) < 2 {
		return nil, pkgerrors.Validation("validation failed", pkgerrors.FieldErrors{"name": "must be at least 2"})
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.Validation("validation failed", pkgerrors.FieldErrors{"items": "must be at least 1"})
	}

	sentViaWhatsApp := true
	if input.SentViaWhatsApp != nil {
		sentViaWhatsApp = *input.SentViaWhatsApp
	}

	quote := &models.Quote{
		UserID:          userID,
		Name:            name,
		Email:           strings.TrimSpace(input.Email),
		Phone:           strings.TrimSpace(input.Phone),
		VehicleInfo:     trimmedOrNil(input.VehicleInfo),
		Message:         trimmedOrNil(input.Message),
		SentViaWhatsApp: sentViaWhatsApp,
		Status:          enums.QuoteStatusPending,
		Items:           make([]models.QuoteItem, 0, len(input.Items)),
	}
	for i, item := range input.Items {
		if item.Quantity < 0 {
			return nil, pkgerrors.Validation("validation failed", pkgerrors.FieldErrors{
				fmt.Sprintf("items[%d].quantity", i): "must be at least 1",
			})
		}
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		quote.Items = append(quote.Items, models.QuoteItem{
			ProductID:   item.ProductID,
			ProductCode: strings.TrimSpace(item.ProductCode),
			ProductName: strings.TrimSpace(item.ProductName),
			Quantity:    quantity,
		})
	}
	return quote, nil
}

// ListMine returns the caller's quotes newest first. Anonymous callers get
// an empty list rather than an error.
func (s *service) ListMine(ctx context.Context, userID *int64) ([]QuoteDTO, error) {
	if userID == nil {
		return []QuoteDTO{}, nil
	}
	rows, err := s.repo.ListByUser(ctx, *userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotes")
	}
	out := make([]QuoteDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) List(ctx context.Context, input ListQuotesInput) (*QuoteListResult, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.Validation("validation failed", pkgerrors.FieldErrors{"status": "is invalid"})
	}
	params := input.Pagination.Normalize()
	rows, total, err := s.repo.List(ctx, input.Status, params.Offset(), params.PageSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotes")
	}
	items := make([]QuoteDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromModel(row))
	}
	page := pagination.NewPage(items, total, params)
	return &page, nil
}

// UpdateStatus moves a quote to a new status. Entering contacted or quoted
// stamps responded_at. Blank admin notes leave the stored notes untouched.
func (s *service) UpdateStatus(ctx context.Context, id int64, input UpdateStatusInput) (*QuoteDTO, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.Validation("validation failed", pkgerrors.FieldErrors{"status": "is invalid"})
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]any{"status": input.Status}
	if input.Status.Responded() {
		fields["responded_at"] = s.now().UTC()
	}
	if notes := trimmedOrNil(input.AdminNotes); notes != nil {
		fields["admin_notes"] = *notes
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update quote")
	}

	updated, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	logCtx := s.logg.WithField(s.logg.WithQuoteID(ctx, id), "status", string(input.Status))
	s.logg.Info(logCtx, "quote status updated")
	dto := FromModel(*updated)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id int64, viewer Viewer) (*QuoteDTO, error) {
	quote, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin && (quote.UserID == nil || *quote.UserID != viewer.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, quoteForbiddenMessage)
	}
	dto := FromModel(*quote)
	return &dto, nil
}

func (s *service) RenderPDF(ctx context.Context, id int64, viewer Viewer) ([]byte, error) {
	quote, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	doc, err := renderPDF(*quote, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render quote pdf")
	}
	return doc, nil
}

func (s *service) find(ctx context.Context, id int64) (*models.Quote, error) {
	quote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, quoteNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote")
	}
	return quote, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
