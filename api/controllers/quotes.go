package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/maldonadorepuestos/storefront/api/middleware"
	"github.com/maldonadorepuestos/storefront/api/responses"
	"github.com/maldonadorepuestos/storefront/api/validators"
	"github.com/maldonadorepuestos/storefront/internal/quotes"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
)

func quotesUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
}

// QuoteCreateWhatsApp stores a quote request. Signed in callers get it
// attributed to their account; anonymous requests are accepted.
func QuoteCreateWhatsApp(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			quotesUnavailable(w, r, logg)
			return
		}

		var body quotes.CreateQuoteInput
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.Name = validators.SanitizeString(body.Name, 100)
		body.Phone = validators.SanitizeString(body.Phone, 50)

		quote, err := svc.Create(r.Context(), optionalUserID(r), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithQuoteID(r.Context(), quote.ID)
			logg.Info(logg.WithField(ctx, "items", len(quote.Items)), "quote.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

// QuoteCreateContact stores a free-form quote request without items.
func QuoteCreateContact(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			quotesUnavailable(w, r, logg)
			return
		}

		var body quotes.CreateContactInput
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.Name = validators.SanitizeString(body.Name, 100)
		body.Phone = validators.SanitizeString(body.Phone, 50)

		quote, err := svc.CreateContact(r.Context(), optionalUserID(r), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

// QuotesMine lists the caller's quotes. Anonymous callers get an empty list.
func QuotesMine(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			quotesUnavailable(w, r, logg)
			return
		}

		list, err := svc.ListMine(r.Context(), optionalUserID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// QuotePDF streams the rendered quote to its owner or to an admin.
func QuotePDF(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			quotesUnavailable(w, r, logg)
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathInt64(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		viewer := quotes.Viewer{
			UserID:  userID,
			IsAdmin: middleware.RoleFromContext(r.Context()) == string(enums.UserRoleAdmin),
		}
		doc, err := svc.RenderPDF(r.Context(), id, viewer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="cotizacion-%d.pdf"`, id))
		w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(doc); err != nil && logg != nil {
			logg.Warn(r.Context(), "quote pdf write interrupted")
		}
	}
}

// AdminQuotesList pages through every quote, optionally narrowed by status.
func AdminQuotesList(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			quotesUnavailable(w, r, logg)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := quotes.ListQuotesInput{Pagination: params}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseQuoteStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status").WithDetails(map[string]any{"field": "status"}))
				return
			}
			input.Status = &status
		}

		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminQuoteUpdateStatus(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			quotesUnavailable(w, r, logg)
			return
		}

		id, err := pathInt64(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body quotes.UpdateStatusInput
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.UpdateStatus(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithQuoteID(r.Context(), quote.ID)
			logg.Info(logg.WithField(ctx, "status", string(quote.Status)), "quote.status_updated")
		}
		responses.WriteSuccess(w, quote)
	}
}
