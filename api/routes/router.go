package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maldonadorepuestos/storefront/api/controllers"
	"github.com/maldonadorepuestos/storefront/api/middleware"
	"github.com/maldonadorepuestos/storefront/internal/auth"
	"github.com/maldonadorepuestos/storefront/internal/banners"
	"github.com/maldonadorepuestos/storefront/internal/cart"
	"github.com/maldonadorepuestos/storefront/internal/categories"
	"github.com/maldonadorepuestos/storefront/internal/orders"
	product "github.com/maldonadorepuestos/storefront/internal/products"
	"github.com/maldonadorepuestos/storefront/internal/quotes"
	"github.com/maldonadorepuestos/storefront/pkg/auth/session"
	"github.com/maldonadorepuestos/storefront/pkg/config"
	"github.com/maldonadorepuestos/storefront/pkg/db"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/metrics"
	pkgredis "github.com/maldonadorepuestos/storefront/pkg/redis"
)

// Store is the redis surface the HTTP layer needs: replay records, rate
// limit counters and the readiness ping.
type Store interface {
	pkgredis.ReplayStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Ping(ctx context.Context) error
}

// Services groups the domain services exposed over HTTP.
type Services struct {
	Auth       auth.Service
	Categories categories.Service
	Products   product.Service
	Banners    banners.Service
	Cart       cart.Service
	Quotes     quotes.Service
	Orders     orders.Service
}

// Observability carries the prometheus collectors. A nil HTTP disables
// request metrics; a nil Gatherer serves the default registry.
type Observability struct {
	HTTP     *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	store Store,
	sessions session.AccessSessionChecker,
	obs Observability,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.Metrics(obs.HTTP),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	quotePolicy := middleware.NewRateLimitPolicy(
		"quote",
		cfg.AuthRateLimit.QuoteWindow,
		cfg.AuthRateLimit.QuoteIPLimit,
		0,
	)

	var idempotencyStore pkgredis.ReplayStore
	ready := map[string]controllers.Pinger{}
	if dbP != nil {
		ready["database"] = dbP
	}
	if store != nil {
		idempotencyStore = store
		ready["redis"] = store
	}

	requireAuth := middleware.Auth(cfg.JWT, sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, sessions, logg)
	idempotent := middleware.Idempotency(idempotencyStore, cfg.Quotes.IdempotencyTTL, logg)
	adminOnly := middleware.RequireRole(enums.UserRoleAdmin, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(obs.Gatherer))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(loginPolicy, store, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
			r.With(middleware.RateLimit(registerPolicy, store, logg), idempotent).Post("/register", controllers.AuthRegister(svc.Auth, logg))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", controllers.AuthLogout(svc.Auth, logg))
				r.Get("/me", controllers.AuthMe(svc.Auth, logg))
				r.Put("/me", controllers.AuthUpdateMe(svc.Auth, logg))
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoriesList(svc.Categories, logg))
			r.Get("/{slug}", controllers.CategoryBySlug(svc.Categories, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(svc.Products, logg))
			r.Get("/search", controllers.ProductsSearch(svc.Products, logg))
			r.Get("/code/{code}", controllers.ProductByCode(svc.Products, logg))
			r.Get("/{productId}", controllers.ProductByID(svc.Products, logg))
		})

		r.Route("/banners", func(r chi.Router) {
			r.Get("/", controllers.BannersActive(svc.Banners, logg))
			r.With(requireAuth, adminOnly).Get("/all", controllers.BannersAll(svc.Banners, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.CartGet(svc.Cart, logg))
			r.Delete("/", controllers.CartClear(svc.Cart, logg))
			r.With(idempotent).Post("/add", controllers.CartAdd(svc.Cart, logg))
			r.Put("/{itemId}", controllers.CartUpdateItem(svc.Cart, logg))
			r.Delete("/{itemId}", controllers.CartRemoveItem(svc.Cart, logg))
		})

		r.Route("/quotes", func(r chi.Router) {
			r.With(middleware.RateLimit(quotePolicy, store, logg), optionalAuth, idempotent).
				Post("/", controllers.QuoteCreateContact(svc.Quotes, logg))
			r.With(middleware.RateLimit(quotePolicy, store, logg), optionalAuth, idempotent).
				Post("/whatsapp", controllers.QuoteCreateWhatsApp(svc.Quotes, logg))
			r.With(optionalAuth).Get("/my-quotes", controllers.QuotesMine(svc.Quotes, logg))
			r.With(requireAuth).Get("/{quoteId}/pdf", controllers.QuotePDF(svc.Quotes, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(idempotent).Post("/", controllers.OrdersCreate(svc.Orders, logg))
			r.Get("/", controllers.OrdersMine(svc.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(svc.Orders, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, adminOnly)
			r.Get("/quotes", controllers.AdminQuotesList(svc.Quotes, logg))
			r.Patch("/quotes/{quoteId}/status", controllers.AdminQuoteUpdateStatus(svc.Quotes, logg))
			r.Get("/orders", controllers.AdminOrdersList(svc.Orders, logg))
			r.Put("/orders/{orderId}/status", controllers.AdminOrderUpdateStatus(svc.Orders, logg))
		})
	})

	return r
}
