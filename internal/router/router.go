package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/talx-hub/coinledger/internal/api/middlewares"
	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/service/config"
)

const contentTypeJSON = "application/json"

type CustomRouter struct {
	router  *chi.Mux
	logger  *slog.Logger
	cfg     *config.Config
	metrics Metrics
}

func New(cfg *config.Config, log *slog.Logger) *CustomRouter {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if log == nil {
		log = slog.Default()
	}
	router := &CustomRouter{
		router: chi.NewRouter(),
		logger: log,
		cfg:    cfg,
	}

	return router
}

type Metrics interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
}

type CoinHandler interface {
	GetCoins(w http.ResponseWriter, r *http.Request)
	PostCoins(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	GiftCoins(w http.ResponseWriter, r *http.Request)
}

type NotificationHandler interface {
	GetNotifications(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)
}

type HealthHandler interface {
	Ping(w http.ResponseWriter, r *http.Request)
}

type Handler interface {
	CoinHandler
	AdminHandler
	NotificationHandler
	HealthHandler
}

// SetMetrics must be called before SetRouter.
func (cr *CustomRouter) SetMetrics(m Metrics) {
	cr.metrics = m
}

func (cr *CustomRouter) SetRouter(h Handler) {
	cr.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middlewares.RequestLogger(cr.logger),
		middleware.Recoverer,
	)
	if cr.metrics != nil {
		cr.router.Use(cr.metrics.Middleware)
	}
	cr.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cr.allowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", model.HeaderContentType, model.HeaderIdempotencyKey},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	jsonOnly := middleware.AllowContentType(contentTypeJSON)

	cr.router.Route("/coins", func(r chi.Router) {
		r.Get("/", h.GetCoins)
		r.With(jsonOnly).Post("/", h.PostCoins)
	})

	cr.router.Route("/admin", func(r chi.Router) {
		r.With(jsonOnly).Post("/login", h.Login)
		r.With(
			middlewares.Authentication([]byte(cr.cfg.SecretKey), cr.logger),
			jsonOnly,
		).Post("/coins", h.GiftCoins)
	})

	cr.router.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.GetNotifications)
		r.With(jsonOnly).Post("/read", h.MarkRead)
	})

	cr.router.Get("/ping", h.Ping)
	if cr.metrics != nil {
		cr.router.Method(http.MethodGet, "/metrics", cr.metrics.Handler())
	}

	cr.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w,
			http.StatusText(http.StatusMethodNotAllowed),
			http.StatusMethodNotAllowed)
	})
}

func (cr *CustomRouter) GetRouter() *chi.Mux {
	return cr.router
}

func (cr *CustomRouter) allowedOrigins() []string {
	if len(cr.cfg.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return cr.cfg.CORSOrigins
}
