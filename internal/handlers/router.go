package handlers

import (
	"net/http"
	"time"

	"charity/internal/config"
	"charity/internal/logging"
	"charity/internal/metrics"
	"charity/internal/middleware"
	"charity/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	gorillaws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Auth         AuthService
	Ledger       LedgerService
	Applications ApplicationService
	Directory    DirectoryService
	Users        middleware.RoleStore
	Hub          *websocket.Hub
	Logger       logrus.FieldLogger
}

type Handler struct {
	cfg          config.Config
	auth         AuthService
	ledger       LedgerService
	applications ApplicationService
	directory    DirectoryService
	users        middleware.RoleStore
	hub          *websocket.Hub
	upgrader     *gorillaws.Upgrader
	limiter      *middleware.RateLimiter
	logger       logrus.FieldLogger
	now          func() time.Time
}

func New(cfg config.Config, deps Deps) *Handler {
	return &Handler{
		cfg:          cfg,
		auth:         deps.Auth,
		ledger:       deps.Ledger,
		applications: deps.Applications,
		directory:    deps.Directory,
		users:        deps.Users,
		hub:          deps.Hub,
		upgrader:     websocket.NewUpgrader(cfg.AllowedOrigins),
		limiter:      middleware.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst),
		logger:       deps.Logger,
		now:          time.Now,
	}
}

// StartCleanup evicts idle rate limiter entries until stop is closed.
func (h *Handler) StartCleanup(stop <-chan struct{}) {
	h.limiter.StartCleanup(5*time.Minute, stop)
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(logging.RequestLogger(h.logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(metrics.InstrumentHandler)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", logging.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", metrics.Handler())
	router.Get("/ws/balances", h.WSBalances)

	authed := middleware.Auth(h.cfg.JWTSecret)
	officer := middleware.RequireOfficer(h.users)
	admin := middleware.RequireAdmin(h.users)

	router.Route("/api", func(api chi.Router) {
		api.Use(h.limitBody)

		api.Route("/auth", func(r chi.Router) {
			r.With(h.limiter.Handler).Post("/register", h.Register)
			r.With(h.limiter.Handler).Post("/login", h.Login)
			r.With(h.limiter.Handler).Post("/forgot-password", h.ForgotPassword)
			r.With(h.limiter.Handler).Post("/reset-password", h.ResetPassword)
			r.With(authed).Get("/me", h.Me)
		})
		api.With(authed).Put("/profile", h.UpdateProfile)

		api.Group(func(r chi.Router) {
			r.Use(authed)
			r.Get("/account", h.GetAccount)
			r.Post("/account/deposit", h.Deposit)
			r.Post("/account/withdraw", h.Withdraw)
			r.Post("/account/collect", h.Collect)
			r.Put("/account/autopay", h.SetAutoPay)
			r.Get("/transactions", h.ListTransactions)
			r.Get("/receipts/{id}", h.Receipt)
		})

		api.Get("/donations", h.RecentDonations)
		api.Post("/donations", h.Donate)
		api.Get("/stories", h.ListStories)
		api.With(middleware.OptionalAuth(h.cfg.JWTSecret)).Get("/search", h.Search)

		api.Get("/branches", h.ListBranches)
		api.Get("/branches/{id}", h.GetBranch)
		api.Get("/branches/{id}/donations", h.BranchDonations)
		api.Post("/branches/{id}/donations", h.DonateToBranch)
		api.Post("/branches/{id}/requests", h.CreateRequest)
		api.Post("/branches/{id}/applications", h.Apply)

		api.Group(func(r chi.Router) {
			r.Use(authed, officer)
			r.Get("/branches/{id}/requests", h.ListRequests)
			r.Put("/requests/{id}/status", h.UpdateRequestStatus)
			r.Get("/branches/{id}/applications", h.ListApplications)
			r.Get("/applications/{id}", h.GetApplication)
			r.Post("/applications/{id}/reply", h.ReplyApplication)
			r.Post("/applications/{id}/forward", h.ForwardApplication)
			r.Put("/applications/{id}/status", h.SetApplicationStatus)
			r.Put("/branches/{id}/profile", h.UpdateOfficerProfile)
			r.Post("/branches/{id}/activities", h.CreateActivity)
			r.Put("/activities/{id}", h.UpdateActivity)
			r.Delete("/activities/{id}", h.DeleteActivity)
			r.Post("/branches/{id}/resources", h.CreateResource)
			r.Delete("/resources/{id}", h.DeleteResource)
		})

		api.With(authed, admin).Get("/analytics", h.Analytics)
		api.Route("/admin", func(r chi.Router) {
			r.Use(authed, admin)
			r.Post("/branches", h.CreateBranch)
			r.Put("/branches/{id}", h.UpdateBranch)
			r.Delete("/branches/{id}", h.DeleteBranch)
			r.Get("/officers", h.ListOfficers)
			r.Post("/officers", h.CreateOfficer)
			r.Put("/officers/{id}", h.UpdateOfficer)
			r.Delete("/officers/{id}", h.DeleteOfficer)
			r.Get("/stories", h.AdminListStories)
			r.Post("/stories", h.CreateStory)
			r.Put("/stories/{id}", h.UpdateStory)
			r.Delete("/stories/{id}", h.DeleteStory)
			r.Get("/overview", h.Overview)
			r.Get("/activities", h.AdminListActivities)
			r.Get("/audit", h.ListAuditLogs)
			r.Get("/reconcile", h.Reconcile)
		})
	})
	return router
}
