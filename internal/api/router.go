package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/AlexZinkM/wallet-dashboard/internal/handler"
	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
	"github.com/AlexZinkM/wallet-dashboard/internal/session"
)

// Handlers groups everything the router dispatches to
type Handlers struct {
	Pages    *handler.PageHandler
	API      *handler.APIHandler
	Sessions *session.Manager
	// Limiter throttles login and register, nil disables it
	Limiter *RateLimiter
}

// SetupRouter sets up router with handlers
func SetupRouter(h Handlers) http.Handler {
	router := mux.NewRouter()

	router.Use(RequestID)
	router.Use(Logging)
	router.Use(handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	))
	router.Use(handlers.CompressHandler)

	// Swagger UI
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	router.HandleFunc("/healthz", handler.Health).Methods(http.MethodGet)

	site := router.NewRoute().Subrouter()
	site.Use(h.Sessions.Middleware)
	site.HandleFunc("/", h.Pages.Landing).Methods(http.MethodGet)
	site.Handle("/login", h.throttled(h.Pages.Login)).Methods(http.MethodPost)
	site.Handle("/register", h.throttled(h.Pages.Register)).Methods(http.MethodPost)
	site.HandleFunc("/logout", h.Pages.Logout).Methods(http.MethodPost)

	protected := site.NewRoute().Subrouter()
	protected.Use(session.Require)
	protected.HandleFunc("/dashboard", h.Pages.Dashboard).Methods(http.MethodGet)
	protected.HandleFunc("/wallet", h.Pages.Wallet).Methods(http.MethodGet)
	protected.HandleFunc("/wallet/generate", h.Pages.GenerateWallet).Methods(http.MethodPost)
	protected.HandleFunc("/wallet/refresh", h.Pages.RefreshWallet).Methods(http.MethodPost)
	protected.HandleFunc("/transferir", h.Pages.TransferForm).Methods(http.MethodGet)
	protected.HandleFunc("/transferir", h.Pages.Transfer).Methods(http.MethodPost)
	protected.HandleFunc("/users", h.Pages.Users).Methods(http.MethodGet)

	// OPTIONS is routed so handlers.CORS can answer preflights
	api := router.PathPrefix("/api").Subrouter()
	api.Use(handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
	))
	api.Use(h.Sessions.Middleware)
	api.HandleFunc("/session", h.API.Session).Methods(http.MethodGet, http.MethodOptions)

	apiProtected := api.NewRoute().Subrouter()
	apiProtected.Use(session.RequireAPI)
	apiProtected.HandleFunc("/balances", h.API.Balances).Methods(http.MethodGet, http.MethodOptions)
	apiProtected.HandleFunc("/transfer", h.API.Transfer).Methods(http.MethodPost, http.MethodOptions)
	apiProtected.HandleFunc("/wallet", h.API.GenerateWallet).Methods(http.MethodPost, http.MethodOptions)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.GetLogger().Debug().Str("path", r.URL.Path).Msg("no route")
		http.NotFound(w, r)
	})

	return router
}

func (h Handlers) throttled(fn http.HandlerFunc) http.Handler {
	if h.Limiter == nil {
		return fn
	}
	return h.Limiter.Middleware(fn)
}
