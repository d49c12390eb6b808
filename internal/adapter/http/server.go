// Package http serves the TaskTrek pages, the JSON API and the operational
// endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/task-trek/internal/app"
	"github.com/couchcryptid/task-trek/internal/domain"
	"github.com/couchcryptid/task-trek/internal/signin"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// actionTimeout bounds the work a single request may do on a visitor's behalf.
const actionTimeout = 15 * time.Second

// PositionLocator derives a position source from the caller's network
// address. It is consulted when the browser supplies no coordinates.
type PositionLocator interface {
	Source(remoteAddr string) domain.PositionSource
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Registry     *app.Registry
	SignIn       *signin.Service
	Sessions     domain.SessionStore
	Positions    PositionLocator // optional
	Ready        sharedobs.ReadinessChecker
	Logger       *slog.Logger
	CookieSecure bool
}

// Server is the HTTP front end.
type Server struct {
	httpServer   *http.Server
	registry     *app.Registry
	signIn       *signin.Service
	sessions     domain.SessionStore
	positions    PositionLocator
	pages        pages
	logger       *slog.Logger
	cookieSecure bool
}

// NewServer builds the router. It fails only if the embedded templates do
// not parse.
func NewServer(addr string, deps Deps) (*Server, error) {
	tmpl, err := loadPages("signin", "home")
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		registry:     deps.Registry,
		signIn:       deps.SignIn,
		sessions:     deps.Sessions,
		positions:    deps.Positions,
		pages:        tmpl,
		logger:       deps.Logger,
		cookieSecure: deps.CookieSecure,
	}

	router.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	router.HandleFunc("/readyz", sharedobs.ReadinessHandler(deps.Ready)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	web := router.NewRoute().Subrouter()
	web.Use(s.withVisitor)

	web.HandleFunc("/signin", s.handleSignInPage).Methods(http.MethodGet)
	web.HandleFunc("/signin", s.handleSignIn).Methods(http.MethodPost)
	web.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	web.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	web.HandleFunc("/theme/toggle", s.handleThemeToggle).Methods(http.MethodPost)
	web.HandleFunc("/weather/search", s.handleWeatherSearch).Methods(http.MethodPost)
	web.HandleFunc("/weather/detect", s.handleWeatherDetect).Methods(http.MethodPost)

	api := web.PathPrefix("/api").Subrouter()
	api.HandleFunc("/theme", s.apiGetTheme).Methods(http.MethodGet)
	api.HandleFunc("/theme", s.apiPutTheme).Methods(http.MethodPut)
	api.HandleFunc("/theme/system", s.apiSystemScheme).Methods(http.MethodPost)
	api.HandleFunc("/weather", s.apiGetWeather).Methods(http.MethodGet)
	api.HandleFunc("/weather/search", s.apiWeatherSearch).Methods(http.MethodPost)
	api.HandleFunc("/weather/detect", s.apiWeatherDetect).Methods(http.MethodPost)
	api.HandleFunc("/signin/validate", s.apiValidateSignIn).Methods(http.MethodPost)

	return s, nil
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func actionContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), actionTimeout)
}
