package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"deploywatch/internal/deploy"
	"deploywatch/internal/httpapi/middleware"
	"deploywatch/internal/probe"
	"deploywatch/internal/session"
)

// Deployer is the slice of the deploy client the API needs; tests fake it.
type Deployer interface {
	Trigger(ctx context.Context) (*deploy.Deployment, error)
}

type Server struct {
	Logger    *zap.Logger
	Sessions  *session.Store
	Deployer  Deployer // nil when no hosting API is configured
	Checker   probe.Checker
	HealthURL string
	Keys      middleware.Keys
	RPM       int
	Burst     int
}

func NewServer(
	logger *zap.Logger,
	sessions *session.Store,
	deployer Deployer,
	checker probe.Checker,
	healthURL string,
	keys middleware.Keys,
	rpm, burst int,
) *Server {
	return &Server{
		Logger:    logger,
		Sessions:  sessions,
		Deployer:  deployer,
		Checker:   checker,
		HealthURL: healthURL,
		Keys:      keys,
		RPM:       rpm,
		Burst:     burst,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.RateLimit(s.RPM, s.Burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireKey(s.Keys))
		g.Get("/api/session", s.handleSession)
	})

	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireAdmin(s.Keys))
		g.Post("/api/deployments", s.handleTriggerDeploy)
	})

	return r
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Sessions.Current()
	if !ok {
		http.Error(w, "no active session", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sess)
}

func (s *Server) handleTriggerDeploy(w http.ResponseWriter, r *http.Request) {
	if s.Deployer == nil {
		http.Error(w, "deploy API not configured", http.StatusServiceUnavailable)
		return
	}

	d, err := s.Deployer.Trigger(r.Context())
	if err != nil {
		s.Logger.Error("deploy_trigger_failed", zap.Error(err))
		http.Error(w, "deploy trigger failed", http.StatusBadGateway)
		return
	}

	// One synchronous probe for immediate feedback; the monitor keeps its own
	// cadence and streaks regardless.
	var res *probe.Result
	if s.HealthURL != "" && s.Checker != nil {
		out := s.Checker.Probe(r.Context(), s.HealthURL)
		res = &out
	}

	s.Logger.Info("deploy_triggered",
		zap.String("deployment_id", d.ID),
		zap.String("status", d.Status),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"deployment": d,
		"probe":      res,
	})
}
