package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"deploywatch/internal/deploy"
	"deploywatch/internal/httpapi/middleware"
	"deploywatch/internal/probe"
	"deploywatch/internal/session"
)

// --- fakes ---

type fakeDeployer struct {
	d   *deploy.Deployment
	err error
	n   int
}

func (f *fakeDeployer) Trigger(ctx context.Context) (*deploy.Deployment, error) {
	f.n++
	return f.d, f.err
}

type alwaysOK struct{}

func (alwaysOK) Probe(ctx context.Context, target string) probe.Result {
	ms := int64(3)
	return probe.Result{
		Timestamp:      time.Now().UTC(),
		URL:            target,
		Status:         200,
		Healthy:        true,
		ResponseTimeMS: &ms,
	}
}

func newTestServer(dep Deployer) *Server {
	return NewServer(
		zap.NewNop(),
		session.NewStore(),
		dep,
		alwaysOK{},
		"https://app.example.com/health",
		middleware.Keys{},
		0, 0, // rate limit off in tests
	)
}

// --- tests ---

func TestHealthz(t *testing.T) {
	srv := newTestServer(nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("want 200, got %d", rr.Code)
	}
}

func TestSession_404BeforeStart(t *testing.T) {
	srv := newTestServer(nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/api/session", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("want 404 with no session, got %d", rr.Code)
	}
}

func TestSession_ReturnsSnapshot(t *testing.T) {
	srv := newTestServer(nil)
	srv.Sessions.Begin("https://app.example.com/health", time.Now())
	srv.Sessions.Record(probe.Result{URL: "https://app.example.com/health", Status: 200, Healthy: true})
	srv.Sessions.Record(probe.Result{URL: "https://app.example.com/health", Status: 200, Healthy: true})

	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/api/session", nil))
	if rr.Code != 200 {
		t.Fatalf("want 200, got %d", rr.Code)
	}

	var got session.Session
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.HealthyStreak != 2 || got.UnhealthyStreak != 0 {
		t.Fatalf("unexpected streaks: %+v", got)
	}
	if got.LastResult == nil || got.LastResult.Status != 200 {
		t.Fatalf("missing last result: %+v", got)
	}
}

func TestTriggerDeploy_ReturnsDeploymentAndProbe(t *testing.T) {
	dep := &fakeDeployer{d: &deploy.Deployment{ID: "dep_9", Status: "queued"}}
	srv := newTestServer(dep)

	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest("POST", "/api/deployments", nil))
	if rr.Code != 200 {
		t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if dep.n != 1 {
		t.Fatalf("deployer should be called once, got %d", dep.n)
	}

	var body struct {
		Deployment deploy.Deployment `json:"deployment"`
		Probe      *probe.Result     `json:"probe"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body.Deployment.ID != "dep_9" {
		t.Fatalf("unexpected deployment: %+v", body.Deployment)
	}
	if body.Probe == nil || !body.Probe.Healthy {
		t.Fatalf("want immediate probe feedback, got %+v", body.Probe)
	}
}

func TestTriggerDeploy_UpstreamFailureIs502(t *testing.T) {
	dep := &fakeDeployer{err: errors.New("hosting API down")}
	srv := newTestServer(dep)

	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest("POST", "/api/deployments", nil))
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("want 502, got %d", rr.Code)
	}
}

func TestTriggerDeploy_503WhenUnconfigured(t *testing.T) {
	srv := newTestServer(nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest("POST", "/api/deployments", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503 when no deploy API configured, got %d", rr.Code)
	}
}

func TestTriggerDeploy_RequiresAdminKey(t *testing.T) {
	dep := &fakeDeployer{d: &deploy.Deployment{ID: "dep_1"}}
	srv := newTestServer(dep)
	srv.Keys = middleware.Keys{Public: []string{"pub"}, Admin: []string{"adm"}}

	req := httptest.NewRequest("POST", "/api/deployments", nil)
	req.Header.Set("X-API-Key", "pub")
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("public key must not trigger deploys: got %d", rr.Code)
	}
	if dep.n != 0 {
		t.Fatalf("deployer should not run, got %d calls", dep.n)
	}
}
