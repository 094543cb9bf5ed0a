package status

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/datafeed/component"
	"github.com/kbukum/datafeed/logger"
	"github.com/kbukum/datafeed/security"
	"github.com/kbukum/datafeed/security/tlstest"
	"github.com/kbukum/datafeed/sse"
)

type staticHealth []component.Health

func (h staticHealth) HealthAll(context.Context) []component.Health { return h }

func testLogger() *logger.Logger {
	return logger.NewWithWriter(&logger.Config{Level: "error", Format: "json"}, "test", io.Discard)
}

func get(t *testing.T, s *Server, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("GET %s: invalid JSON %q: %v", path, rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name     string
		healths  staticHealth
		wantCode int
		want     string
	}{
		{"all healthy", staticHealth{{Name: "storage", Status: component.StatusHealthy}}, http.StatusOK, "healthy"},
		{"degraded", staticHealth{
			{Name: "storage", Status: component.StatusHealthy},
			{Name: "prefetch", Status: component.StatusDegraded},
		}, http.StatusOK, "degraded"},
		{"unhealthy", staticHealth{
			{Name: "prefetch", Status: component.StatusUnhealthy, Message: "closed"},
			{Name: "storage", Status: component.StatusDegraded},
		}, http.StatusServiceUnavailable, "unhealthy"},
		{"no components", nil, http.StatusOK, "healthy"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(Config{}, "datafeed", tc.healths, nil, testLogger())
			code, body := get(t, s, "/healthz")
			if code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, code)
			}
			if body["status"] != tc.want {
				t.Errorf("expected status %q, got %v", tc.want, body["status"])
			}
			if body["service"] != "datafeed" {
				t.Errorf("unexpected service %v", body["service"])
			}
		})
	}
}

func TestLivez(t *testing.T) {
	s := New(Config{}, "datafeed", nil, nil, testLogger())
	code, body := get(t, s, "/livez")
	if code != http.StatusOK || body["status"] != "alive" {
		t.Errorf("unexpected response %d %v", code, body)
	}
}

func TestStats(t *testing.T) {
	stats := func() any {
		return map[string]any{"batches": 12, "state": "running"}
	}
	s := New(Config{}, "datafeed", nil, stats, testLogger())
	code, body := get(t, s, "/stats")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["batches"] != float64(12) || body["state"] != "running" {
		t.Errorf("unexpected stats %v", body)
	}
}

func TestStatsUnavailable(t *testing.T) {
	s := New(Config{}, "datafeed", nil, nil, testLogger())
	code, _ := get(t, s, "/stats")
	if code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestVersion(t *testing.T) {
	s := New(Config{}, "datafeed", nil, nil, testLogger())
	code, body := get(t, s, "/version")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if _, ok := body["version"]; !ok {
		t.Errorf("expected a version field, got %v", body)
	}
}

func TestRecovery(t *testing.T) {
	s := New(Config{}, "datafeed", nil, func() any { panic("boom") }, testLogger())
	code, body := get(t, s, "/stats")
	if code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
	if body["error"] == nil {
		t.Errorf("expected an error body, got %v", body)
	}
}

func TestRoutes(t *testing.T) {
	s := New(Config{}, "datafeed", nil, nil, testLogger())
	routes := s.Routes()
	want := []string{"/healthz", "/livez", "/stats", "/version"}
	if len(routes) != len(want) {
		t.Fatalf("expected %d routes, got %v", len(want), routes)
	}
	for i, r := range routes {
		if r.Path != want[i] || r.Method != http.MethodGet {
			t.Errorf("route %d: got %s %s", i, r.Method, r.Path)
		}
	}
	if routes[0].Handler != "healthz" {
		t.Errorf("expected handler name healthz, got %q", routes[0].Handler)
	}
}

func TestStartStop(t *testing.T) {
	s := New(Config{Host: "127.0.0.1", Port: 0}, "datafeed", nil, nil, testLogger())
	if h := s.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %v", h.Status)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + s.Addr() + "/livez")
	if err != nil {
		t.Fatalf("GET /livez: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if h := s.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %v", h.Status)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if _, err := client.Get("http://" + s.Addr() + "/livez"); err == nil {
		t.Error("expected requests to fail after Stop")
	}
}

func TestEventsRoute(t *testing.T) {
	hub := sse.NewHub(testLogger())
	go hub.Run()
	defer hub.Stop()

	s := New(Config{}, "datafeed", nil, nil, testLogger(), WithEvents(hub))
	routes := s.Routes()
	if len(routes) != 5 || routes[0].Path != "/events" || routes[0].Handler != "streamEvents" {
		t.Fatalf("expected /events to be routed first, got %v", routes)
	}

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?filter=batch", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "text/event-stream" {
		t.Errorf("unexpected response %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil || line != "event: connected\n" {
		t.Errorf("expected the connected event, got %q (%v)", line, err)
	}
}

func TestStartTLS(t *testing.T) {
	certs := tlstest.Generate(t)
	cfg := Config{TLS: security.TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile}}
	s := New(cfg, "datafeed", nil, nil, testLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop(context.Background())

	client := &http.Client{
		Timeout: 2 * time.Second,
		Transport: &http.Transport{TLSClientConfig: &tls.Config{
			RootCAs:      certs.Pool,
			Certificates: []tls.Certificate{certs.Leaf},
		}},
	}
	resp, err := client.Get("https://" + s.Addr() + "/livez")
	if err != nil {
		t.Fatalf("GET /livez over TLS: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	anonymous := &http.Client{
		Timeout:   2 * time.Second,
		Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: certs.Pool}},
	}
	if _, err := anonymous.Get("https://" + s.Addr() + "/livez"); err == nil {
		t.Error("expected a client without a certificate to be rejected")
	}
}

func TestStartTLSBadCertificate(t *testing.T) {
	cfg := Config{TLS: security.TLSConfig{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}}
	s := New(cfg, "datafeed", nil, nil, testLogger())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail on a missing certificate")
	}
}

func TestDescribe(t *testing.T) {
	s := New(Config{Port: 9090}, "datafeed", nil, nil, testLogger())
	d := s.Describe()
	if d.Type != "server" || d.Port != 9090 || d.Details != "127.0.0.1:9090" {
		t.Errorf("unexpected description %+v", d)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Port: 70000}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "port: must be between 0 and 65535") {
		t.Errorf("expected an out-of-range port error, got %v", err)
	}
	cfg.Port = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a negative port")
	}
	cfg.Port = 8081
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	cfg.TLS.CertFile = "cert.pem"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for cert_file without key_file")
	}
}
