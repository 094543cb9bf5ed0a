package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/datafeed/component"
	"github.com/kbukum/datafeed/config"
	"github.com/kbukum/datafeed/logger"
)

// testConfig is a minimal config for testing that satisfies the Config interface.
type testConfig struct {
	config.ServiceConfig
	Iterations int
}

func (c *testConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative")
	}
	return nil
}

// mockComponent implements component.Component for testing.
type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() component.Description {
	return component.Description{Type: "pipeline", Details: "batch=4 streams=2"}
}

func (d *describedComponent) Routes() []component.Route {
	return []component.Route{{Method: "GET", Path: "/stats", Handler: "stats"}}
}

func newTestConfig(name, version string) *testConfig {
	return &testConfig{
		ServiceConfig: config.ServiceConfig{
			Name:        name,
			Version:     version,
			Environment: "development",
		},
	}
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	opts = append([]Option{
		WithLogger(logger.NewWithWriter(&logger.Config{Level: "error", Format: "json"}, "test", io.Discard)),
		WithSummaryOutput(nil),
		WithoutSignals(),
	}, opts...)
	app, err := NewApp(newTestConfig("test", "1.0"), opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "test" || app.Version != "1.0" {
		t.Errorf("unexpected name/version %q/%q", app.Name, app.Version)
	}
	if app.Components == nil || app.Summary == nil {
		t.Fatal("expected registry and summary to be initialized")
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("expected default 15s, got %v", app.gracefulTimeout)
	}
}

func TestNewAppAppliesDefaults(t *testing.T) {
	cfg := &testConfig{}
	app, err := NewApp(cfg, WithLogger(logger.NewDefault("t")), WithSummaryOutput(nil))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Cfg.Name != "datafeed" || app.Cfg.Environment != "development" {
		t.Errorf("expected defaults to be applied, got %+v", app.Cfg.ServiceConfig)
	}
}

func TestNewAppValidation(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	cfg.Iterations = -1
	if _, err := NewApp(cfg); err == nil {
		t.Fatal("expected validation error")
	}

	cfg = newTestConfig("test", "1.0")
	cfg.Environment = "nowhere"
	if _, err := NewApp(cfg); err == nil {
		t.Fatal("expected validation error for environment")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(3*time.Second))
	if app.gracefulTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", app.gracefulTimeout)
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app := newTestApp(t)
	if err := app.RegisterComponent(&mockComponent{name: "storage"}); err != nil {
		t.Fatalf("RegisterComponent failed: %v", err)
	}
	if err := app.RegisterComponent(&mockComponent{name: "storage"}); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("empty registry should be ready, got %v", err)
	}

	app.RegisterComponent(&mockComponent{name: "storage", health: component.Health{Name: "storage", Status: component.StatusHealthy}})
	app.RegisterComponent(&mockComponent{name: "prefetch", health: component.Health{Name: "prefetch", Status: component.StatusDegraded, Message: "skipping"}})

	err := app.ReadyCheck(context.Background())
	if err == nil {
		t.Fatal("expected ready check error")
	}
	if !strings.Contains(err.Error(), "prefetch=degraded(skipping)") {
		t.Errorf("unexpected error %q", err.Error())
	}
}

func TestRunTaskSuccess(t *testing.T) {
	app := newTestApp(t)
	executed := false
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		executed = true
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if !executed {
		t.Error("expected task to be executed")
	}
}

func TestRunTaskError(t *testing.T) {
	app := newTestApp(t)
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return fmt.Errorf("task error")
	})
	if err == nil || err.Error() != "task error" {
		t.Errorf("expected 'task error', got %v", err)
	}
}

func TestRunTaskCancellation(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := app.RunTask(ctx, func(taskCtx context.Context) error {
		cancel()
		<-taskCtx.Done()
		return taskCtx.Err()
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunTaskHookOrder(t *testing.T) {
	app := newTestApp(t)

	var order []string
	app.OnStart(func(ctx context.Context) error {
		order = append(order, "start")
		return nil
	})
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		order = append(order, "configure")
		return nil
	})
	app.OnReady(func(ctx context.Context) error {
		order = append(order, "ready")
		return nil
	})
	app.OnStop(func(ctx context.Context) error {
		order = append(order, "stop")
		return nil
	})

	app.RunTask(context.Background(), func(ctx context.Context) error {
		order = append(order, "task")
		return nil
	})

	expected := []string{"start", "configure", "ready", "task", "stop"}
	if strings.Join(order, ",") != strings.Join(expected, ",") {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestRunTaskStartupErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(app *App[*testConfig])
	}{
		{"start hook", func(app *App[*testConfig]) {
			app.OnStart(func(ctx context.Context) error { return fmt.Errorf("boom") })
		}},
		{"configure", func(app *App[*testConfig]) {
			app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error { return fmt.Errorf("boom") })
		}},
		{"ready hook", func(app *App[*testConfig]) {
			app.OnReady(func(ctx context.Context) error { return fmt.Errorf("boom") })
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)
			comp := &mockComponent{name: "storage", health: component.Health{Status: component.StatusHealthy}}
			app.RegisterComponent(comp)
			tc.setup(app)

			ran := false
			err := app.RunTask(context.Background(), func(ctx context.Context) error {
				ran = true
				return nil
			})
			if err == nil {
				t.Fatal("expected startup error")
			}
			if ran {
				t.Error("task should not run after a startup failure")
			}
			if !comp.stopped {
				t.Error("started components should be stopped after a startup failure")
			}
		})
	}
}

func TestRunTaskComponentStartError(t *testing.T) {
	app := newTestApp(t)
	app.RegisterComponent(&mockComponent{name: "prefetch", startErr: fmt.Errorf("EMPTY_INDEX")})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		t.Error("task should not run")
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "EMPTY_INDEX") {
		t.Errorf("expected start error to surface, got %v", err)
	}
}

func TestRunTaskStopsComponents(t *testing.T) {
	app := newTestApp(t)
	comp := &mockComponent{name: "storage", health: component.Health{Name: "storage", Status: component.StatusHealthy}}
	app.RegisterComponent(comp)

	if err := app.RunTask(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if !comp.started || !comp.stopped {
		t.Errorf("expected started and stopped, got started=%v stopped=%v", comp.started, comp.stopped)
	}
}

func TestRunTaskComponentStopError(t *testing.T) {
	app := newTestApp(t)
	app.RegisterComponent(&mockComponent{name: "prefetch", stopErr: fmt.Errorf("worker stuck"), health: component.Health{Status: component.StatusHealthy}})

	err := app.RunTask(context.Background(), func(ctx context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "worker stuck") {
		t.Errorf("expected stop error, got %v", err)
	}

	app = newTestApp(t)
	app.RegisterComponent(&mockComponent{name: "prefetch", stopErr: fmt.Errorf("worker stuck"), health: component.Health{Status: component.StatusHealthy}})
	err = app.RunTask(context.Background(), func(ctx context.Context) error { return fmt.Errorf("task error") })
	if err == nil || err.Error() != "task error" {
		t.Errorf("task error should win over stop error, got %v", err)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	app := newTestApp(t)
	app.RegisterComponent(&mockComponent{name: "storage", health: component.Health{Status: component.StatusHealthy}})
	app.RunTask(context.Background(), func(ctx context.Context) error { return nil })

	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown after RunTask failed: %v", err)
	}
}

func TestSummaryRender(t *testing.T) {
	registry := component.NewRegistry()
	registry.Register(&describedComponent{mockComponent{
		name:   "prefetch",
		health: component.Health{Name: "prefetch", Status: component.StatusHealthy},
	}})
	registry.Register(&mockComponent{
		name:   "storage",
		health: component.Health{Name: "storage", Status: component.StatusUnhealthy, Message: "bucket missing"},
	})

	s := NewSummary("datafeed", "")
	s.SetStartupDuration(1500 * time.Millisecond)
	var buf bytes.Buffer
	s.Render(context.Background(), &buf, registry)
	out := buf.String()

	for _, want := range []string{
		"datafeed dev started in 1.50s",
		"prefetch [pipeline] batch=4 streams=2",
		"GET     /stats → stats",
		"❌ storage: unhealthy (bucket missing)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestSummaryRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewSummary("datafeed", "1.0").Render(context.Background(), &buf, component.NewRegistry())
	if !strings.Contains(buf.String(), "No components registered") {
		t.Errorf("unexpected summary %q", buf.String())
	}
}

func TestTreePrefix(t *testing.T) {
	if treePrefix(0, 2) != "├──" || treePrefix(1, 2) != "└──" {
		t.Error("unexpected tree prefixes")
	}
}

func TestHealthStatusIcon(t *testing.T) {
	tests := map[component.HealthStatus]string{
		component.StatusHealthy:   "✅",
		component.StatusDegraded:  "⚠️",
		component.StatusUnhealthy: "❌",
		"unknown":                 "❓",
	}
	for status, want := range tests {
		if got := healthStatusIcon(status); got != want {
			t.Errorf("healthStatusIcon(%s) = %s, want %s", status, got, want)
		}
	}
}
