package status

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/datafeed/component"
	"github.com/kbukum/datafeed/logger"
	"github.com/kbukum/datafeed/sse"
)

var (
	_ component.Component     = (*Server)(nil)
	_ component.Describable   = (*Server)(nil)
	_ component.RouteProvider = (*Server)(nil)
)

// Server is the gin-backed status server. It is a component and is usually
// registered last so it reports on everything started before it.
type Server struct {
	cfg     Config
	name    string
	health  HealthReporter
	statsFn StatsFunc
	log     *logger.Logger

	engine     *gin.Engine
	httpServer *http.Server
	events     *sse.Hub

	mu       sync.Mutex
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithEvents serves hub as a Server-Sent Events stream at /events.
func WithEvents(hub *sse.Hub) Option {
	return func(s *Server) { s.events = hub }
}

// New creates a status server for the service name. health and statsFn may
// be nil.
func New(cfg Config, name string, health HealthReporter, statsFn StatsFunc, log *logger.Logger, opts ...Option) *Server {
	cfg.ApplyDefaults()
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		name:    name,
		health:  health,
		statsFn: statsFn,
		log:     log.WithComponent("status"),
		engine:  gin.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine.Use(recovery(s.log), requestLogger(s.log))
	s.engine.GET("/healthz", s.healthz)
	s.engine.GET("/livez", s.livez)
	s.engine.GET("/stats", s.stats)
	s.engine.GET("/version", s.buildInfo)
	if s.events != nil {
		s.engine.GET("/events", s.streamEvents)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for tests and for mounting elsewhere.
func (s *Server) Handler() http.Handler { return s.engine }

// Name implements component.Component.
func (s *Server) Name() string { return "status" }

// Start binds the port and serves in the background. It returns once the
// listener is bound.
func (s *Server) Start(_ context.Context) error {
	tlsCfg, err := s.cfg.TLS.Server()
	if err != nil {
		return fmt.Errorf("status server tls: %w", err)
	}
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("status server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	if tlsCfg != nil {
		listener = tls.NewListener(listener, tlsCfg)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("status server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()
	s.log.Info("status server started", logger.Fields("addr", listener.Addr().String(), "tls", tlsCfg != nil))
	return nil
}

// Stop shuts the server down, waiting at most five seconds for open requests.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	s.log.Info("status server stopped")
	return nil
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Health implements component.Component.
func (s *Server) Health(_ context.Context) component.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return component.Health{Name: s.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy, Message: s.listener.Addr().String()}
}

// Describe implements component.Describable.
func (s *Server) Describe() component.Description {
	return component.Description{
		Name:    "Status Server",
		Type:    "server",
		Details: s.httpServer.Addr,
		Port:    s.cfg.Port,
	}
}

// Routes implements component.RouteProvider.
func (s *Server) Routes() []component.Route {
	ginRoutes := s.engine.Routes()
	sort.Slice(ginRoutes, func(i, j int) bool { return ginRoutes[i].Path < ginRoutes[j].Path })

	routes := make([]component.Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, component.Route{Method: r.Method, Path: r.Path, Handler: handlerName(r.Handler)})
	}
	return routes
}

// handlerName reduces gin's "pkg/status.(*Server).healthz-fm" to "healthz".
func handlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
