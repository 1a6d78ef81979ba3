package adminapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"flowkernel/adminapi/config"
	"flowkernel/adminapi/middleware"
)

// Server wraps an http.Server exposing the admin API over the kernel.
type Server struct {
	cfg    config.Config
	http   *http.Server
	listener net.Listener
}

// NewServer builds the chi handler for k, wraps it with a tracing span per
// request when Observability.Tracing is set, and prepares (but does not
// start) the HTTP listener.
func NewServer(cfg config.Config, k Kernel, stream *EventStream, logger *slog.Logger) (*Server, error) {
	var auth *middleware.Authenticator
	if cfg.Auth.Enabled {
		auth = middleware.NewAuthenticator(middleware.AuthConfig{
			Enabled:        cfg.Auth.Enabled,
			HMACSecret:     cfg.Auth.HMACSecret,
			Issuer:         cfg.Auth.Issuer,
			Audience:       cfg.Auth.Audience,
			ScopeClaim:     cfg.Auth.ScopeClaim,
			OptionalPaths:  cfg.Auth.OptionalPaths,
			AllowAnonymous: cfg.Auth.AllowAnonymous,
			ClockSkew:      cfg.Auth.ClockSkew,
		}, logger)
	}

	limits := make(map[string]middleware.RateLimit, len(cfg.RateLimits))
	for _, rl := range cfg.RateLimits {
		if rl.Group == "" {
			continue
		}
		limits[rl.Group] = middleware.RateLimit{RatePerSecond: rl.RatePerSecond, Burst: rl.Burst}
	}
	var limiter *middleware.RateLimiter
	if len(limits) > 0 {
		limiter = middleware.NewRateLimiter(limits)
	}

	handler := Routes(k, auth, limiter, stream)
	if cfg.Observability.Tracing {
		handler = otelhttp.NewHandler(handler, cfg.Observability.ServiceName)
	}

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:      cfg,
		listener: listener,
		http: &http.Server{
			Addr:         cfg.ListenAddress,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}, nil
}

// Addr returns the bound listener address, useful when ListenAddress uses
// port 0 in tests.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve blocks until the listener is closed or ctx is cancelled, at which
// point it gracefully shuts down within 10 seconds.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
