package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/pairing-core/internal/audit"
	"github.com/nerrad567/pairing-core/internal/auth"
	"github.com/nerrad567/pairing-core/internal/infrastructure/config"
	"github.com/nerrad567/pairing-core/internal/infrastructure/database"
	"github.com/nerrad567/pairing-core/internal/infrastructure/logging"
	"github.com/nerrad567/pairing-core/internal/pairing"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// CodeIssuer issues pairing sessions. *pairing.Issuer satisfies it.
type CodeIssuer interface {
	Issue(ctx context.Context, state, packagingType string) (*pairing.Session, error)
	Stats() pairing.Stats
}

// PasswordChanger changes an account password. *account.Service satisfies it.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, accountID, current, next string) error
}

// HealthChecker is implemented by every backing client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ConnectionReporter reports the state of an optional connection.
type ConnectionReporter interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Security  config.SecurityConfig
	Logger    *logging.Logger
	Issuer    CodeIssuer
	Cache     HealthChecker
	Accounts  auth.AccountRepository
	Passwords PasswordChanger
	Audit     audit.Repository
	DB        *database.DB       // optional: health and pool metrics
	MQTT      ConnectionReporter // optional: metrics only
	Version   string
}

// Server is the HTTP API server.
//
// It is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	issuer    CodeIssuer
	cache     HealthChecker
	accounts  auth.AccountRepository
	passwords PasswordChanger
	audit     audit.Repository
	db        *database.DB
	mqtt      ConnectionReporter
	version   string
	limiter   *rateLimiter // nil when rate limiting is disabled
	startTime time.Time
	server    *http.Server
	addr      net.Addr
	cancel    context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger is required")
	case deps.Issuer == nil:
		return nil, fmt.Errorf("pairing issuer is required")
	case deps.Cache == nil:
		return nil, fmt.Errorf("cache health checker is required")
	case deps.Accounts == nil:
		return nil, fmt.Errorf("account repository is required")
	case deps.Passwords == nil:
		return nil, fmt.Errorf("password changer is required")
	case deps.Audit == nil:
		return nil, fmt.Errorf("audit repository is required")
	}

	s := &Server{
		cfg:       deps.Config,
		secCfg:    deps.Security,
		logger:    deps.Logger,
		issuer:    deps.Issuer,
		cache:     deps.Cache,
		accounts:  deps.Accounts,
		passwords: deps.Passwords,
		audit:     deps.Audit,
		db:        deps.DB,
		mqtt:      deps.MQTT,
		version:   deps.Version,
		startTime: time.Now(),
	}
	if rl := deps.Security.RateLimit; rl.Enabled {
		s.limiter = newRateLimiter(rl.RequestsPerMinute, rl.Burst)
	}
	return s, nil
}

// Start binds the listener and serves in a background goroutine.
//
// Binding happens synchronously so a port already in use is reported here.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.limiter != nil {
		go s.limiter.run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port)),
		Handler:           s.buildRouter(),
		BaseContext:       func(net.Listener) context.Context { return srvCtx },
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.addr = ln.Addr()

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.addr.String(),
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ServeTLS(ln, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.addr.String())
			err = s.server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Close gracefully shuts down the API server.
//
// Request contexts derive from the server context, so cancelling it first
// aborts handlers still waiting on the cache. Close then waits up to 10
// seconds for in-flight requests to complete before forcefully closing
// remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
