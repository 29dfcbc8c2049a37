package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/ticketlab/gatehouse/config"
	"github.com/ticketlab/gatehouse/internal/adapters/authapi"
	"github.com/ticketlab/gatehouse/internal/adapters/devauth"
	"github.com/ticketlab/gatehouse/internal/adapters/oidc"
	redisadapter "github.com/ticketlab/gatehouse/internal/adapters/redis"
	"github.com/ticketlab/gatehouse/internal/data"
	"github.com/ticketlab/gatehouse/internal/observability/statsd"
	"github.com/ticketlab/gatehouse/internal/ports"
	"github.com/ticketlab/gatehouse/internal/service"
)

// EngineConfig contains the dependencies needed to assemble the session engine.
type EngineConfig struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// BuildEngine wires the session engine with the credential backends the
// configured auth mode selects, the Redis slot store, the SSO provider
// when discovery is configured, and the metrics sink.
func BuildEngine(cfg EngineConfig) (*service.SessionService, error) {
	if cfg.Config == nil {
		return nil, errors.New("app config is required")
	}
	if cfg.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	customers, admins, err := buildAuthenticators(cfg, logger)
	if err != nil {
		return nil, err
	}

	sso, err := buildSSOProvider(cfg.Config.Auth.SSO)
	if err != nil {
		return nil, err
	}

	metrics, err := BuildMetrics(cfg.Config.Observability, logger)
	if err != nil {
		return nil, err
	}

	slots := redisadapter.NewSlotStoreWithOptions(cfg.Redis, redisadapter.SlotStoreOptions{
		Prefix: cfg.Config.Auth.Slots.Prefix,
		TTL:    cfg.Config.Auth.Slots.TTL,
	})

	logger.Info("session engine configured",
		"auth_mode", string(cfg.Config.Auth.Mode),
		"sso_enabled", sso != nil,
		"metrics_enabled", metrics.Enabled(),
	)

	return service.NewSessionService(service.SessionServiceOptions{
		Slots:     slots,
		Customers: customers,
		Admins:    admins,
		SSO:       sso,
		Logger:    logger,
		Metrics:   metrics,
	}), nil
}

//nolint:ireturn // the auth mode decides the concrete backend at runtime.
func buildAuthenticators(cfg EngineConfig, logger *slog.Logger) (ports.CustomerAuthenticator, ports.AdminAuthenticator, error) {
	auth := cfg.Config.Auth

	switch auth.Mode {
	case config.AuthModeLocal:
		if cfg.DB == nil {
			return nil, nil, errors.New("local auth mode requires a database connection")
		}
		customers := service.NewLocalCustomerAuthenticator(data.NewCustomerAccountRepo(cfg.DB))
		admins := service.NewLocalAdminAuthenticator(data.NewAdminAccountRepo(cfg.DB), logger)
		return customers, admins, nil

	case config.AuthModeRemote:
		client, err := authapi.NewClient(authapi.Config{
			BaseURL: auth.Remote.BaseURL,
			APIKey:  auth.Remote.APIKey,
			Timeout: auth.Remote.Timeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build remote auth client: %w", err)
		}
		return client, client.AsAdmin(), nil

	case config.AuthModeMock:
		provider, err := devauth.NewProvider(devauth.Config{
			CustomerEmail: auth.DevAuth.CustomerEmail,
			AdminEmail:    auth.DevAuth.AdminEmail,
			Password:      auth.DevAuth.Password,
			AdminRole:     auth.DevAuth.AdminRole,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build dev auth provider: %w", err)
		}
		return provider, provider.AsAdmin(), nil

	default:
		return nil, nil, fmt.Errorf("unknown auth mode %q", auth.Mode)
	}
}

//nolint:ireturn // callers depend on the port, not the concrete provider.
func buildSSOProvider(cfg config.SSOConfig) (ports.AdminSSOProvider, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	provider, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:        cfg.ClientID,
		ClientSecret:    cfg.ClientSecret,
		RedirectURL:     cfg.RedirectURL,
		Scope:           cfg.Scope,
		DiscoveryURL:    cfg.DiscoveryURL,
		RoleExpr:        cfg.RoleExpr,
		PermissionsExpr: cfg.PermissionsExpr,
	})
	if err != nil {
		return nil, fmt.Errorf("build sso provider: %w", err)
	}
	return provider, nil
}

// BuildMetrics creates the StatsD client. A disabled configuration
// yields a client that swallows every call.
func BuildMetrics(cfg config.ObservabilityConfig, logger *slog.Logger) (*statsd.Client, error) {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Metrics.IsEnabled(),
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  "gatehouse",
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build statsd client: %w", err)
	}
	return client, nil
}
