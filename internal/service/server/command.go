package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	api "github.com/oshokin/owner-guard/internal/api/grpc/owner"
	"github.com/oshokin/owner-guard/internal/config"
	"github.com/oshokin/owner-guard/internal/domain/contract"
	domain "github.com/oshokin/owner-guard/internal/domain/owner"
	"github.com/oshokin/owner-guard/internal/logger"
	"github.com/oshokin/owner-guard/internal/metrics"
	"github.com/oshokin/owner-guard/internal/platform/ratelimiter"
	"github.com/oshokin/owner-guard/internal/repository/storage"
	"github.com/oshokin/owner-guard/internal/version"
)

// Options controls the owner-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StoragePath overrides the configured storage location.
	StoragePath string
	// InitialOwner overrides the configured initial owner.
	InitialOwner string
	// OnListen is called with the bound address once the server accepts connections.
	OnListen func(addr net.Addr)
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "owner-server")

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	store, closeStore, err := storage.Open(settings.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			logger.Errorf(ctx, "Failed to close storage: %v", closeErr)
		}
	}()

	m := metrics.New()
	svc := newService(store, domain.NewMachine(domain.DefaultKey, nil), m)

	if err = svc.instantiate(ctx, settings.InitialOwner, settings.InitialStatus); err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	var limiter api.Limiter
	if l := ratelimiter.New(settings.RateLimit.RPS, settings.RateLimit.Burst, 0); l != nil {
		limiter = l
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		api.LoggingInterceptor(),
		api.RateLimitInterceptor(limiter, m.ObserveThrottled),
	))
	api.Register(grpcServer, api.NewServer(svc))

	if settings.MetricsAddress != "" {
		go func() {
			if serveErr := m.Serve(ctx, settings.MetricsAddress); serveErr != nil {
				logger.ErrorKV(ctx, "Metrics endpoint stopped", "error", serveErr)
			}
		}()
	}

	logger.InfoKV(ctx, "Owner server listening",
		"listen_address", lis.Addr().String(),
		"storage_backend", settings.Storage.Backend,
		"storage_path", settings.Storage.Path,
		"metrics_address", settings.MetricsAddress)

	if opts.OnListen != nil {
		opts.OnListen(lis.Addr())
	}

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// Migrate upgrades the contract info of the configured store to the running version.
func Migrate(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "owner-server")

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	store, closeStore, err := storage.Open(settings.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			logger.Errorf(ctx, "Failed to close storage: %v", closeErr)
		}
	}()

	previous, err := contract.Migrate(ctx, store, version.Name, version.Version)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	logger.InfoKV(ctx, "Store migrated", "from", previous.Version, "to", version.Version)

	return nil
}

// loadSettings reads the configuration and applies command line overrides.
func loadSettings(opts *Options) (*config.Config, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if settings.LogLevel != "" && !logger.SetLevelString(settings.LogLevel) {
		return nil, fmt.Errorf("unknown log level %q", settings.LogLevel)
	}

	if opts.StoragePath != "" {
		settings.Storage.Path = opts.StoragePath
	}

	if opts.InitialOwner != "" {
		settings.InitialOwner = opts.InitialOwner
		if settings.InitialStatus == "" {
			settings.InitialStatus = config.DefaultInitialStatus
		}
	}

	return settings, nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return ":" + port, nil
}
