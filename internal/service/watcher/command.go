package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/owner-guard/internal/config"
	domain "github.com/oshokin/owner-guard/internal/domain/owner"
	"github.com/oshokin/owner-guard/internal/logger"
	"github.com/oshokin/owner-guard/internal/service/common"
)

// Options controls the watcher polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval defines the interval between owner checks.
	PollInterval time.Duration
	// OnChange, when set, is called with every observed change.
	OnChange func(previous, current *domain.Response)
}

// DefaultPollInterval defines the polling interval when none is configured.
const DefaultPollInterval = 5 * time.Second

// ownerSource returns the current owner record.
type ownerSource interface {
	GetOwner(ctx context.Context) (*domain.Response, error)
}

// Run polls the owner record and logs every change until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "owner-watch")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Watching owner record", "server_address", serverAddress, "interval", opts.PollInterval.String())

	watch(ctx, client, opts.PollInterval, opts.OnChange)

	logger.Info(ctx, "Context canceled, exiting")

	return nil
}

// watch polls source every interval and reports changes until ctx is done.
// The first successful poll is reported as a change from nil.
func watch(
	ctx context.Context,
	source ownerSource,
	interval time.Duration,
	onChange func(previous, current *domain.Response),
) {
	var last *domain.Response

	poll := func() {
		current, err := source.GetOwner(ctx)
		if err != nil {
			logger.ErrorKV(ctx, "Get owner failed", "error", err)
			return
		}

		if last != nil && sameRecord(last, current) {
			return
		}

		logChange(ctx, last, current)

		if onChange != nil {
			onChange(last, current)
		}

		last = current
	}

	poll()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}

// logChange writes one line describing the transition.
func logChange(ctx context.Context, previous, current *domain.Response) {
	if previous == nil {
		logger.InfoKV(ctx, "Owner record observed", "owner", current.Owner, "status", current.StatusOrEmpty())
		return
	}

	if previous.Owner != current.Owner {
		logger.InfoKV(ctx, "Ownership transferred", "from", previous.Owner, "to", current.Owner)
	}

	if previous.StatusOrEmpty() != current.StatusOrEmpty() || (previous.Status == nil) != (current.Status == nil) {
		logger.InfoKV(ctx, "Status changed", "from", previous.StatusOrEmpty(), "to", current.StatusOrEmpty(),
			"cleared", current.Status == nil)
	}
}

// sameRecord reports whether two responses describe the same record.
func sameRecord(a, b *domain.Response) bool {
	if a.Owner != b.Owner || (a.Status == nil) != (b.Status == nil) {
		return false
	}

	return a.Status == nil || *a.Status == *b.Status
}
