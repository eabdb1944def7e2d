package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/owner-guard/internal/api/grpc/owner"
	"github.com/oshokin/owner-guard/internal/config"
	"github.com/oshokin/owner-guard/internal/domain/envelope"
	domain "github.com/oshokin/owner-guard/internal/domain/owner"
	"github.com/oshokin/owner-guard/internal/logger"
	"github.com/oshokin/owner-guard/internal/service/common"
)

// Options configures owner-ctl behavior.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// As overrides the caller account detected from the local user.
	As string

	// Output receives the command result; defaults to stdout.
	Output io.Writer

	// JSON prints results as the wire messages in protobuf JSON form.
	JSON bool

	// MaxAttempts bounds update retries on transient failures.
	MaxAttempts int

	// RetryInterval is the delay between update attempts.
	RetryInterval time.Duration
}

const (
	// defaultMaxAttempts is used when Options.MaxAttempts is not positive.
	defaultMaxAttempts = 5
	// defaultRetryInterval defines retry delay when pushing an update to the server.
	defaultRetryInterval = 1 * time.Second
)

// Query prints the current owner and status.
func Query(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "owner-ctl")

	return withClient(ctx, opts, func(client *common.Client) error {
		resp, err := client.GetOwner(ctx)
		if err != nil {
			return err
		}

		if opts.JSON {
			return printJSON(opts, api.EncodeOwnerResponse(resp))
		}

		_, err = fmt.Fprint(output(opts), formatResponse(resp))

		return err
	})
}

// IsOwner prints whether account owns the record. An empty account means the caller.
func IsOwner(ctx context.Context, opts *Options, account string) error {
	ctx = logger.WithName(ctx, "owner-ctl")

	if account == "" {
		caller, err := resolveCaller(opts)
		if err != nil {
			return err
		}

		account = caller
	}

	return withClient(ctx, opts, func(client *common.Client) error {
		isOwner, err := client.IsOwner(ctx, account)
		if err != nil {
			return err
		}

		if opts.JSON {
			return printJSON(opts, api.EncodeIsOwnerResponse(isOwner))
		}

		_, err = fmt.Fprintln(output(opts), isOwner)

		return err
	})
}

// Update sends event as the caller and prints the resulting envelope.
// Transient transport failures are retried; rejections are returned at once.
func Update(ctx context.Context, opts *Options, event domain.Update) error {
	ctx = logger.WithName(ctx, "owner-ctl")

	caller, err := resolveCaller(opts)
	if err != nil {
		return err
	}

	return withClient(ctx, opts, func(client *common.Client) error {
		logger.DebugKV(ctx, "Pushing owner update", "caller", caller, "event", event.Name())

		env, err := pushUpdate(ctx, opts, func() (*envelope.Envelope, error) {
			return client.Update(ctx, caller, event)
		})
		if err != nil {
			return err
		}

		if opts.JSON {
			return printJSON(opts, api.EncodeEnvelope(env))
		}

		_, err = fmt.Fprint(output(opts), formatEnvelope(env))

		return err
	})
}

// pushUpdate calls attempt until it succeeds, fails permanently or runs out of attempts.
func pushUpdate(
	ctx context.Context,
	opts *Options,
	attempt func() (*envelope.Envelope, error),
) (*envelope.Envelope, error) {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	interval := opts.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}

	env, err := attempt()
	if err == nil || !isTransient(err) {
		return env, err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for try := 2; try <= maxAttempts; try++ {
		logger.WarnKV(ctx, "Update failed, retrying", "attempt", try-1, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		env, err = attempt()
		if err == nil || !isTransient(err) {
			return env, err
		}
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", maxAttempts, err)
}

// isTransient reports whether a failed call may succeed when repeated.
func isTransient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}

// withClient loads settings, dials the server and runs fn with the client.
func withClient(ctx context.Context, opts *Options, fn func(client *common.Client) error) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	return fn(client)
}

// resolveCaller returns the --as override or the detected local account.
func resolveCaller(opts *Options) (string, error) {
	if opts.As != "" {
		return opts.As, nil
	}

	return common.DetectCaller()
}

// output returns the configured writer or stdout.
func output(opts *Options) io.Writer {
	if opts.Output != nil {
		return opts.Output
	}

	return os.Stdout
}

// printJSON writes msg as one line of protobuf JSON.
func printJSON(opts *Options, msg *structpb.Struct) error {
	data, err := protojson.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	_, err = fmt.Fprintln(output(opts), string(data))

	return err
}

// formatResponse renders a query result, one field per line.
func formatResponse(resp *domain.Response) string {
	if resp == nil {
		return "<nil response>\n"
	}

	statusText := "<none>"
	if resp.Status != nil {
		statusText = *resp.Status
	}

	return fmt.Sprintf("owner: %s\nstatus: %s\n", resp.Owner, statusText)
}

// formatEnvelope renders the audit attributes of an update, one per line.
func formatEnvelope(env *envelope.Envelope) string {
	if env == nil {
		return "<nil envelope>\n"
	}

	var out strings.Builder
	for _, attr := range env.Attributes {
		out.WriteString(attr.Key + ": " + attr.Value + "\n")
	}

	return out.String()
}
