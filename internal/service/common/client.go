//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/owner-guard/internal/api/grpc/owner"
	"github.com/oshokin/owner-guard/internal/config"
	"github.com/oshokin/owner-guard/internal/domain/envelope"
	domain "github.com/oshokin/owner-guard/internal/domain/owner"
)

// Client wraps the OwnerService gRPC methods with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the owner server.
	conn *grpc.ClientConn
	// cc invokes the unary methods; it is conn unless replaced in tests.
	cc grpc.ClientConnInterface

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errCallerRequired is returned when an update is sent without a caller.
	errCallerRequired = errors.New("caller must be provided")
)

// Dial establishes a gRPC connection to the owner server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial owner server: %w", err)
	}

	client := &Client{
		conn:        conn,
		cc:          conn,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetOwner retrieves the current owner and status.
func (c *Client) GetOwner(ctx context.Context) (*domain.Response, error) {
	resp, err := c.invoke(ctx, api.GetOwnerMethod, &structpb.Struct{})
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}

	return api.DecodeOwnerResponse(resp), nil
}

// IsOwner asks whether account is the current owner.
func (c *Client) IsOwner(ctx context.Context, account string) (bool, error) {
	req, err := api.EncodeIsOwnerRequest(account)
	if err != nil {
		return false, err
	}

	resp, err := c.invoke(ctx, api.IsOwnerMethod, req)
	if err != nil {
		return false, fmt.Errorf("is owner: %w", err)
	}

	return api.DecodeIsOwnerResponse(resp), nil
}

// Update sends event on behalf of caller and returns the response envelope.
func (c *Client) Update(ctx context.Context, caller string, event domain.Update) (*envelope.Envelope, error) {
	if caller == "" {
		return nil, errCallerRequired
	}

	req, err := api.EncodeUpdateRequest(caller, event)
	if err != nil {
		return nil, err
	}

	resp, err := c.invoke(ctx, api.UpdateOwnerMethod, req)
	if err != nil {
		return nil, fmt.Errorf("update owner: %w", err)
	}

	return api.DecodeEnvelope(resp), nil
}

// invoke performs one unary call bounded by the call timeout.
func (c *Client) invoke(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp := new(structpb.Struct)
	if err := c.cc.Invoke(callCtx, method, req, resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
