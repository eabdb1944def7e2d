//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/owner-guard/internal/api/grpc/owner"
	"github.com/oshokin/owner-guard/internal/domain/envelope"
	domain "github.com/oshokin/owner-guard/internal/domain/owner"
	"github.com/oshokin/owner-guard/internal/repository/kv"
)

var errStreamsUnsupported = errors.New("streams are not supported")

// machineService runs the state machine over a memory store.
type machineService struct {
	// store holds the owner record.
	store *kv.MemoryStore
	// machine applies the ownership rules.
	machine *domain.Machine
}

// Query returns the current owner.
func (m *machineService) Query(ctx context.Context) (*domain.Response, error) {
	return m.machine.Query(ctx, m.store)
}

// IsOwner reports whether candidate owns the record.
func (m *machineService) IsOwner(ctx context.Context, candidate domain.AccountID) (bool, error) {
	return m.machine.IsOwner(ctx, m.store, candidate)
}

// Update applies event and wraps the result in an envelope.
func (m *machineService) Update(
	ctx context.Context,
	sender domain.AccountID,
	event domain.Update,
) (*envelope.Envelope, error) {
	resp, err := m.machine.Update(ctx, m.store, sender, event)
	if err != nil {
		return nil, err
	}

	return envelope.ForUpdate(resp, sender), nil
}

// loopbackConn dispatches unary calls straight to an api.Server.
type loopbackConn struct {
	// server handles every call.
	server *api.Server
	// lastMethod is the most recently invoked full method name.
	lastMethod string
}

// Invoke calls the handler for method and copies its reply.
func (l *loopbackConn) Invoke(ctx context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	l.lastMethod = method

	req, _ := args.(*structpb.Struct)

	var (
		resp *structpb.Struct
		err  error
	)

	switch method {
	case api.GetOwnerMethod:
		resp, err = l.server.GetOwner(ctx, req)
	case api.IsOwnerMethod:
		resp, err = l.server.IsOwner(ctx, req)
	case api.UpdateOwnerMethod:
		resp, err = l.server.UpdateOwner(ctx, req)
	default:
		return status.Errorf(codes.Unimplemented, "unknown method %s", method)
	}

	if err != nil {
		return err
	}

	proto.Merge(reply.(*structpb.Struct), resp) //nolint:forcetypeassert // Client always passes a Struct.

	return nil
}

// NewStream is not used by the owner client.
func (l *loopbackConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errStreamsUnsupported
}

// newLoopbackClient returns a client wired to a state machine owned by alice.
func newLoopbackClient(t *testing.T) (*Client, *loopbackConn) {
	t.Helper()

	machine := domain.NewMachine(domain.DefaultKey, nil)
	store := kv.NewMemoryStore()
	require.NoError(t, machine.Initialize(context.Background(), store, "alice", nil))

	conn := &loopbackConn{
		server: api.NewServer(&machineService{store: store, machine: machine}),
	}

	return &Client{cc: conn, callTimeout: time.Second}, conn
}

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestDial_AppliesOptions checks the call timeout option and Close.
func TestDial_AppliesOptions(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "127.0.0.1:1", WithCallTimeout(42*time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, 42*time.Millisecond, c.callTimeout)
	require.NoError(t, c.Close())

	var nilClient *Client
	require.NoError(t, nilClient.Close())
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestUpdate_EmptyCaller asserts that an update without a caller is rejected by the client.
func TestUpdate_EmptyCaller(t *testing.T) {
	t.Parallel()

	c := new(Client)

	_, err := c.Update(context.Background(), "", domain.ClearStatus{})
	require.ErrorIs(t, err, errCallerRequired)
}

// TestClient_Roundtrip drives every method through the API handlers.
func TestClient_Roundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, conn := newLoopbackClient(t)

	resp, err := c.GetOwner(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", resp.Owner)
	require.Nil(t, resp.Status)
	require.Equal(t, api.GetOwnerMethod, conn.lastMethod)

	env, err := c.Update(ctx, "alice", domain.UpdateStatus{NewStatus: "away"})
	require.NoError(t, err)
	require.NotNil(t, env.Status)
	require.Equal(t, "away", *env.Status)
	require.Equal(t, api.UpdateOwnerMethod, conn.lastMethod)

	env, err = c.Update(ctx, "alice", domain.UpdateOwner{NewOwner: "bob"})
	require.NoError(t, err)
	require.Equal(t, "bob", env.Owner)

	sender, ok := env.Attribute(envelope.KeySender)
	require.True(t, ok)
	require.Equal(t, "alice", sender)

	isOwner, err := c.IsOwner(ctx, "bob")
	require.NoError(t, err)
	require.True(t, isOwner)
	require.Equal(t, api.IsOwnerMethod, conn.lastMethod)
}

// TestClient_UpdateNotOwner verifies the server rejection keeps its gRPC code.
func TestClient_UpdateNotOwner(t *testing.T) {
	t.Parallel()

	c, _ := newLoopbackClient(t)

	_, err := c.Update(context.Background(), "mallory", domain.UpdateOwner{NewOwner: "mallory"})
	require.Error(t, err)
	require.Equal(t, codes.PermissionDenied, status.Code(err))
}
