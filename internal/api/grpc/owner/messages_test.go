package owner

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/owner-guard/internal/domain/envelope"
	domain "github.com/oshokin/owner-guard/internal/domain/owner"
)

// TestUpdateRequest_Events verifies each event survives encoding and decoding.
func TestUpdateRequest_Events(t *testing.T) {
	t.Parallel()

	events := []domain.Update{
		domain.UpdateOwner{NewOwner: "bob"},
		domain.UpdateStatus{NewStatus: ""},
		domain.ClearStatus{},
	}

	for _, event := range events {
		msg, err := EncodeUpdateRequest("alice", event)
		require.NoError(t, err)

		got, err := DecodeUpdateRequest(msg)
		require.NoError(t, err)
		require.Equal(t, &UpdateRequest{Sender: "alice", Event: event}, got)
	}

	_, err := EncodeUpdateRequest("alice", nil)
	require.ErrorIs(t, err, ErrUnknownAction)
}

// TestDecodeUpdateRequest_MissingFields checks required fields per action.
func TestDecodeUpdateRequest_MissingFields(t *testing.T) {
	t.Parallel()

	msg, err := structpb.NewStruct(map[string]any{"sender": "alice", "action": domain.UpdateOwnerName})
	require.NoError(t, err)

	_, err = DecodeUpdateRequest(msg)
	require.ErrorIs(t, err, ErrMissingField)

	msg, err = structpb.NewStruct(map[string]any{"sender": "alice", "action": domain.UpdateStatusName})
	require.NoError(t, err)

	_, err = DecodeUpdateRequest(msg)
	require.ErrorIs(t, err, ErrMissingField)

	_, err = DecodeUpdateRequest(nil)
	require.ErrorIs(t, err, ErrSenderRequired)
}

// TestOwnerResponse_StatusPresence keeps absent and empty statuses apart.
func TestOwnerResponse_StatusPresence(t *testing.T) {
	t.Parallel()

	empty := ""

	for _, resp := range []*domain.Response{
		{Owner: "alice"},
		{Owner: "alice", Status: &empty},
	} {
		require.Equal(t, resp, DecodeOwnerResponse(EncodeOwnerResponse(resp)))
	}

	null := &structpb.Struct{Fields: map[string]*structpb.Value{
		"owner":  structpb.NewStringValue("alice"),
		"status": structpb.NewNullValue(),
	}}
	require.Nil(t, DecodeOwnerResponse(null).Status)
}

// TestEnvelope_Attributes checks attributes keep their order over the wire.
func TestEnvelope_Attributes(t *testing.T) {
	t.Parallel()

	env := envelope.ForUpdate(&domain.Response{Owner: "bob"}, "alice")

	require.Equal(t, env, DecodeEnvelope(EncodeEnvelope(env)))
}
