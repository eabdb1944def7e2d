package owner

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/owner-guard/internal/domain/envelope"
	domain "github.com/oshokin/owner-guard/internal/domain/owner"
)

// Message field names.
const (
	fieldOwner      = "owner"
	fieldStatus     = "status"
	fieldAccount    = "account"
	fieldIsOwner    = "is_owner"
	fieldSender     = "sender"
	fieldAction     = "action"
	fieldNewOwner   = "new_owner"
	fieldNewStatus  = "new_status"
	fieldAttributes = "attributes"
	fieldKey        = "key"
	fieldValue      = "value"
)

var (
	// ErrSenderRequired is returned when an update request has no sender.
	ErrSenderRequired = errors.New("sender is required")
	// ErrUnknownAction is returned for an update action outside the supported set.
	ErrUnknownAction = errors.New("unknown update action")
	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("missing field")
)

// UpdateRequest is the decoded form of an UpdateOwner request.
type UpdateRequest struct {
	// Sender is the authenticated caller.
	Sender domain.AccountID
	// Event is the requested transition.
	Event domain.Update
}

// EncodeUpdateRequest builds the UpdateOwner request message.
func EncodeUpdateRequest(sender string, event domain.Update) (*structpb.Struct, error) {
	fields := map[string]any{
		fieldSender: sender,
	}

	switch e := event.(type) {
	case domain.UpdateOwner:
		fields[fieldAction] = domain.UpdateOwnerName
		fields[fieldNewOwner] = e.NewOwner
	case domain.UpdateStatus:
		fields[fieldAction] = domain.UpdateStatusName
		fields[fieldNewStatus] = e.NewStatus
	case domain.ClearStatus:
		fields[fieldAction] = domain.ClearStatusName
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAction, event)
	}

	return structpb.NewStruct(fields)
}

// DecodeUpdateRequest parses an UpdateOwner request message.
func DecodeUpdateRequest(msg *structpb.Struct) (*UpdateRequest, error) {
	fields := msg.GetFields()

	sender := fields[fieldSender].GetStringValue()
	if sender == "" {
		return nil, ErrSenderRequired
	}

	var event domain.Update

	switch action := fields[fieldAction].GetStringValue(); action {
	case domain.UpdateOwnerName:
		newOwner, ok := fields[fieldNewOwner]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, fieldNewOwner)
		}

		event = domain.UpdateOwner{NewOwner: newOwner.GetStringValue()}
	case domain.UpdateStatusName:
		newStatus, ok := fields[fieldNewStatus]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, fieldNewStatus)
		}

		event = domain.UpdateStatus{NewStatus: newStatus.GetStringValue()}
	case domain.ClearStatusName:
		event = domain.ClearStatus{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	return &UpdateRequest{
		Sender: domain.AccountID(sender),
		Event:  event,
	}, nil
}

// EncodeIsOwnerRequest builds the IsOwner request message.
func EncodeIsOwnerRequest(account string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldAccount: account,
	})
}

// DecodeIsOwnerRequest returns the account to check.
func DecodeIsOwnerRequest(msg *structpb.Struct) (string, error) {
	account, ok := msg.GetFields()[fieldAccount]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingField, fieldAccount)
	}

	return account.GetStringValue(), nil
}

// EncodeIsOwnerResponse builds the IsOwner response message.
func EncodeIsOwnerResponse(isOwner bool) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldIsOwner: structpb.NewBoolValue(isOwner),
		},
	}
}

// DecodeIsOwnerResponse reads the IsOwner result.
func DecodeIsOwnerResponse(msg *structpb.Struct) bool {
	return msg.GetFields()[fieldIsOwner].GetBoolValue()
}

// EncodeOwnerResponse builds the GetOwner response message.
// A missing status is omitted so that it stays distinct from an empty status.
func EncodeOwnerResponse(resp *domain.Response) *structpb.Struct {
	msg := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldOwner: structpb.NewStringValue(resp.Owner),
		},
	}

	if resp.Status != nil {
		msg.Fields[fieldStatus] = structpb.NewStringValue(*resp.Status)
	}

	return msg
}

// DecodeOwnerResponse parses a GetOwner response message.
func DecodeOwnerResponse(msg *structpb.Struct) *domain.Response {
	fields := msg.GetFields()

	return &domain.Response{
		Owner:  fields[fieldOwner].GetStringValue(),
		Status: optionalString(fields[fieldStatus]),
	}
}

// EncodeEnvelope builds the UpdateOwner response message.
func EncodeEnvelope(env *envelope.Envelope) *structpb.Struct {
	msg := EncodeOwnerResponse(&domain.Response{
		Owner:  env.Owner,
		Status: env.Status,
	})

	attributes := make([]*structpb.Value, 0, len(env.Attributes))
	for _, attr := range env.Attributes {
		attributes = append(attributes, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				fieldKey:   structpb.NewStringValue(attr.Key),
				fieldValue: structpb.NewStringValue(attr.Value),
			},
		}))
	}

	msg.Fields[fieldAttributes] = structpb.NewListValue(&structpb.ListValue{Values: attributes})

	return msg
}

// DecodeEnvelope parses an UpdateOwner response message.
func DecodeEnvelope(msg *structpb.Struct) *envelope.Envelope {
	resp := DecodeOwnerResponse(msg)

	values := msg.GetFields()[fieldAttributes].GetListValue().GetValues()
	attributes := make([]envelope.Attribute, 0, len(values))

	for _, value := range values {
		fields := value.GetStructValue().GetFields()
		attributes = append(attributes, envelope.Attribute{
			Key:   fields[fieldKey].GetStringValue(),
			Value: fields[fieldValue].GetStringValue(),
		})
	}

	return &envelope.Envelope{
		Owner:      resp.Owner,
		Status:     resp.Status,
		Attributes: attributes,
	}
}

// optionalString returns nil for a missing or null value.
func optionalString(value *structpb.Value) *string {
	if value == nil {
		return nil
	}

	if _, isNull := value.GetKind().(*structpb.Value_NullValue); isNull {
		return nil
	}

	s := value.GetStringValue()

	return &s
}
