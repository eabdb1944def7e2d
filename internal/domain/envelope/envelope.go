// Package envelope shapes owner state into responses with audit attributes
// suitable for external logging and indexing.
package envelope

import "github.com/oshokin/owner-guard/internal/domain/owner"

// Attribute keys in the order they are emitted.
const (
	KeyAction = "action"
	KeyOwner  = "owner"
	KeyStatus = "status"
	KeySender = "sender"
)

// ActionUpdateOwner is the action recorded for every owner record mutation,
// whichever event caused it.
const ActionUpdateOwner = "update_owner"

// Attribute is one human-readable audit field.
type Attribute struct {
	Key   string
	Value string
}

// Envelope is the resulting owner state plus audit attributes.
type Envelope struct {
	// Owner is the owner after the call.
	Owner string
	// Status is the status after the call, nil when absent.
	Status *string
	// Attributes lists audit fields in a stable order.
	Attributes []Attribute
}

// ForUpdate builds the envelope returned after a successful update.
// A missing status is rendered as an empty string attribute.
func ForUpdate(resp *owner.Response, sender owner.AccountID) *Envelope {
	return &Envelope{
		Owner:  resp.Owner,
		Status: resp.Status,
		Attributes: []Attribute{
			{Key: KeyAction, Value: ActionUpdateOwner},
			{Key: KeyOwner, Value: resp.Owner},
			{Key: KeyStatus, Value: resp.StatusOrEmpty()},
			{Key: KeySender, Value: sender.String()},
		},
	}
}

// Attribute returns the value of the first attribute named key.
func (e *Envelope) Attribute(key string) (string, bool) {
	if e == nil {
		return "", false
	}

	for _, attr := range e.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}

	return "", false
}

// KV flattens the attributes into alternating keys and values for structured logging.
func (e *Envelope) KV() []any {
	if e == nil {
		return nil
	}

	kvs := make([]any, 0, 2*len(e.Attributes))
	for _, attr := range e.Attributes {
		kvs = append(kvs, attr.Key, attr.Value)
	}

	return kvs
}
