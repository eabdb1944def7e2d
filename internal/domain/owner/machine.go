package owner

import (
	"context"
	"errors"

	"github.com/oshokin/owner-guard/internal/repository/kv"
)

// DefaultKey is the storage key of the owner record.
const DefaultKey = "owner"

// Machine guards the owner record stored under a fixed key.
// It keeps no state between calls and is safe to share.
type Machine struct {
	// key is where the record lives in the store.
	key string
	// validator checks every account string before it is stored.
	validator Validator
}

// NewMachine binds a state machine to key. An empty key means DefaultKey and a
// nil validator means CanonicalValidator with default limits.
func NewMachine(key string, validator Validator) *Machine {
	if key == "" {
		key = DefaultKey
	}

	if validator == nil {
		validator = CanonicalValidator{}
	}

	return &Machine{
		key:       key,
		validator: validator,
	}
}

// Key returns the storage key of the record.
func (m *Machine) Key() string {
	return m.key
}

// Validate runs the configured validator and converts its failure to a ValidationError.
func (m *Machine) Validate(raw string) (AccountID, error) {
	account, err := m.validator.Validate(raw)
	if err != nil {
		return "", validationError(raw, err)
	}

	return account, nil
}

// Initialize writes the first record. It overwrites any existing record, so
// callers must invoke it exactly once during setup.
func (m *Machine) Initialize(ctx context.Context, store kv.Store, ownerRaw string, status *string) error {
	validated, err := m.Validate(ownerRaw)
	if err != nil {
		return err
	}

	return m.save(ctx, store, &State{
		Owner:  validated,
		Status: cloneString(status),
	})
}

// Current returns the current owner.
func (m *Machine) Current(ctx context.Context, store kv.Store) (AccountID, error) {
	state, err := m.load(ctx, store)
	if err != nil {
		return "", err
	}

	return state.Owner, nil
}

// Status returns the current status, nil when none is set.
func (m *Machine) Status(ctx context.Context, store kv.Store) (*string, error) {
	state, err := m.load(ctx, store)
	if err != nil {
		return nil, err
	}

	return state.Status, nil
}

// IsOwner reports whether candidate is the current owner.
func (m *Machine) IsOwner(ctx context.Context, store kv.Store, candidate AccountID) (bool, error) {
	current, err := m.Current(ctx, store)
	if err != nil {
		return false, err
	}

	return current == candidate, nil
}

// Query returns the owner and status together.
func (m *Machine) Query(ctx context.Context, store kv.Store) (*Response, error) {
	state, err := m.load(ctx, store)
	if err != nil {
		return nil, err
	}

	return state.Response(), nil
}

// AssertOwner fails with ErrNotOwner unless candidate is the current owner.
func (m *Machine) AssertOwner(ctx context.Context, store kv.Store, candidate AccountID) error {
	state, err := m.load(ctx, store)
	if err != nil {
		return err
	}

	return checkOwner(state, candidate)
}

// Update applies event on behalf of caller and returns the resulting projection.
// On any error the stored record is left as it was.
func (m *Machine) Update(ctx context.Context, store kv.Store, caller AccountID, event Update) (*Response, error) {
	current, err := m.load(ctx, store)
	if err != nil {
		return nil, err
	}

	if err = checkOwner(current, caller); err != nil {
		return nil, err
	}

	next, err := m.transition(current, event)
	if err != nil {
		return nil, err
	}

	if err = m.save(ctx, store, next); err != nil {
		return nil, err
	}

	return next.Response(), nil
}

// transition computes the record that follows current under event.
func (m *Machine) transition(current *State, event Update) (*State, error) {
	switch e := event.(type) {
	case UpdateOwner:
		validated, err := m.Validate(e.NewOwner)
		if err != nil {
			return nil, err
		}

		return &State{
			Owner:  validated,
			Status: cloneString(current.Status),
		}, nil
	case *UpdateOwner:
		if e == nil {
			return nil, ErrUnsupportedUpdate
		}

		return m.transition(current, *e)
	case UpdateStatus:
		return &State{
			Owner:  current.Owner,
			Status: &e.NewStatus,
		}, nil
	case *UpdateStatus:
		if e == nil {
			return nil, ErrUnsupportedUpdate
		}

		return m.transition(current, *e)
	case ClearStatus, *ClearStatus:
		return &State{
			Owner:  current.Owner,
			Status: nil,
		}, nil
	default:
		return nil, ErrUnsupportedUpdate
	}
}

// checkOwner is the single authorization check used by every mutation.
func checkOwner(state *State, candidate AccountID) error {
	if state.Owner != candidate {
		return ErrNotOwner
	}

	return nil
}

// load reads and decodes the record.
func (m *Machine) load(ctx context.Context, store kv.Store) (*State, error) {
	data, err := store.Load(ctx, m.key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrUninitialized
		}

		return nil, storageError("load", err)
	}

	state, err := decodeState(data)
	if err != nil {
		return nil, storageError("decode", err)
	}

	return state, nil
}

// save encodes and writes the record in one key overwrite.
func (m *Machine) save(ctx context.Context, store kv.Store, state *State) error {
	data, err := encodeState(state)
	if err != nil {
		return storageError("encode", err)
	}

	if err = store.Save(ctx, m.key, data); err != nil {
		return storageError("save", err)
	}

	return nil
}
