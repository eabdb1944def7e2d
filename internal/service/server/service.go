package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/oshokin/owner-guard/internal/domain/contract"
	"github.com/oshokin/owner-guard/internal/domain/envelope"
	domain "github.com/oshokin/owner-guard/internal/domain/owner"
	"github.com/oshokin/owner-guard/internal/logger"
	"github.com/oshokin/owner-guard/internal/metrics"
	"github.com/oshokin/owner-guard/internal/repository/kv"
	"github.com/oshokin/owner-guard/internal/version"
)

// Query method names used as metric labels.
const (
	methodQuery   = "query"
	methodIsOwner = "is_owner"
)

// errNoInitialOwner is returned when an empty store is opened without an initial owner.
var errNoInitialOwner = errors.New("store is empty and no initial owner is configured")

// service adapts the owner state machine to transport callers.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// store persists the owner and contract info records.
	store kv.Store
	// machine implements the ownership rules.
	machine *domain.Machine
	// metrics counts calls by outcome; nil disables counting.
	metrics *metrics.Metrics
	// mu serializes updates against each other and against reads.
	mu sync.RWMutex
}

// newService creates a service over store.
func newService(store kv.Store, machine *domain.Machine, m *metrics.Metrics) *service {
	if machine == nil {
		machine = domain.NewMachine(domain.DefaultKey, nil)
	}

	return &service{
		store:   store,
		machine: machine,
		metrics: m,
	}
}

// instantiate prepares the store for serving. An empty store receives the
// initial owner and the running contract version; a used store must carry
// the running version exactly.
func (s *service) instantiate(ctx context.Context, initialOwner, initialStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := contract.Check(ctx, s.store, version.Name, version.Version)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, contract.ErrNotSet):
		return fmt.Errorf("check contract: %w", err)
	}

	_, err = s.machine.Current(ctx, s.store)
	switch {
	case err == nil:
		// Owner record predates contract info; keep it.
	case errors.Is(err, domain.ErrUninitialized):
		if initialOwner == "" {
			return errNoInitialOwner
		}

		var status *string
		if initialStatus != "" {
			status = &initialStatus
		}

		if err = s.machine.Initialize(ctx, s.store, initialOwner, status); err != nil {
			return fmt.Errorf("initialize owner: %w", err)
		}

		logger.InfoKV(ctx, "Owner record initialized", "owner", initialOwner, "status", initialStatus)
	default:
		return fmt.Errorf("load owner: %w", err)
	}

	if err = contract.Set(ctx, s.store, version.Name, version.Version); err != nil {
		return fmt.Errorf("set contract: %w", err)
	}

	return nil
}

// Query returns the current owner and status.
func (s *service) Query(ctx context.Context) (*domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp, err := s.machine.Query(ctx, s.store)
	s.metrics.ObserveQuery(methodQuery, err)

	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Owner requested", "owner", resp.Owner, "status", resp.StatusOrEmpty())

	return resp, nil
}

// IsOwner reports whether candidate is the current owner.
func (s *service) IsOwner(ctx context.Context, candidate domain.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	isOwner, err := s.machine.IsOwner(ctx, s.store, candidate)
	s.metrics.ObserveQuery(methodIsOwner, err)

	return isOwner, err
}

// Update applies event on behalf of sender and returns the response envelope.
func (s *service) Update(ctx context.Context, sender domain.AccountID, event domain.Update) (*envelope.Envelope, error) {
	ctx = logger.WithKV(ctx, "request_id", uuid.NewString(), "event", eventName(event))

	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.machine.Update(ctx, s.store, sender, event)
	s.metrics.ObserveUpdate(eventName(event), err)

	if err != nil {
		if domain.KindOf(err) == domain.KindStorage {
			logger.ErrorKV(ctx, "Owner update failed", "sender", sender.String(), "error", err)
		} else {
			logger.WarnKV(ctx, "Owner update rejected", "sender", sender.String(), "kind", domain.KindOf(err).String(), "error", err)
		}

		return nil, err
	}

	env := envelope.ForUpdate(resp, sender)
	logger.InfoKV(ctx, "Owner record updated", env.KV()...)

	return env, nil
}

// eventName returns the event label, tolerating a nil event.
func eventName(event domain.Update) string {
	if event == nil {
		return "unknown"
	}

	return event.Name()
}
