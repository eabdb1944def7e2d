package owner

// AccountID is an account identifier that has passed validation.
// Values should only be produced by a Validator.
type AccountID string

// String returns the identifier as a plain string.
func (a AccountID) String() string {
	return string(a)
}

// State is the persisted ownership record.
type State struct {
	// Owner is the account allowed to mutate the record.
	Owner AccountID
	// Status is optional free text; nil means no status is set.
	Status *string
}

// Clone returns a copy of the state that shares no memory with the original.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	return &State{
		Owner:  s.Owner,
		Status: cloneString(s.Status),
	}
}

// Response projects the state into its query shape.
func (s *State) Response() *Response {
	return &Response{
		Owner:  s.Owner.String(),
		Status: cloneString(s.Status),
	}
}

// Response is the query-shaped view of State returned to callers.
type Response struct {
	// Owner is the current owner account.
	Owner string
	// Status is the current status, nil when cleared.
	Status *string
}

// StatusOrEmpty returns the status or an empty string when it is absent.
func (r *Response) StatusOrEmpty() string {
	if r == nil || r.Status == nil {
		return ""
	}

	return *r.Status
}

// Update is one of the ownership events: UpdateOwner, UpdateStatus or ClearStatus.
type Update interface {
	// Name returns the event name used in logs and metrics.
	Name() string

	isUpdate()
}

// UpdateOwner hands ownership to NewOwner immediately. The status is kept.
type UpdateOwner struct {
	NewOwner string
}

// UpdateStatus replaces the status with NewStatus. An empty string is a valid status.
type UpdateStatus struct {
	NewStatus string
}

// ClearStatus removes the status.
type ClearStatus struct{}

// Event names.
const (
	UpdateOwnerName  = "update_owner"
	UpdateStatusName = "update_status"
	ClearStatusName  = "clear_status"
)

// Name implements Update.
func (UpdateOwner) Name() string { return UpdateOwnerName }

// Name implements Update.
func (UpdateStatus) Name() string { return UpdateStatusName }

// Name implements Update.
func (ClearStatus) Name() string { return ClearStatusName }

func (UpdateOwner) isUpdate()  {}
func (UpdateStatus) isUpdate() {}
func (ClearStatus) isUpdate()  {}

// cloneString copies the pointed-to string.
func cloneString(s *string) *string {
	if s == nil {
		return nil
	}

	v := *s

	return &v
}
