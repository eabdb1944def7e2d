package owner

import "github.com/oshokin/owner-guard/internal/codec"

// record is the durable CBOR layout of State. Fields are keyed by name so
// later versions can add fields without breaking older readers.
type record struct {
	Owner  string  `cbor:"owner"`
	Status *string `cbor:"status,omitempty"`
}

// encodeState serializes the state for storage.
func encodeState(state *State) ([]byte, error) {
	return codec.Marshal(record{
		Owner:  state.Owner.String(),
		Status: state.Status,
	})
}

// decodeState parses a stored record.
func decodeState(data []byte) (*State, error) {
	var rec record
	if err := codec.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	return &State{
		Owner:  AccountID(rec.Owner),
		Status: rec.Status,
	}, nil
}
