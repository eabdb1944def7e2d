package owner

import "fmt"

// Validator turns a raw account string into a canonical AccountID.
type Validator interface {
	Validate(raw string) (AccountID, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(raw string) (AccountID, error)

// Validate implements Validator.
func (f ValidatorFunc) Validate(raw string) (AccountID, error) {
	return f(raw)
}

const (
	// DefaultMinAccountLength is the shortest accepted account.
	DefaultMinAccountLength = 3
	// DefaultMaxAccountLength is the longest accepted account.
	DefaultMaxAccountLength = 64
)

// CanonicalValidator accepts lowercase ASCII letters and digits within a length range.
// Anything else, including uppercase input, is not canonical and is rejected.
type CanonicalValidator struct {
	// MinLength is the minimum length; zero means DefaultMinAccountLength.
	MinLength int
	// MaxLength is the maximum length; zero means DefaultMaxAccountLength.
	MaxLength int
}

// Validate implements Validator.
func (v CanonicalValidator) Validate(raw string) (AccountID, error) {
	minLength, maxLength := v.MinLength, v.MaxLength
	if minLength <= 0 {
		minLength = DefaultMinAccountLength
	}

	if maxLength <= 0 {
		maxLength = DefaultMaxAccountLength
	}

	switch {
	case len(raw) < minLength:
		return "", &ValidationError{Input: raw, Reason: fmt.Sprintf("shorter than %d characters", minLength)}
	case len(raw) > maxLength:
		return "", &ValidationError{Input: raw, Reason: fmt.Sprintf("longer than %d characters", maxLength)}
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]

		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			continue
		case c >= 'A' && c <= 'Z':
			return "", &ValidationError{Input: raw, Reason: "address not normalized"}
		default:
			return "", &ValidationError{Input: raw, Reason: fmt.Sprintf("unexpected character %q at %d", c, i)}
		}
	}

	return AccountID(raw), nil
}
