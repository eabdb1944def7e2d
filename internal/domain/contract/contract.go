// Package contract records which program and version last wrote the store and
// guards migrations between versions.
package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/oshokin/owner-guard/internal/codec"
	"github.com/oshokin/owner-guard/internal/repository/kv"
)

// InfoKey is the storage key of the contract info record.
const InfoKey = "contract_info"

// Info identifies the program that owns the store.
type Info struct {
	Contract string `cbor:"contract"`
	Version  string `cbor:"version"`
}

var (
	// ErrNotSet is returned when no contract info has been recorded.
	ErrNotSet = errors.New("contract info is not set")
	// ErrContractMismatch is returned when migrating a store written by another program.
	ErrContractMismatch = errors.New("can only upgrade from same type")
	// ErrDowngrade is returned when the store was written by a newer version.
	ErrDowngrade = errors.New("cannot upgrade from a newer version")
	// ErrInvalidVersion is returned for versions that are not semantic versions.
	ErrInvalidVersion = errors.New("invalid semantic version")
	// ErrMigrationRequired is returned by Check when the store was written by an older version.
	ErrMigrationRequired = errors.New("store was written by an older version, run migrate")
)

// Get loads the recorded contract info.
func Get(ctx context.Context, store kv.Store) (*Info, error) {
	data, err := store.Load(ctx, InfoKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotSet
		}

		return nil, fmt.Errorf("load contract info: %w", err)
	}

	var info Info
	if err = codec.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode contract info: %w", err)
	}

	return &info, nil
}

// Set records name and version unconditionally.
func Set(ctx context.Context, store kv.Store, name, version string) error {
	if _, err := canonical(version); err != nil {
		return err
	}

	data, err := codec.Marshal(Info{
		Contract: name,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("encode contract info: %w", err)
	}

	if err = store.Save(ctx, InfoKey, data); err != nil {
		return fmt.Errorf("save contract info: %w", err)
	}

	return nil
}

// Check verifies that the store was last migrated by exactly name at version.
func Check(ctx context.Context, store kv.Store, name, version string) error {
	info, err := Get(ctx, store)
	if err != nil {
		return err
	}

	cmp, err := compare(info, name, version)
	if err != nil {
		return err
	}

	if cmp < 0 {
		return fmt.Errorf("%w: stored %s, running %s", ErrMigrationRequired, info.Version, version)
	}

	return nil
}

// Migrate checks that the store belongs to name and is not newer than version,
// then records version. It returns the info that was stored before.
func Migrate(ctx context.Context, store kv.Store, name, version string) (*Info, error) {
	previous, err := Get(ctx, store)
	if err != nil {
		return nil, err
	}

	if _, err = compare(previous, name, version); err != nil {
		return previous, err
	}

	if err = Set(ctx, store, name, version); err != nil {
		return previous, err
	}

	return previous, nil
}

// compare returns the semver ordering of the stored version against version.
// It fails for a foreign contract or a stored version newer than version.
func compare(info *Info, name, version string) (int, error) {
	if info.Contract != name {
		return 0, fmt.Errorf("%w: stored %q, running %q", ErrContractMismatch, info.Contract, name)
	}

	target, err := canonical(version)
	if err != nil {
		return 0, err
	}

	stored, err := canonical(info.Version)
	if err != nil {
		return 0, err
	}

	cmp := semver.Compare(stored, target)
	if cmp > 0 {
		return 0, fmt.Errorf("%w: stored %s, running %s", ErrDowngrade, info.Version, version)
	}

	return cmp, nil
}

// canonical adds the "v" prefix semver expects and validates the result.
func canonical(version string) (string, error) {
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}

	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}

	return v, nil
}
