//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os/user"
	"strings"
)

// errEmptyUsername is returned when the operating system reports no user name.
var errEmptyUsername = errors.New("current user has an empty name")

// DetectCaller returns the account name to send as the caller of an update.
// The local user name is lowercased and stripped of a Windows domain prefix.
func DetectCaller() (string, error) {
	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}

	return callerFromUsername(currentUser.Username)
}

// callerFromUsername normalizes an operating system user name.
func callerFromUsername(username string) (string, error) {
	if i := strings.LastIndexByte(username, '\\'); i >= 0 {
		username = username[i+1:]
	}

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return "", errEmptyUsername
	}

	return username, nil
}
