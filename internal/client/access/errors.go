package access

import (
	"errors"
	"fmt"
)

var (
	ErrAccessDenied = errors.New("folder access denied")
	// ErrNoPasswordNeeded is returned by SubmitPassword outside NeedsPassword.
	ErrNoPasswordNeeded = errors.New("folder is not waiting for a password")
)

// DeniedError is returned by Permit. Its message is the warning shown to the
// user.
type DeniedError struct {
	Action string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("Enter password to %s.", e.Action)
}

func (e *DeniedError) Is(target error) bool { return target == ErrAccessDenied }
