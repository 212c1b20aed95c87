package shell

import "errors"

var (
	// ErrRejectedLocally wraps every error of a command that failed local validation.
	// No request was sent for such commands.
	ErrRejectedLocally = errors.New("rejected before sending")

	// ErrNotPermitted is returned by features that are gated on the user's role.
	ErrNotPermitted = errors.New("operation not permitted for this role")
)
