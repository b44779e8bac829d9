package game

import "errors"

// Failure classes surfaced to callers. NotFound and the validation failures
// are terminal for a request; only ErrStoreUnavailable is worth retrying.
var (
	ErrNotFound         = errors.New("not found")
	ErrNotVerified      = errors.New("team selfie not verified")
	ErrAlreadyPending   = errors.New("a selfie is already pending verification")
	ErrAlreadyFinished  = errors.New("route already finished")
	ErrStoreUnavailable = errors.New("store unavailable")
)
