package guard

import "errors"

var (
	ErrForbidden       = errors.New("guard.forbidden")
	ErrPending         = errors.New("guard.permissions_pending")
	ErrUnauthenticated = errors.New("guard.unauthenticated")
)
