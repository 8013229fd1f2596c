package ride

import "errors"

var (
	ErrNotFound       = errors.New("ride not found")
	ErrAlreadyClaimed = errors.New("ride already claimed")
	ErrDriverBusy     = errors.New("driver already has an active ride")
	ErrInvalidStatus  = errors.New("invalid status transition")
	ErrWrongDriver    = errors.New("ride is held by a different driver")
	ErrNotStarted     = errors.New("trip has not started")
)
