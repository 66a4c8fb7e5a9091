package monitor

import "errors"

// Check errors
var (
	ErrResolutionEmpty  = errors.New("resolver returned no records")
	ErrResolutionFailed = errors.New("DNS resolution failed")
	ErrSnapshotNotSaved = errors.New("changes detected but snapshot not saved")
	ErrInvalidBehavior  = errors.New("invalid snapshot behavior")
)
