package pathnet

import "errors"

var (
	// ErrInvalidPath is returned for a path with fewer than 2 points
	ErrInvalidPath = errors.New("path needs at least 2 points")

	// ErrNoContinuation means a node has no forward-facing ends nearby; the
	// path terminates there.
	ErrNoContinuation = errors.New("no continuation from node")

	// ErrNoMatchingType means ends were found but none admits the vehicle type.
	ErrNoMatchingType = errors.New("no continuation admits vehicle type")

	// ErrUnbuiltNetwork is returned by queries issued before the first rebuild
	ErrUnbuiltNetwork = errors.New("path network has not been built")

	ErrIndexOutOfRange    = errors.New("point index out of range")
	ErrNullNode           = errors.New("node does not reference a path")
	ErrNoRoute            = errors.New("no route between paths")
	ErrUnknownVehicleType = errors.New("unknown vehicle type")
)
