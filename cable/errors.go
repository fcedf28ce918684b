package cable

import "errors"

// Sentinel errors for cell construction and mechanism resolution.
var (
	// ErrInvalidSegment indicates malformed segment geometry, a soma that
	// is not the root, a duplicate soma, or a bad parent index.
	ErrInvalidSegment = errors.New("cable: invalid segment")

	// ErrUnknownMechanism indicates a painted or placed mechanism name
	// that the catalogue does not declare (or declares with an
	// incompatible kind).
	ErrUnknownMechanism = errors.New("cable: unknown mechanism")

	// ErrUnknownParameter indicates a parameter override naming a
	// parameter the mechanism does not declare.
	ErrUnknownParameter = errors.New("cable: unknown mechanism parameter")

	// ErrLocationOutOfRange indicates a placement whose branch id does
	// not exist or whose position lies outside [0,1].
	ErrLocationOutOfRange = errors.New("cable: location out of range")
)
