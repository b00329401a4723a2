package scoring

import "errors"

// Sentinel error kinds for this package. Unknown score types indicate a
// caller bug, not clinical data noise, and therefore fail loudly.
var (
	ErrUnknownScoreType = errors.New("unknown score type")
)
