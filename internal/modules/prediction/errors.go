package prediction

import "errors"

// Caller-facing error taxonomy. Indicator and factor level data gaps are
// absorbed internally (nil indicators, false factors, lower scores);
// only structurally invalid inputs surface as errors.
var (
	// ErrInvalidConfig marks scoring configurations rejected at
	// construction time: negative weights, threshold outside [0,1],
	// moderate ratio outside (0,1).
	ErrInvalidConfig = errors.New("invalid scoring configuration")

	// ErrInvalidParameter marks request parameters rejected before any
	// computation: requested days outside [1,50], future days outside
	// [0,30], unknown baseline strategy or sort field.
	ErrInvalidParameter = errors.New("invalid parameter")
)
