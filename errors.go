package w3e

import "errors"

// Sentinel errors reported by Decode and Encode. Callers match them with
// errors.Is; the wrapped message carries the field and offset context.
var (
	// ErrUnexpectedEOF means the buffer ended before the schema did.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrInvalidFieldValue means a value written in strict mode would not
	// fit its declared bit width. The default (non-strict) encoder masks
	// such values instead.
	ErrInvalidFieldValue = errors.New("value does not fit declared bit width")
)
