package textbuf

import "errors"

var (
	// ErrOverlappingRanges is returned when a batch contains edits whose
	// ranges intersect.
	ErrOverlappingRanges = errors.New("overlapping ranges are not allowed")
	// ErrInvalidRange is returned for positions outside the document.
	ErrInvalidRange = errors.New("invalid range")
	// ErrInvalidOffset is returned for byte offsets outside the document.
	ErrInvalidOffset = errors.New("invalid offset")
)
