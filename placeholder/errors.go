package placeholder

import "errors"

var (
	// ErrNotImage is returned when an image-only operation is called on a
	// record that is not an image.
	ErrNotImage = errors.New("placeholder operations can only be called on images")

	// ErrEmptyImage is returned for images with a zero width or height.
	ErrEmptyImage = errors.New("image has no pixels")
)
