package motion

import "github.com/pkg/errors"

var (
	// ErrOutOfRange is returned by constructors and setters when an argument
	// falls outside its documented range. State is left unchanged.
	ErrOutOfRange = errors.New("motion: argument out of range")

	// ErrInvalidSettings is returned when a settings record is missing a field
	// or carries an out-of-range value. No partial configuration is applied.
	ErrInvalidSettings = errors.New("motion: settings are missing or invalid")
)
