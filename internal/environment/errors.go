package environment

import "errors"

var (
	// ErrInvalidDimensions indicates a non-positive grid width or height.
	ErrInvalidDimensions = errors.New("environment: grid dimensions must be positive")
	// ErrOutOfBounds indicates a position outside the grid.
	ErrOutOfBounds = errors.New("environment: position out of bounds")
	// ErrImpassable indicates a cost query against impassable terrain.
	ErrImpassable = errors.New("environment: impassable terrain")
)
