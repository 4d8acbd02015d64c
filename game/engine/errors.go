package engine

import "errors"

var (
	// ErrInvalidCoordinate is returned for positions outside the board
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidState is returned when a cell carries an illegal terrain/orientation pair.
	// It indicates a layout or transition bug and the board must not be evaluated further.
	ErrInvalidState = errors.New("invalid cell state")

	// ErrInvalidSize is returned for board sizes other than EasySize and HardSize
	ErrInvalidSize = errors.New("invalid board size")
)
