package repository

import "errors"

var (
	// ErrDuplicate is returned by Create when a unique column already holds the value
	ErrDuplicate = errors.New("duplicate key")
	// ErrNotOpen is returned by SaveItems when the tab is no longer open
	ErrNotOpen = errors.New("comanda is not open")
)
