package skeleton

import "errors"

var (
	ErrNotFound         = errors.New("skeleton: not found")
	ErrInvalidHierarchy = errors.New("skeleton: invalid bone hierarchy")
)
