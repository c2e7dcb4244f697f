package rbac

import "errors"

// Domain errors for RBAC operations.
var (
	// ErrInvalidRole is returned when a matrix references a non-canonical role.
	ErrInvalidRole = errors.New("rbac.invalid_role")

	// ErrCircularInheritance is returned when roles have circular inheritance.
	ErrCircularInheritance = errors.New("rbac.circular_inheritance")

	// ErrInvalidMatrix is returned when a matrix definition cannot be decoded.
	ErrInvalidMatrix = errors.New("rbac.invalid_matrix")
)
