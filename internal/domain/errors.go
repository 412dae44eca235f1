package domain

import (
	"errors"
	"fmt"
)

var (
	ErrIncompleteInput = errors.New("incomplete input")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrStorage         = errors.New("storage failure")

	// ErrConflict marca una precondicion de negocio violada (ej. sujeto ya puntuado).
	ErrConflict = fmt.Errorf("%w: already exists", ErrValidation)
)

// IncompleteInputError indica que un rasgo no pudo calcularse.
type IncompleteInputError struct {
	Trait TraitCategory
	Got   int
}

func (e *IncompleteInputError) Error() string {
	return fmt.Sprintf("%s score could not be calculated due to invalid scores list.", e.Trait.Label())
}

func (e *IncompleteInputError) Is(target error) bool { return target == ErrIncompleteInput }

// NotFoundError indica que el registro referenciado no existe.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError indica datos de entrada invalidos.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError indica que el registro ya existe para ese dueño.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return e.Resource + " already exists"
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict || target == ErrValidation
}

// StorageError envuelve una falla de persistencia; la operacion no ocurrio.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func (e *StorageError) Unwrap() error { return e.Err }
