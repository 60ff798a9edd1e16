package domain

import (
	"errors"
	"fmt"
)

// ErrPersistence casa com qualquer *PersistenceError via errors.Is.
var ErrPersistence = errors.New("persistence failure")

// ErrReservedValue rejeita gravar NotFound como valor: a leitura seguinte não
// teria como distinguir a mensagem de uma ausência.
var ErrReservedValue = errors.New("value is reserved")

// PersistenceError indica que o meio de armazenamento não completou a operação.
type PersistenceError struct {
	Op  string
	ID  uint32
	Err error
}

func NewPersistenceError(op string, id uint32, err error) *PersistenceError {
	return &PersistenceError{Op: op, ID: id, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s message %d: %v", e.Op, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
