package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrPersistence  = errors.New("error de persistencia")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// ErrStaleState indica que otra transacción modificó las filas que esta
	// transacción pretendía escribir. Es reintentable.
	ErrStaleState = errors.New("estado modificado por otra transacción")
)

// Error describe una falla de dominio indicando qué entidad y campo la causaron.
// Kind es uno de los sentinelas de arriba; errors.Is funciona sobre Kind y sobre Err.
type Error struct {
	Kind   error
	Entity string
	Field  string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Entity != "" {
		b.WriteString(": ")
		b.WriteString(e.Entity)
		if e.Field != "" {
			b.WriteString(".")
			b.WriteString(e.Field)
		}
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation construye un error de validación (400).
func Validation(entity, field, format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidInput, Entity: entity, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// NotFound construye un error de recurso inexistente (404).
func NotFound(entity, field, format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Entity: entity, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Conflict construye un error de conflicto con el estado actual (409).
func Conflict(entity, field, format string, args ...any) *Error {
	return &Error{Kind: ErrConflict, Entity: entity, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// StaleConflict es un Conflict reintentable: la fila cambió bajo nuestros pies.
func StaleConflict(entity, field, format string, args ...any) *Error {
	e := Conflict(entity, field, format, args...)
	e.Err = ErrStaleState
	return e
}

// Persistence envuelve una falla del motor de almacenamiento (500).
func Persistence(entity string, err error) *Error {
	return &Error{Kind: ErrPersistence, Entity: entity, Err: err}
}

// AsError extrae el *Error de dominio de una cadena de errores, si existe.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
