// Package apperr définit la taxonomie d'erreurs du cœur commandes/stock et
// sa correspondance HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindOutOfStock
	KindUnauthorized
	KindForbidden
)

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindOutOfStock:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// FieldError détaille une erreur de validation sur un champ.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error : Message est toujours affichable côté client, Err reste interne.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func OutOfStock(msg string) *Error {
	return &Error{Kind: KindOutOfStock, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// Internal enveloppe une panne de stockage derrière un message générique.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// As extrait l'*Error d'une chaîne ; toute autre erreur devient interne.
func As(err error, fallback string) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(fallback, err)
}

func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
