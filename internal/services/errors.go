package services

import (
	"errors"

	"furniture_back_end/internal/apperr"
	"furniture_back_end/internal/store"
)

// storeErr traduit une erreur de magasin : ErrNotFound devient NotFound(msg),
// le reste une erreur interne avec un message générique.
func storeErr(err error, notFoundMsg, internalMsg string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return apperr.Internal(internalMsg, err)
}
