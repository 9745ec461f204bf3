// Package service holds the mutation entry points of the application. Each
// operation performs authorization and validation up front, then issues
// exactly one store mutation; every counter update, activity record, and
// cascade runs inside that same transaction via the aggregate pipeline.
package service

import (
	"errors"

	"github.com/fablepress/fablepress-server/internal/store"
	"github.com/fablepress/fablepress-server/internal/validation"
)

// validate is the shared request validator for the whole package.
var validate = validation.New()

// hasRow reports whether a unique index holds an entry for key.
// Used for likedByMe / followedByMe resolution on reads.
func hasRow[T any](tx *store.Tx, tbl *store.Table[T], index, key string) (bool, error) {
	_, err := store.GetByIndex(tx, tbl, index, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, err
}
