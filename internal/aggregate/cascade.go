package aggregate

import (
	"errors"
	"fmt"

	"github.com/fablepress/fablepress-server/internal/store"
)

// patchIfExists applies mutate to a document, treating a missing document as
// "nothing to update". Cascades routinely reference documents deleted
// earlier in the same transaction; skipping the patch instead of failing is
// the referential-gap policy, not an error path.
func patchIfExists[T any](tx *store.Tx, tbl *store.Table[T], id string, mutate func(*T)) error {
	if id == "" {
		return nil
	}
	_, err := store.Update(tx, tbl, id, mutate)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("patch %s %s: %w", tbl.Name(), id, err)
	}
	return nil
}

// deleteAll removes every row matching a non-unique index key. Each delete
// queues that table's own delete change, so the cascade continues through
// the dispatcher depth-first.
func deleteAll[T any](tx *store.Tx, tbl *store.Table[T], index, key string) error {
	ids, err := store.ScanIndexIDs(tx, tbl, index, key)
	if err != nil {
		return fmt.Errorf("scan %s by %s: %w", tbl.Name(), index, err)
	}
	for _, id := range ids {
		if err := store.Delete(tx, tbl, id); err != nil {
			return fmt.Errorf("cascade delete %s %s: %w", tbl.Name(), id, err)
		}
	}
	return nil
}
