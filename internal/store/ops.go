package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Typed table operations. Go methods cannot carry type parameters, so these
// are package-level functions taking the Tx and a table descriptor.

// Get retrieves a document by id.
// Returns ErrNotFound if the document does not exist.
func Get[T any](tx *Tx, tbl *Table[T], id string) (*T, error) {
	item, err := tx.txn.Get(primaryKey(tbl.name, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var doc T
	err = item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, &doc); err != nil {
			return fmt.Errorf("failed to unmarshal document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// GetByIndex retrieves a document through a unique index. The index's lookup
// transform, if any, is applied to value first.
func GetByIndex[T any](tx *Tx, tbl *Table[T], index, value string) (*T, error) {
	item, err := tx.txn.Get(uniqueIndexKey(tbl.name, index, tbl.lookupKey(index, value)))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get index key: %w", err)
	}

	var id string
	err = item.Value(func(val []byte) error {
		id = string(val)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return Get(tx, tbl, id)
}

// Insert creates a new document with the given id, maintains its indexes,
// and queues an insert change for dispatch.
// Returns ErrAlreadyExists on id or unique-index conflict.
func Insert[T any](tx *Tx, tbl *Table[T], id string, doc *T) error {
	if tx.readonly {
		return ErrReadOnly
	}

	key := primaryKey(tbl.name, id)
	_, err := tx.txn.Get(key)
	if err == nil {
		return ErrAlreadyExists
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("failed to check existing key: %w", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	// Check unique index conflicts before writing anything
	for _, idx := range tbl.indexes {
		if !idx.unique {
			continue
		}
		for _, k := range idx.keys(doc) {
			if k == "" {
				continue
			}
			_, err := tx.txn.Get(uniqueIndexKey(tbl.name, idx.name, k))
			if err == nil {
				return fmt.Errorf("index %s conflict on key %s: %w", idx.name, k, ErrAlreadyExists)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}

	if err := tx.txn.Set(key, data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	if err := setIndexEntries(tx, tbl, id, doc); err != nil {
		return err
	}

	tx.stage(Change{Op: OpInsert, Table: tbl.name, ID: id, New: doc})
	return nil
}

// Update loads the document, applies mutate, rewrites it and its indexes,
// and queues an update change carrying both the old and new versions.
// Returns ErrNotFound if the document does not exist.
func Update[T any](tx *Tx, tbl *Table[T], id string, mutate func(*T)) (*T, error) {
	if tx.readonly {
		return nil, ErrReadOnly
	}

	old, err := Get(tx, tbl, id)
	if err != nil {
		return nil, err
	}

	updated := *old
	mutate(&updated)

	data, err := json.Marshal(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	// Reconcile index entries: drop stale keys, check conflicts on new ones
	for _, idx := range tbl.indexes {
		oldKeys := idx.keys(old)
		newKeys := idx.keys(&updated)

		oldSet := make(map[string]bool, len(oldKeys))
		for _, k := range oldKeys {
			oldSet[k] = true
		}
		newSet := make(map[string]bool, len(newKeys))
		for _, k := range newKeys {
			newSet[k] = true
		}

		for _, k := range oldKeys {
			if k == "" || newSet[k] {
				continue
			}
			if err := tx.txn.Delete(indexEntryKey(tbl.name, idx, k, id)); err != nil {
				return nil, fmt.Errorf("failed to delete old index key: %w", err)
			}
		}

		for _, k := range newKeys {
			if k == "" || oldSet[k] {
				continue
			}
			if idx.unique {
				_, err := tx.txn.Get(uniqueIndexKey(tbl.name, idx.name, k))
				if err == nil {
					return nil, fmt.Errorf("index %s conflict on key %s: %w", idx.name, k, ErrAlreadyExists)
				}
				if !errors.Is(err, badger.ErrKeyNotFound) {
					return nil, fmt.Errorf("failed to check index key: %w", err)
				}
			}
			if err := setIndexEntry(tx, tbl.name, idx, k, id); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.txn.Set(primaryKey(tbl.name, id), data); err != nil {
		return nil, fmt.Errorf("failed to set key: %w", err)
	}

	tx.stage(Change{Op: OpUpdate, Table: tbl.name, ID: id, Old: old, New: &updated})
	return &updated, nil
}

// Delete removes a document and its index entries, queuing a delete change.
// Deleting a missing document is a no-op; no change is dispatched.
func Delete[T any](tx *Tx, tbl *Table[T], id string) error {
	if tx.readonly {
		return ErrReadOnly
	}

	old, err := Get(tx, tbl, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, idx := range tbl.indexes {
		for _, k := range idx.keys(old) {
			if k == "" {
				continue
			}
			if err := tx.txn.Delete(indexEntryKey(tbl.name, idx, k, id)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}

	if err := tx.txn.Delete(primaryKey(tbl.name, id)); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	tx.stage(Change{Op: OpDelete, Table: tbl.name, ID: id, Old: old})
	return nil
}

// ScanIndexIDs returns the ids of all documents whose non-unique index entry
// starts with key, in key order.
func ScanIndexIDs[T any](tx *Tx, tbl *Table[T], index, key string) ([]string, error) {
	prefix := indexScanPrefix(tbl.name, index, key)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false // Key-only index, no values to fetch
	opts.Prefix = prefix

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		ids = append(ids, idFromIndexKey(it.Item().Key()))
	}
	return ids, nil
}

// ScanIndex returns all documents matching a non-unique index key.
func ScanIndex[T any](tx *Tx, tbl *Table[T], index, key string) ([]*T, error) {
	ids, err := ScanIndexIDs(tx, tbl, index, key)
	if err != nil {
		return nil, err
	}

	docs := make([]*T, 0, len(ids))
	for _, id := range ids {
		doc, err := Get(tx, tbl, id)
		if err != nil {
			return nil, fmt.Errorf("index %s entry %s: %w", index, id, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// List returns every document in the table. Intended for small tables and
// full-scan verification; feeds use the time indexes instead.
func List[T any](tx *Tx, tbl *Table[T]) ([]*T, error) {
	prefix := primaryScanPrefix(tbl.name)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = true

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	var docs []*T
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if isIndexKey(tbl.name, it.Item().Key()) {
			continue
		}

		var doc T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
		if err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

// setIndexEntries writes every index entry for a document.
func setIndexEntries[T any](tx *Tx, tbl *Table[T], id string, doc *T) error {
	for _, idx := range tbl.indexes {
		for _, k := range idx.keys(doc) {
			if k == "" {
				continue
			}
			if err := setIndexEntry(tx, tbl.name, idx, k, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func setIndexEntry[T any](tx *Tx, table string, idx indexDef[T], key, id string) error {
	if idx.unique {
		if err := tx.txn.Set(uniqueIndexKey(table, idx.name, key), []byte(id)); err != nil {
			return fmt.Errorf("failed to set index key: %w", err)
		}
		return nil
	}
	if err := tx.txn.Set(scanIndexKey(table, idx.name, key, id), []byte{}); err != nil {
		return fmt.Errorf("failed to set index key: %w", err)
	}
	return nil
}

func indexEntryKey[T any](table string, idx indexDef[T], key, id string) []byte {
	if idx.unique {
		return uniqueIndexKey(table, idx.name, key)
	}
	return scanIndexKey(table, idx.name, key, id)
}
