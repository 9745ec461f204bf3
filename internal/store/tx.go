package store

import "github.com/dgraph-io/badger/v4"

// Op identifies the kind of write a change records.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change records one intercepted write. Old is set for update/delete, New
// for insert/update; both are *T for the table's document type.
type Change struct {
	Op    Op
	Table string
	ID    string
	Old   any
	New   any
}

// Handler reacts to a change within the same transaction. Handler writes go
// through the same Tx and are dispatched in turn. A handler error aborts the
// whole transaction; Badger discards every write made so far.
type Handler func(*Tx, Change) error

// Pipeline maps a table name to its ordered handlers. It is composed
// statically at startup and never mutated afterwards; handlers for a table
// run in declaration order.
type Pipeline map[string][]Handler

// maxChangesPerMutation caps how many changes one top-level mutation may
// dispatch before the transaction is aborted with ErrTooManyChanges.
const maxChangesPerMutation = 10000

// Tx is a transaction-scoped dispatcher. All reads and writes inside one
// top-level mutation flow through a single Tx: writes apply immediately to
// the underlying Badger transaction and queue a Change, and the dispatcher
// drains the queue depth-first before the mutation commits.
type Tx struct {
	txn      *badger.Txn
	pipeline Pipeline
	readonly bool

	staged    []Change
	processed int
}

// stage queues a change for dispatch.
func (tx *Tx) stage(ch Change) {
	tx.staged = append(tx.staged, ch)
}

// drain dispatches queued changes until none remain.
//
// Each change runs all of its table's handlers in order; changes those
// handlers produce are spliced in front of the remaining queue, so a cascade
// is processed depth-first: a deleted chapter's comments are handled before
// the book's next chapter. The explicit worklist keeps cascade order
// auditable and stack depth flat regardless of cascade size.
func (tx *Tx) drain() error {
	queue := tx.staged
	tx.staged = nil

	for len(queue) > 0 {
		ch := queue[0]
		queue = queue[1:]

		tx.processed++
		if tx.processed > maxChangesPerMutation {
			return ErrTooManyChanges
		}

		for _, handler := range tx.pipeline[ch.Table] {
			if err := handler(tx, ch); err != nil {
				return err
			}
		}

		if len(tx.staged) > 0 {
			queue = append(tx.staged, queue...)
			tx.staged = nil
		}
	}

	return nil
}
