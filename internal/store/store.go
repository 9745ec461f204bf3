package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Store wraps a Badger database instance plus the statically composed
// handler pipeline dispatched on every write.
type Store struct {
	db       *badger.DB
	logger   *slog.Logger
	pipeline Pipeline
}

// New opens the database at path. The pipeline is fixed for the lifetime of
// the store; pass an empty Pipeline for raw storage without handlers.
func New(path string, logger *slog.Logger, pipeline Pipeline) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if pipeline == nil {
		pipeline = Pipeline{}
	}

	store := &Store{
		db:       db,
		logger:   logger,
		pipeline: pipeline,
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Mutate runs fn inside one serializable transaction. Writes made through
// the Tx queue changes; after fn returns, the dispatcher drains the queue so
// every handler and cascade completes before commit. Any error from fn, a
// handler, or the store aborts the transaction with no partial effect.
func (s *Store) Mutate(ctx context.Context, fn func(*Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		tx := &Tx{txn: txn, pipeline: s.pipeline}
		if err := fn(tx); err != nil {
			return err
		}
		return tx.drain()
	})
}

// View runs fn inside a read-only transaction. Writes through the Tx fail
// with ErrReadOnly.
func (s *Store) View(ctx context.Context, fn func(*Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.View(func(txn *badger.Txn) error {
		tx := &Tx{txn: txn, pipeline: s.pipeline, readonly: true}
		return fn(tx)
	})
}
