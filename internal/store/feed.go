package store

import (
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fablepress/fablepress-server/internal/domain"
)

// ActivityFeedIDs scans a time-ordered activity index newest first.
//
// index is "time" for the global feed or "author" for one author's feed
// (key = author id; empty for the time index). Pass the CreatedAt of the
// last item from the previous page as before for cursor pagination; entries
// at exactly the cursor timestamp are excluded.
func ActivityFeedIDs(tx *Tx, index, key string, limit int, before *time.Time) ([]string, error) {
	prefix := []byte(Activities.Name() + ":idx:" + index + ":")
	if key != "" {
		prefix = append(prefix, key+":"...)
	}

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	seek := prefix
	cursor := ""
	if before != nil {
		cursor = InvertedTimestamp(*before)
		seek = append(append([]byte{}, prefix...), cursor...)
	}

	var ids []string
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		rest := string(it.Item().Key()[len(prefix):]) // {inverted_ts}:{id}
		if cursor != "" && strings.HasPrefix(rest, cursor+":") {
			// Entry at the cursor timestamp itself
			continue
		}
		ids = append(ids, idFromIndexKey(it.Item().Key()))
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

// ActivityFeed resolves a feed page into activity documents.
func ActivityFeed(tx *Tx, index, key string, limit int, before *time.Time) ([]*domain.Activity, error) {
	ids, err := ActivityFeedIDs(tx, index, key, limit, before)
	if err != nil {
		return nil, err
	}

	activities := make([]*domain.Activity, 0, len(ids))
	for _, id := range ids {
		a, err := Get(tx, Activities, id)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, nil
}
