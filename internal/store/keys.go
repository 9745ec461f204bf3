package store

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Key layout:
//
//	{table}:{id}                          primary document (JSON value)
//	{table}:idx:{index}:{key}             unique index (value = document id)
//	{table}:idx:{index}:{key}:{id}        non-unique index (key-only)
//
// Badger retains key slices until the transaction commits, and every
// cascading change shares one transaction, so keys are built as plain
// strings rather than pooled buffers.

func primaryKey(table, id string) []byte {
	return []byte(table + ":" + id)
}

func uniqueIndexKey(table, index, key string) []byte {
	return []byte(table + ":idx:" + index + ":" + key)
}

func scanIndexKey(table, index, key, id string) []byte {
	return []byte(table + ":idx:" + index + ":" + key + ":" + id)
}

func indexScanPrefix(table, index, key string) []byte {
	return []byte(table + ":idx:" + index + ":" + key + ":")
}

func primaryScanPrefix(table string) []byte {
	return []byte(table + ":")
}

// idFromIndexKey extracts the document id from a non-unique index key.
// Document ids never contain ':', so the id is everything after the last
// separator.
func idFromIndexKey(key []byte) string {
	s := string(key)
	return s[strings.LastIndexByte(s, ':')+1:]
}

// isIndexKey reports whether a key under the table's primary prefix belongs
// to an index rather than a document.
func isIndexKey(table string, key []byte) bool {
	return strings.HasPrefix(string(key), table+":idx:")
}

// InvertedTimestamp returns a fixed-width string that sorts in descending
// time order. Newest entries come first during forward iteration, which is
// how the activity feed index stays scan-friendly.
func InvertedTimestamp(t time.Time) string {
	inverted := math.MaxInt64 - t.UnixNano()
	return fmt.Sprintf("%019d", inverted)
}
