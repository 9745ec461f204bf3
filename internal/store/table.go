package store

// Table describes one document table: its name plus the secondary indexes
// maintained alongside every write. Descriptors are declared once in
// tables.go and shared by all transactions.
type Table[T any] struct {
	name    string
	indexes []indexDef[T]
}

// indexDef defines a secondary index on a table.
//
// A unique index stores one key per document with the document id as the
// value; inserting a second document with the same key fails the
// transaction. A non-unique index stores key-only entries with the document
// id as the final key segment, supporting prefix scans.
type indexDef[T any] struct {
	name      string
	unique    bool
	keys      func(*T) []string
	transform func(string) string // Optional transformation for lookups
}

// NewTable creates a table descriptor for type T.
func NewTable[T any](name string) *Table[T] {
	return &Table[T]{
		name:    name,
		indexes: make([]indexDef[T], 0),
	}
}

// Name returns the table name used for keys and handler dispatch.
func (t *Table[T]) Name() string {
	return t.name
}

// WithIndex adds a non-unique secondary index. keys may return zero or more
// index keys for a document; empty keys are skipped.
func (t *Table[T]) WithIndex(name string, keys func(*T) []string) *Table[T] {
	t.indexes = append(t.indexes, indexDef[T]{
		name: name,
		keys: keys,
	})
	return t
}

// WithUniqueIndex adds a unique secondary index with a single key per
// document.
func (t *Table[T]) WithUniqueIndex(name string, key func(*T) string) *Table[T] {
	t.indexes = append(t.indexes, indexDef[T]{
		name:   name,
		unique: true,
		keys:   func(doc *T) []string { return []string{key(doc)} },
	})
	return t
}

// WithUniqueIndexTransform adds a unique index whose lookup values pass
// through transform first, enabling case-insensitive or normalized lookups.
// The key function is expected to apply the same transformation.
func (t *Table[T]) WithUniqueIndexTransform(name string, key func(*T) string, transform func(string) string) *Table[T] {
	t.indexes = append(t.indexes, indexDef[T]{
		name:      name,
		unique:    true,
		keys:      func(doc *T) []string { return []string{key(doc)} },
		transform: transform,
	})
	return t
}

// lookupKey applies the named index's transform to a lookup value.
func (t *Table[T]) lookupKey(index, value string) string {
	for _, idx := range t.indexes {
		if idx.name == index && idx.transform != nil {
			return idx.transform(value)
		}
	}
	return value
}
