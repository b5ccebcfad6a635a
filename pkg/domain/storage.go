package domain

// StorageAdapter reads and writes the two artifacts of a named collection.
// Read methods return ErrArtifactNotFound when nothing has been written yet.
type StorageAdapter interface {
	ReadData(name string) (map[string]Record, error)
	WriteData(name string, data map[string]Record) error
	ReadMeta(name string) (*Meta, error)
	WriteMeta(name string, meta *Meta) error
}

// CachingAdapter is implemented by adapters whose storage is the process
// memory itself. A collection bound to an adapter reporting Cached() == true
// keeps its records and indexes as long-lived state instead of reloading them
// on every call.
type CachingAdapter interface {
	StorageAdapter
	Cached() bool
}

// IsCached reports whether the adapter keeps its state in process memory.
func IsCached(a StorageAdapter) bool {
	c, ok := a.(CachingAdapter)
	return ok && c.Cached()
}
