package store

// NewTestStore opens a migrated in-memory database.
// This is only intended for use in tests.
func NewTestStore() (*DB, error) {
	return OpenPath(":memory:")
}
