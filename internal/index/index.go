package index

// MetadataIndex defines the interface for native metadata index operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type MetadataIndex interface {
	UpsertDocument(row DocumentRow) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	Lookup(path string) (Metadata, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies MetadataIndex at compile time.
var _ MetadataIndex = (*DB)(nil)
