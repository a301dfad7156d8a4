package interfaces

// Repository aggregates the persistence interfaces. Both the Firestore
// and in-memory backends implement it.
type Repository interface {
	Memory() MemoryRepository

	// Close releases backend resources
	Close() error
}
