package cache

// Cache stores small lookup results that are expensive to refetch:
// token metadata, contract ABIs and sources, mined transactions.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a cached value by key
	// Returns the value and true if found and not expired
	Get(key string) ([]byte, bool)

	// Set stores a value with the default TTL
	Set(key string, value []byte)

	// SetImmutable stores a value that never goes stale (mined
	// transactions, verified contract sources). It still competes for
	// LRU space.
	SetImmutable(key string, value []byte)

	// Stats returns hit/miss counters since startup
	Stats() Stats

	// Close releases any resources held by the cache
	Close()
}

// Stats holds cache effectiveness counters
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Size   int    `json:"size"`
}
