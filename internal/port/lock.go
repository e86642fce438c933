package port

// Locker serializes mutations on a logical resource. Keys are opaque
// strings such as "product:P-001"; callers racing on the same key are
// fully serialized, different keys never block each other.
type Locker interface {
	// WithLock runs fn while holding the exclusive lock for key. The lock
	// is released on every exit path, including when fn returns an error.
	WithLock(key string, fn func() error) error

	// WithLocks acquires every key (deduplicated, in sorted order so that
	// concurrent callers cannot deadlock) and runs fn holding all of them.
	WithLocks(keys []string, fn func() error) error
}
