package lazy

// Default thrash-detection thresholds. A cache that keeps getting flushed
// without covering enough input per state is doing more determinization work
// than a simpler engine would, so the DFA gives up instead.
const (
	// DefaultMaxCacheClears is the number of cache flushes tolerated before
	// thrash detection kicks in.
	DefaultMaxCacheClears = 3

	// DefaultMinBytesPerState is the minimum number of input bytes each
	// cached state must have covered, on average, since the previous flush
	// for the cache to be considered productive.
	DefaultMinBytesPerState = 10
)

// Config controls when a cache declares itself thrashing and quits.
type Config struct {
	// MaxCacheClears is the flush count at which thrash detection starts.
	MaxCacheClears uint64

	// MinBytesPerState is the minimum average input coverage per cached
	// state required to keep going after MaxCacheClears flushes.
	MinBytesPerState int
}

// DefaultConfig returns the default thrash-detection thresholds.
func DefaultConfig() Config {
	return Config{
		MaxCacheClears:   DefaultMaxCacheClears,
		MinBytesPerState: DefaultMinBytesPerState,
	}
}

// WithMaxCacheClears returns a copy of the config with MaxCacheClears set.
func (c Config) WithMaxCacheClears(n uint64) Config {
	c.MaxCacheClears = n
	return c
}

// WithMinBytesPerState returns a copy of the config with MinBytesPerState
// set.
func (c Config) WithMinBytesPerState(n int) Config {
	c.MinBytesPerState = n
	return c
}

// sanitize replaces out-of-range values with defaults.
func (c Config) sanitize() Config {
	if c.MinBytesPerState < 0 {
		c.MinBytesPerState = DefaultMinBytesPerState
	}
	return c
}
