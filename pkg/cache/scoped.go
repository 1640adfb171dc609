package cache

// ScopedKeyer wraps a Keyer with a prefix. The CLI and server scope keys by
// solver version so that results cached by an older release are never
// reused:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "v1.4.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResultKey generates a prefixed key for a resolved surface.
func (k *ScopedKeyer) ResultKey(surfaceHash string) string {
	return k.prefix + k.inner.ResultKey(surfaceHash)
}
