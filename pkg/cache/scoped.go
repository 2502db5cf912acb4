package cache

// ScopedKeyer wraps a Keyer with a prefix so several tenants can share one
// backend. The HTTP server scopes keys by material name:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "material:Metal:")
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

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(docHash, opts)
}

// PlanKey generates a prefixed plan key.
func (k *ScopedKeyer) PlanKey(docHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(docHash, opts)
}
