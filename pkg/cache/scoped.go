package cache

// ScopedKeyer prefixes every key of an inner [Keyer], giving tenants or
// deployments separate namespaces inside one shared backend:
//
//	keyer := cache.NewScopedKeyer(nil, "lab:flywire:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, which defaults to [DefaultKeyer] when nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ReportKey implements [Keyer].
func (k *ScopedKeyer) ReportKey(skeletonHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(skeletonHash, opts)
}

// RenderKey implements [Keyer].
func (k *ScopedKeyer) RenderKey(skeletonHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(skeletonHash, opts)
}
