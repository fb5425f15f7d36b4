package cache

// Keyer builds cache keys for each entry type.
type Keyer interface {
	// MetricsKey identifies the measured dimensions of one image source.
	MetricsKey(src string) string

	// LayoutKey identifies one layout computation.
	LayoutKey(opts LayoutKeyOpts) string
}

// LayoutKeyOpts holds everything a layout result depends on.
type LayoutKeyOpts struct {
	Strategy string  `json:"strategy"`
	Width    float64 `json:"width"`

	// Params is the effective parameter record, any JSON-encodable value.
	Params any `json:"params"`

	// ItemsHash is Hash of the encoded item list.
	ItemsHash string `json:"items_hash"`
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MetricsKey implements Keyer.
func (DefaultKeyer) MetricsKey(src string) string {
	return hashKey("metrics", src)
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return hashKey("layout", opts)
}

// ScopedKeyer prefixes every key of an inner Keyer, so several deployments
// can share one backend without colliding.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// MetricsKey implements Keyer.
func (k *ScopedKeyer) MetricsKey(src string) string {
	return k.prefix + k.inner.MetricsKey(src)
}

// LayoutKey implements Keyer.
func (k *ScopedKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(opts)
}
