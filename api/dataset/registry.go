package dataset

import "sync"

// Handle is a binding to one physical dataset partition.
type Handle struct {
	Family Family
	Suffix string
	Name   string
}

// QuotedName returns the dataset name quoted for use in SQL. Partition names
// contain dots, so they must always be backtick-quoted.
func (h *Handle) QuotedName() string {
	return "`" + h.Name + "`"
}

// Registry caches dataset handles keyed by (family, suffix) for the process
// lifetime. Binding is idempotent: concurrent first requests for the same key
// may both construct a handle, but exactly one binding survives and every
// caller observes it.
type Registry struct {
	handles sync.Map // "family:suffix" -> *Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Get returns the handle bound to (family, suffix), constructing and caching
// it on first request.
func (r *Registry) Get(family Family, suffix string) *Handle {
	key := string(family) + ":" + suffix
	if h, ok := r.handles.Load(key); ok {
		return h.(*Handle)
	}
	h := &Handle{
		Family: family,
		Suffix: suffix,
		Name:   family.Prefix() + "." + suffix,
	}
	actual, _ := r.handles.LoadOrStore(key, h)
	return actual.(*Handle)
}

// defaultRegistry is the process-wide handle cache.
var defaultRegistry = NewRegistry()

// Get returns a handle from the process-wide registry.
func Get(family Family, suffix string) *Handle {
	return defaultRegistry.Get(family, suffix)
}
