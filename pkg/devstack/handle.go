package devstack

import "sync/atomic"

// Handle is an opaque reference to one device object in the stack.
// Many handles may alias the same underlying object; equality is by
// identity, not value.
type Handle interface {
	// Submit starts the request on the device stack below this object.
	// StatusPending means the stack will finish the request later through
	// req.Complete; any other return value is the final status and Complete
	// is never called.
	Submit(req *Request) Status

	// Reference takes an additional reference on the underlying object.
	Reference()

	// Dereference drops one reference. The object may be reclaimed once the
	// count reaches its owner's baseline, so the handle must not be used
	// after the last owned reference is dropped.
	Dereference()
}

// OwnedHandle scopes one held reference to a handle. It adopts a reference
// that is already held (for example an entry from a Relations result) and
// guarantees the matching Dereference happens at most once, no matter how
// many paths call Release.
type OwnedHandle struct {
	handle   Handle
	released atomic.Bool
}

// NewOwnedHandle adopts an already-held reference on h.
func NewOwnedHandle(h Handle) *OwnedHandle {
	return &OwnedHandle{handle: h}
}

// Handle returns the wrapped handle. It must not be used after Release.
func (o *OwnedHandle) Handle() Handle {
	return o.handle
}

// Release drops the owned reference. Only the first call dereferences;
// later calls are no-ops, so callers may defer Release and also release
// early on the fast path.
func (o *OwnedHandle) Release() {
	if o.released.CompareAndSwap(false, true) {
		o.handle.Dereference()
	}
}
