// Package devstack defines the device-stack abstraction the topology
// resolution layer is built against.
//
// The operating system exposes a USB device as a dynamically-changing stack
// of cooperating device objects. This package models the narrow slice of
// that surface the resolver needs:
//
//   - Handle: an opaque, reference-counted device object that accepts
//     requests (Submit) and tracks ownership (Reference/Dereference).
//   - Request: a single-shot request with a private completion signal.
//     A submission either completes synchronously (Submit returns the final
//     status) or reports StatusPending and completes later via Complete.
//   - Three request kinds: relations queries, property queries with a
//     two-phase size/fetch protocol, and device-control exchanges carrying
//     a typed payload selected by the control code.
//
// # Ownership
//
// Handles returned inside a Relations result arrive with one reference held
// on behalf of the recipient, which must issue exactly one Dereference per
// entry. OwnedHandle wraps such a handle so every exit path of a caller
// releases it exactly once.
//
// # Concurrency
//
// A Request must not be reused. Each carries its own completion channel, so
// any number of requests may be in flight against the same or different
// handles from multiple goroutines without interfering.
package devstack
