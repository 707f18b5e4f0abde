// Package resolve maps a device object somewhere in the OS device stack to
// the bus address its parent hub currently assigns to it.
//
// The externally meaningful entry point is Resolver.ResolveAddress, which
// composes four building blocks that are also exported for independent use:
//
//   - Dispatch sends one request down a device stack and blocks until it
//     completes, handling both synchronous and deferred completion.
//   - Resolver.PhysicalParent asks the target's stack for its physical
//     (bottom-most, stable) device object.
//   - Resolver.DevicePort reads and parses the physical object's topology
//     location text to find its upstream port number.
//   - Resolver.PortCount and Resolver.PortInfo query a hub (or composite
//     parent) for its downstream capacity and per-port connection snapshot.
//
// Every resolution is a fresh traversal of the live topology; nothing is
// cached between calls. All operations block the calling goroutine for as
// long as the stack takes, with no timeout, so they must only be invoked
// from contexts where blocking is acceptable.
//
// # Errors
//
// Stack-reported failures surface as *StatusError carrying the opaque
// completion status. Contract violations by the stack itself (success with
// an empty relation set, a size probe that claims success) wrap
// ErrProtocolViolation. Malformed location text wraps the location
// package's parse errors. Nothing is retried at this layer.
package resolve
