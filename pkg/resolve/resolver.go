package resolve

import (
	"time"

	"github.com/google/uuid"

	"github.com/usbtap/usbtap-go/pkg/devstack"
	"github.com/usbtap/usbtap-go/pkg/trace"
)

// ResolvedAddress is the bus address a hub assigned to a device. It is
// meaningful only together with the (hub, port) pair it was obtained from.
type ResolvedAddress struct {
	Address uint16
}

// Resolver performs device topology resolution against the device stack.
// The zero value is not usable; construct with New. A Resolver holds no
// state between calls and is safe for concurrent use.
type Resolver struct {
	log trace.Logger
}

// New creates a Resolver. A nil logger disables tracing.
func New(log trace.Logger) *Resolver {
	if log == nil {
		log = trace.NoopLogger{}
	}
	return &Resolver{log: log}
}

// ResolveAddress maps device, an arbitrary object in the capture target's
// stack, to the bus address assigned by hub. It locates the device's
// physical object, parses its upstream port from the location text, and
// reads that port's connection snapshot from the hub. The first failing
// step ends the resolution; the physical object reference acquired along
// the way is released on every path.
func (r *Resolver) ResolveAddress(hub, device devstack.Handle) (ResolvedAddress, error) {
	rid := uuid.NewString()

	physical, err := r.physicalParent(rid, device)
	if err != nil {
		r.traceResolve(rid, &trace.ResolveEvent{Err: err.Error()})
		return ResolvedAddress{}, err
	}

	port, err := r.devicePort(rid, physical)
	// The physical object has served its purpose once the port is known
	// (or the parse failed); drop the reference before anything else.
	physical.Release()
	if err != nil {
		r.traceResolve(rid, &trace.ResolveEvent{Err: err.Error()})
		return ResolvedAddress{}, err
	}

	info, err := r.portInfo(rid, hub, port)
	if err != nil {
		r.traceResolve(rid, &trace.ResolveEvent{Port: port, Err: err.Error()})
		return ResolvedAddress{}, err
	}

	r.traceResolve(rid, &trace.ResolveEvent{Port: port, Address: info.DeviceAddress})
	return ResolvedAddress{Address: info.DeviceAddress}, nil
}

// Children takes a connection snapshot of every downstream position on hub.
// Ports that fail to answer are skipped; the returned slice holds the ports
// that did answer, in index order. A failure to determine the port count is
// returned as an error.
func (r *Resolver) Children(hub devstack.Handle) ([]devstack.ConnectionInfo, error) {
	count, err := r.PortCount(hub)
	if err != nil {
		return nil, err
	}

	infos := make([]devstack.ConnectionInfo, 0, count.Count)
	for port := uint32(1); port <= count.Count; port++ {
		info, err := r.portInfo("", hub, port)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// traceQuery records one request/response exchange.
func (r *Resolver) traceQuery(rid, op string, status devstack.Status) {
	r.log.Log(trace.Event{
		Timestamp:    time.Now(),
		ResolutionID: rid,
		Category:     trace.CategoryQuery,
		Query:        &trace.QueryEvent{Op: op, Status: uint32(status)},
	})
}

// traceParse records a location-text parse.
func (r *Resolver) traceParse(rid string, parse *trace.ParseEvent) {
	r.log.Log(trace.Event{
		Timestamp:    time.Now(),
		ResolutionID: rid,
		Category:     trace.CategoryParse,
		Parse:        parse,
	})
}

// tracePort records a per-port connection snapshot.
func (r *Resolver) tracePort(rid string, info devstack.ConnectionInfo) {
	r.log.Log(trace.Event{
		Timestamp:    time.Now(),
		ResolutionID: rid,
		Category:     trace.CategoryPort,
		Port: &trace.PortEvent{
			Index:      info.ConnectionIndex,
			IsHub:      info.DeviceIsHub,
			Address:    info.DeviceAddress,
			Connection: uint8(info.ConnectionStatus),
		},
	})
}

// traceResolve records a resolution outcome.
func (r *Resolver) traceResolve(rid string, res *trace.ResolveEvent) {
	r.log.Log(trace.Event{
		Timestamp:    time.Now(),
		ResolutionID: rid,
		Category:     trace.CategoryResolve,
		Resolve:      res,
	})
}
