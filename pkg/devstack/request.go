package devstack

// RequestKind selects which query a Request performs.
type RequestKind uint8

const (
	// KindQueryRelations asks the stack for device objects related to the
	// target. The result arrives in Request.Relations.
	KindQueryRelations RequestKind = iota

	// KindQueryProperty reads a device property into Request.Buffer using
	// the two-phase size/fetch protocol.
	KindQueryProperty

	// KindDeviceControl performs a control exchange selected by
	// Request.Control, with Request.Payload as the in/out block.
	KindDeviceControl
)

// RelationKind selects which set of related device objects to query.
type RelationKind uint8

const (
	// RelationBus enumerates the child devices on a bus.
	RelationBus RelationKind = iota

	// RelationEjection enumerates devices affected by ejecting the target.
	RelationEjection

	// RelationRemoval enumerates devices affected by removing the target.
	RelationRemoval

	// RelationTargetDevice resolves the physical device object backing the
	// target. On success the stack guarantees at least one entry, and the
	// first entry is the physical representative.
	RelationTargetDevice
)

// PropertyID selects which device property to query.
type PropertyID uint8

const (
	// PropertyDeviceDescription is the human-readable device description.
	PropertyDeviceDescription PropertyID = iota

	// PropertyHardwareID is the device's hardware identifier string.
	PropertyHardwareID

	// PropertyLocationInformation is the topology location text of the form
	// "...Port_#<digits>.Hub_#<digits>...".
	PropertyLocationInformation
)

// ControlCode selects a device-control exchange and with it the concrete
// type of Request.Payload.
type ControlCode uint32

const (
	// ControlGetNodeInformation queries a parent node's downstream capacity.
	// Payload: *NodeInformation.
	ControlGetNodeInformation ControlCode = iota + 1

	// ControlGetNodeConnectionInformation queries one port's connection
	// snapshot. Payload: *ConnectionInfo with ConnectionIndex set.
	ControlGetNodeConnectionInformation
)

// Relations is the result of a relations query. Every entry arrives with
// one reference held on behalf of the recipient; the recipient owns exactly
// one Dereference per entry.
type Relations struct {
	Objects []Handle
}

// Request is a single-shot device-stack request. Construct one with a
// NewXxx function, submit it once, and never reuse it: the completion
// channel is private to the one submission.
type Request struct {
	Kind RequestKind

	// Relation selects the set for KindQueryRelations; Relations receives
	// the result on success.
	Relation  RelationKind
	Relations *Relations

	// Property and Buffer drive KindQueryProperty. A zero-length Buffer
	// probes for the required size, which the stack reports in Required
	// together with StatusBufferTooSmall.
	Property PropertyID
	Buffer   []byte
	Required uint32

	// Control and Payload drive KindDeviceControl. The payload type is
	// dictated by the control code and is filled in place by the stack.
	Control ControlCode
	Payload any

	done   chan struct{}
	status Status
}

// NewRelationsQuery builds a relations query request.
func NewRelationsQuery(kind RelationKind) *Request {
	return &Request{
		Kind:     KindQueryRelations,
		Relation: kind,
		done:     make(chan struct{}),
	}
}

// NewPropertyQuery builds a property query request. Pass a nil or empty
// buffer to probe for the required size.
func NewPropertyQuery(prop PropertyID, buf []byte) *Request {
	return &Request{
		Kind:     KindQueryProperty,
		Property: prop,
		Buffer:   buf,
		done:     make(chan struct{}),
	}
}

// NewDeviceControl builds a device-control request. The payload is the
// in/out block for the exchange and must match the control code.
func NewDeviceControl(code ControlCode, payload any) *Request {
	return &Request{
		Kind:    KindDeviceControl,
		Control: code,
		Payload: payload,
		done:    make(chan struct{}),
	}
}

// Done returns the completion channel. It is closed exactly once, after the
// final status and all result fields are in place.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Complete records the final status and signals completion. A stack calls
// it exactly once, and only for requests whose Submit returned
// StatusPending.
func (r *Request) Complete(status Status) {
	r.status = status
	close(r.done)
}

// Status returns the final status. Valid only after Done is signaled.
func (r *Request) Status() Status {
	return r.status
}
