package stackemu

import (
	"fmt"
	"sync/atomic"

	"github.com/usbtap/usbtap-go/pkg/devstack"
)

// nodeKind is what a node emulates.
type nodeKind uint8

const (
	kindHub nodeKind = iota
	kindCompositeParent
	kindDevice
)

// Node is one emulated device object. It implements devstack.Handle.
type Node struct {
	stack      *Stack
	name       string
	kind       nodeKind
	hubNumber  uint32
	capacity   uint32 // downstream ports or logical interfaces
	address    uint16
	busPowered bool
	location   string
	parent     *Node
	port       uint32
	children   map[uint32]*Node

	refs atomic.Int64

	// Fault injection, guarded by stack.mu.
	faults         map[devstack.RequestKind]devstack.Status
	emptyRelations bool
	connOverride   map[uint32]devstack.ConnectionStatus
}

// Compile-time interface satisfaction check.
var _ devstack.Handle = (*Node)(nil)

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Address returns the node's assigned bus address.
func (n *Node) Address() uint16 { return n.address }

// Location returns the node's topology location text.
func (n *Node) Location() string { return n.location }

// Parent returns the node this one is attached to, nil for the root hub.
func (n *Node) Parent() *Node { return n.parent }

// Port returns the parent port index this node occupies, 0 for the root hub.
func (n *Node) Port() uint32 { return n.port }

// IsHub reports whether the node emulates a hub.
func (n *Node) IsHub() bool { return n.kind == kindHub }

// Refs returns the number of outstanding references, for leak assertions.
func (n *Node) Refs() int64 { return n.refs.Load() }

// SetBusPowered marks the hub as bus powered.
func (n *Node) SetBusPowered(on bool) { n.busPowered = on }

// AttachHub attaches a child hub at the given port.
func (n *Node) AttachHub(port uint32, name string, ports uint32) *Node {
	return n.attach(port, name, kindHub, ports, "")
}

// AttachCompositeParent attaches a composite device parent at the given port.
func (n *Node) AttachCompositeParent(port uint32, name string, interfaces uint32) *Node {
	return n.attach(port, name, kindCompositeParent, interfaces, "")
}

// AttachDevice attaches a plain device at the given port.
func (n *Node) AttachDevice(port uint32, name string) *Node {
	return n.attach(port, name, kindDevice, 0, "")
}

// AttachDevicePrefixed attaches a plain device whose location text carries
// the given prefix before the Port_#/Hub_# segment.
func (n *Node) AttachDevicePrefixed(port uint32, name, locationPrefix string) *Node {
	return n.attach(port, name, kindDevice, 0, locationPrefix)
}

func (n *Node) attach(port uint32, name string, kind nodeKind, capacity uint32, prefix string) *Node {
	s := n.stack
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.kind == kindDevice {
		panic(fmt.Sprintf("stackemu: cannot attach below device %q", n.name))
	}
	if port == 0 || port > n.capacity {
		panic(fmt.Sprintf("stackemu: port %d out of range on %q", port, n.name))
	}
	if _, taken := n.children[port]; taken {
		panic(fmt.Sprintf("stackemu: port %d on %q already occupied", port, n.name))
	}

	child := s.newNode(name, kind, capacity)
	child.parent = n
	child.port = port
	child.address = s.allocAddr()
	// Composite parents number their interfaces, not hub ports, but the OS
	// still reports the same location text shape for their children.
	hubNum := n.hubNumber
	if hubNum == 0 {
		hubNum = 1
	}
	child.location = fmt.Sprintf("%sPort_#%04d.Hub_#%04d", prefix, port, hubNum)
	n.children[port] = child
	return child
}

// FailKind makes every request of the given kind against this node complete
// with the given status until ClearFaults.
func (n *Node) FailKind(kind devstack.RequestKind, status devstack.Status) {
	n.stack.mu.Lock()
	defer n.stack.mu.Unlock()
	n.faults[kind] = status
}

// ClearFaults removes all injected faults on this node.
func (n *Node) ClearFaults() {
	n.stack.mu.Lock()
	defer n.stack.mu.Unlock()
	n.faults = make(map[devstack.RequestKind]devstack.Status)
	n.emptyRelations = false
}

// SetEmptyRelations makes relation queries against this node report success
// with zero objects - a stack contract violation the resolver must detect.
func (n *Node) SetEmptyRelations(on bool) {
	n.stack.mu.Lock()
	defer n.stack.mu.Unlock()
	n.emptyRelations = on
}

// SetConnectionStatus overrides the reported connection status of one port.
func (n *Node) SetConnectionStatus(port uint32, status devstack.ConnectionStatus) {
	n.stack.mu.Lock()
	defer n.stack.mu.Unlock()
	n.connOverride[port] = status
}

// Reference takes a reference on the node.
func (n *Node) Reference() {
	n.refs.Add(1)
}

// Dereference drops a reference, panicking on over-release so leaked or
// double-released handles fail tests loudly.
func (n *Node) Dereference() {
	if n.refs.Add(-1) < 0 {
		panic(fmt.Sprintf("stackemu: reference count of %q went negative", n.name))
	}
}

// Submit implements devstack.Handle. In deferred mode it returns
// StatusPending and completes the request on a separate goroutine.
func (n *Node) Submit(req *devstack.Request) devstack.Status {
	if n.stack.isDeferred() {
		go func() {
			req.Complete(n.perform(req))
		}()
		return devstack.StatusPending
	}
	return n.perform(req)
}

// perform executes the request under the stack lock and returns the final
// status.
func (n *Node) perform(req *devstack.Request) devstack.Status {
	s := n.stack
	s.mu.Lock()
	defer s.mu.Unlock()

	if status, faulted := n.faults[req.Kind]; faulted {
		return status
	}

	switch req.Kind {
	case devstack.KindQueryRelations:
		return n.queryRelations(req)
	case devstack.KindQueryProperty:
		return n.queryProperty(req)
	case devstack.KindDeviceControl:
		return n.deviceControl(req)
	default:
		return devstack.StatusInvalidRequest
	}
}

func (n *Node) queryRelations(req *devstack.Request) devstack.Status {
	if req.Relation != devstack.RelationTargetDevice {
		return devstack.StatusNotSupported
	}
	if n.emptyRelations {
		req.Relations = &devstack.Relations{}
		return devstack.StatusSuccess
	}
	// The node is its own physical object here; hand it out referenced,
	// as the stack contract requires for every relations entry.
	n.refs.Add(1)
	req.Relations = &devstack.Relations{Objects: []devstack.Handle{n}}
	return devstack.StatusSuccess
}

func (n *Node) queryProperty(req *devstack.Request) devstack.Status {
	var text string
	switch req.Property {
	case devstack.PropertyDeviceDescription:
		text = n.name
	case devstack.PropertyLocationInformation:
		if n.location == "" {
			return devstack.StatusNotSupported
		}
		text = n.location
	default:
		return devstack.StatusNotSupported
	}

	required := uint32(len(text))
	if uint32(len(req.Buffer)) < required {
		req.Required = required
		return devstack.StatusBufferTooSmall
	}
	copy(req.Buffer, text)
	return devstack.StatusSuccess
}

func (n *Node) deviceControl(req *devstack.Request) devstack.Status {
	switch req.Control {
	case devstack.ControlGetNodeInformation:
		node, ok := req.Payload.(*devstack.NodeInformation)
		if !ok {
			return devstack.StatusInvalidParameter
		}
		switch n.kind {
		case kindHub:
			node.NodeType = devstack.NodeHub
			node.Hub = &devstack.HubInformation{PortCount: n.capacity, BusPowered: n.busPowered}
			node.CompositeParent = nil
		case kindCompositeParent:
			node.NodeType = devstack.NodeCompositeParent
			node.CompositeParent = &devstack.CompositeParentInformation{InterfaceCount: n.capacity}
			node.Hub = nil
		default:
			return devstack.StatusInvalidRequest
		}
		return devstack.StatusSuccess

	case devstack.ControlGetNodeConnectionInformation:
		info, ok := req.Payload.(*devstack.ConnectionInfo)
		if !ok {
			return devstack.StatusInvalidParameter
		}
		if n.kind != kindHub {
			return devstack.StatusNotSupported
		}
		if info.ConnectionIndex == 0 || info.ConnectionIndex > n.capacity {
			return devstack.StatusInvalidParameter
		}
		child := n.children[info.ConnectionIndex]
		if child == nil {
			info.DeviceIsHub = false
			info.DeviceAddress = 0
			info.ConnectionStatus = devstack.NoDeviceConnected
			return devstack.StatusSuccess
		}
		info.DeviceIsHub = child.kind == kindHub
		info.DeviceAddress = child.address
		if status, overridden := n.connOverride[info.ConnectionIndex]; overridden {
			info.ConnectionStatus = status
		} else {
			info.ConnectionStatus = devstack.DeviceConnected
		}
		return devstack.StatusSuccess

	default:
		return devstack.StatusNotSupported
	}
}
