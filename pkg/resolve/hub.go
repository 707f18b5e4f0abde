package resolve

import (
	"fmt"

	"github.com/usbtap/usbtap-go/pkg/devstack"
)

// PortCountKind discriminates the two interpretations of a PortCount.
type PortCountKind uint8

const (
	// PortCountHub means the count is a hub's physical downstream ports.
	PortCountHub PortCountKind = iota

	// PortCountCompositeParent means the count is a composite parent's
	// logical interface count.
	PortCountCompositeParent
)

// String returns the kind name.
func (k PortCountKind) String() string {
	switch k {
	case PortCountHub:
		return "HUB"
	case PortCountCompositeParent:
		return "COMPOSITE_PARENT"
	default:
		return "UNKNOWN"
	}
}

// PortCount is the number of addressable downstream positions on a parent
// node, tagged with how to read it. Port indices run 1..Count.
type PortCount struct {
	Kind  PortCountKind
	Count uint32
}

// PortCount asks parent how many downstream positions it exposes. The
// request goes out hinted as a hub query, but the response discriminant
// decides the interpretation: hubs report physical ports, composite parents
// report logical interfaces.
func (r *Resolver) PortCount(parent devstack.Handle) (PortCount, error) {
	const op = "get node information"

	node := &devstack.NodeInformation{NodeType: devstack.NodeHub}
	req := devstack.NewDeviceControl(devstack.ControlGetNodeInformation, node)
	status := Dispatch(parent, req)
	r.traceQuery("", op, status)
	if !status.IsSuccess() {
		return PortCount{}, statusErr(op, status)
	}

	switch node.NodeType {
	case devstack.NodeHub:
		if node.Hub == nil {
			return PortCount{}, fmt.Errorf("hub node information without hub payload: %w", ErrProtocolViolation)
		}
		return PortCount{Kind: PortCountHub, Count: node.Hub.PortCount}, nil
	case devstack.NodeCompositeParent:
		if node.CompositeParent == nil {
			return PortCount{}, fmt.Errorf("composite parent node information without parent payload: %w", ErrProtocolViolation)
		}
		return PortCount{Kind: PortCountCompositeParent, Count: node.CompositeParent.InterfaceCount}, nil
	default:
		return PortCount{}, fmt.Errorf("node information has unknown node type %d: %w", node.NodeType, ErrProtocolViolation)
	}
}

// PortInfo takes a connection snapshot of one downstream port on parent.
// Port indices are 1-based; no bounds check is done here - the stack
// rejects out-of-range indices with an error status that surfaces as a
// *StatusError.
func (r *Resolver) PortInfo(parent devstack.Handle, port uint32) (devstack.ConnectionInfo, error) {
	return r.portInfo("", parent, port)
}

func (r *Resolver) portInfo(rid string, parent devstack.Handle, port uint32) (devstack.ConnectionInfo, error) {
	const op = "get node connection information"

	info := &devstack.ConnectionInfo{ConnectionIndex: port}
	req := devstack.NewDeviceControl(devstack.ControlGetNodeConnectionInformation, info)
	status := Dispatch(parent, req)
	r.traceQuery(rid, op, status)
	if !status.IsSuccess() {
		return devstack.ConnectionInfo{}, statusErr(op, status)
	}

	r.tracePort(rid, *info)
	return *info, nil
}
