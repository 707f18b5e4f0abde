package devstack

// NodeType discriminates the two shapes a node-information response can
// take. Check it before touching the corresponding payload field.
type NodeType uint8

const (
	// NodeHub marks a physical hub with downstream ports.
	NodeHub NodeType = iota

	// NodeCompositeParent marks a composite device parent exposing logical
	// interfaces instead of ports.
	NodeCompositeParent
)

// String returns the node type name.
func (t NodeType) String() string {
	switch t {
	case NodeHub:
		return "HUB"
	case NodeCompositeParent:
		return "COMPOSITE_PARENT"
	default:
		return "UNKNOWN"
	}
}

// HubInformation describes a physical hub node.
type HubInformation struct {
	// PortCount is the number of downstream ports the hub descriptor
	// declares. Port indices run 1..PortCount.
	PortCount uint32

	// BusPowered reports whether the hub draws power from the bus.
	BusPowered bool
}

// CompositeParentInformation describes a composite device parent.
type CompositeParentInformation struct {
	// InterfaceCount is the number of logical interfaces the parent exposes.
	InterfaceCount uint32
}

// NodeInformation is the in/out block for ControlGetNodeInformation.
// The submitter sets NodeType as a hint (conventionally NodeHub); the stack
// overwrites it with the node's actual type and populates exactly the
// matching payload field, leaving the other nil.
type NodeInformation struct {
	NodeType        NodeType
	Hub             *HubInformation
	CompositeParent *CompositeParentInformation
}

// ConnectionStatus is the state of one downstream port.
type ConnectionStatus uint8

const (
	// NoDeviceConnected means the port is empty.
	NoDeviceConnected ConnectionStatus = iota

	// DeviceConnected means a device is attached and enumerated.
	DeviceConnected

	// DeviceFailedEnumeration means a device is attached but enumeration failed.
	DeviceFailedEnumeration

	// DeviceGeneralFailure means the port is in an unrecoverable error state.
	DeviceGeneralFailure

	// DeviceCausedOvercurrent means the port was shut off for drawing too
	// much current.
	DeviceCausedOvercurrent

	// DeviceNotEnoughPower means the attached device needs more power than
	// the port can supply.
	DeviceNotEnoughPower
)

// String returns the connection status name.
func (s ConnectionStatus) String() string {
	switch s {
	case NoDeviceConnected:
		return "NO_DEVICE_CONNECTED"
	case DeviceConnected:
		return "DEVICE_CONNECTED"
	case DeviceFailedEnumeration:
		return "DEVICE_FAILED_ENUMERATION"
	case DeviceGeneralFailure:
		return "DEVICE_GENERAL_FAILURE"
	case DeviceCausedOvercurrent:
		return "DEVICE_CAUSED_OVERCURRENT"
	case DeviceNotEnoughPower:
		return "DEVICE_NOT_ENOUGH_POWER"
	default:
		return "UNKNOWN"
	}
}

// ConnectionInfo is the in/out block for ControlGetNodeConnectionInformation.
// The submitter sets ConnectionIndex; the stack fills the rest. The snapshot
// is valid only for the instant it was taken, since topology can change
// concurrently.
type ConnectionInfo struct {
	// ConnectionIndex is the 1-based port index being queried.
	ConnectionIndex uint32

	// DeviceIsHub reports whether the attached device is itself a hub.
	DeviceIsHub bool

	// DeviceAddress is the bus address the hub assigned to the device.
	DeviceAddress uint16

	// ConnectionStatus is the port's connection state.
	ConnectionStatus ConnectionStatus
}
