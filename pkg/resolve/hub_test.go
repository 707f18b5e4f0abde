package resolve

import (
	"errors"
	"testing"

	"github.com/usbtap/usbtap-go/pkg/devstack"
)

func TestPortCount(t *testing.T) {
	r := New(nil)

	t.Run("Hub", func(t *testing.T) {
		hub := &fakeHandle{
			submit: func(req *devstack.Request) devstack.Status {
				node := req.Payload.(*devstack.NodeInformation)
				if node.NodeType != devstack.NodeHub {
					t.Errorf("outgoing hint = %s, want HUB", node.NodeType)
				}
				node.NodeType = devstack.NodeHub
				node.Hub = &devstack.HubInformation{PortCount: 7, BusPowered: true}
				return devstack.StatusSuccess
			},
		}

		count, err := r.PortCount(hub)
		if err != nil {
			t.Fatalf("PortCount: %v", err)
		}
		if count.Kind != PortCountHub {
			t.Errorf("kind = %s, want HUB", count.Kind)
		}
		if count.Count != 7 {
			t.Errorf("count = %d, want 7", count.Count)
		}
	})

	t.Run("CompositeParent", func(t *testing.T) {
		parent := &fakeHandle{
			submit: func(req *devstack.Request) devstack.Status {
				node := req.Payload.(*devstack.NodeInformation)
				// The hub hint does not bind the response; the stack
				// reports what the node actually is.
				node.NodeType = devstack.NodeCompositeParent
				node.CompositeParent = &devstack.CompositeParentInformation{InterfaceCount: 3}
				node.Hub = nil
				return devstack.StatusSuccess
			},
		}

		count, err := r.PortCount(parent)
		if err != nil {
			t.Fatalf("PortCount: %v", err)
		}
		if count.Kind != PortCountCompositeParent {
			t.Errorf("kind = %s, want COMPOSITE_PARENT", count.Kind)
		}
		if count.Count != 3 {
			t.Errorf("count = %d, want 3", count.Count)
		}
	})

	t.Run("MissingPayloadIsViolation", func(t *testing.T) {
		parent := &fakeHandle{
			submit: func(req *devstack.Request) devstack.Status {
				node := req.Payload.(*devstack.NodeInformation)
				node.NodeType = devstack.NodeHub
				node.Hub = nil
				return devstack.StatusSuccess
			},
		}

		_, err := r.PortCount(parent)
		if !errors.Is(err, ErrProtocolViolation) {
			t.Errorf("error = %v, want ErrProtocolViolation", err)
		}
	})

	t.Run("DispatchFailure", func(t *testing.T) {
		parent := &fakeHandle{
			submit: func(*devstack.Request) devstack.Status {
				return devstack.StatusInvalidRequest
			},
		}

		_, err := r.PortCount(parent)
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if statusErr.Status != devstack.StatusInvalidRequest {
			t.Errorf("carried status = %s, want INVALID_REQUEST", statusErr.Status)
		}
	})
}

func TestPortInfo(t *testing.T) {
	r := New(nil)

	t.Run("Success", func(t *testing.T) {
		hub := &fakeHandle{
			submit: func(req *devstack.Request) devstack.Status {
				info := req.Payload.(*devstack.ConnectionInfo)
				if info.ConnectionIndex != 4 {
					t.Errorf("queried index = %d, want 4", info.ConnectionIndex)
				}
				info.DeviceIsHub = false
				info.DeviceAddress = 9
				info.ConnectionStatus = devstack.DeviceConnected
				return devstack.StatusSuccess
			},
		}

		info, err := r.PortInfo(hub, 4)
		if err != nil {
			t.Fatalf("PortInfo: %v", err)
		}
		if info.DeviceAddress != 9 {
			t.Errorf("address = %d, want 9", info.DeviceAddress)
		}
		if info.ConnectionStatus != devstack.DeviceConnected {
			t.Errorf("connection = %s, want DEVICE_CONNECTED", info.ConnectionStatus)
		}
	})

	t.Run("StackRejectsOutOfRange", func(t *testing.T) {
		hub := &fakeHandle{
			submit: func(req *devstack.Request) devstack.Status {
				info := req.Payload.(*devstack.ConnectionInfo)
				if info.ConnectionIndex == 0 || info.ConnectionIndex > 7 {
					return devstack.StatusInvalidParameter
				}
				info.ConnectionStatus = devstack.NoDeviceConnected
				return devstack.StatusSuccess
			},
		}

		for _, port := range []uint32{0, 8, 100} {
			_, err := r.PortInfo(hub, port)
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("port %d: error = %v, want *StatusError", port, err)
			}
			if statusErr.Status != devstack.StatusInvalidParameter {
				t.Errorf("port %d: carried status = %s, want INVALID_PARAMETER", port, statusErr.Status)
			}
		}
	})
}
