package stackemu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usbtap/usbtap-go/pkg/devstack"
)

func submit(t *testing.T, n *Node, req *devstack.Request) devstack.Status {
	t.Helper()
	status := n.Submit(req)
	if status == devstack.StatusPending {
		<-req.Done()
		status = req.Status()
	}
	return status
}

func TestRelationsQueryReferencesEntry(t *testing.T) {
	s := New()
	root := s.NewRootHub("root", 2)
	dev := root.AttachDevice(1, "dev")

	req := devstack.NewRelationsQuery(devstack.RelationTargetDevice)
	require.Equal(t, devstack.StatusSuccess, submit(t, dev, req))
	require.NotNil(t, req.Relations)
	require.Len(t, req.Relations.Objects, 1)

	assert.Equal(t, int64(1), dev.Refs())
	req.Relations.Objects[0].Dereference()
	assert.Equal(t, int64(0), dev.Refs())
}

func TestPropertyTwoPhase(t *testing.T) {
	s := New()
	root := s.NewRootHub("root", 2)
	dev := root.AttachDevice(2, "dev")

	probe := devstack.NewPropertyQuery(devstack.PropertyLocationInformation, nil)
	require.Equal(t, devstack.StatusBufferTooSmall, submit(t, dev, probe))
	require.Equal(t, uint32(len(dev.Location())), probe.Required)

	buf := make([]byte, probe.Required)
	fetch := devstack.NewPropertyQuery(devstack.PropertyLocationInformation, buf)
	require.Equal(t, devstack.StatusSuccess, submit(t, dev, fetch))
	assert.Equal(t, "Port_#0002.Hub_#0001", string(buf))
}

func TestLocationPrefix(t *testing.T) {
	s := New()
	root := s.NewRootHub("root", 2)
	dev := root.AttachDevicePrefixed(1, "stick", "USBSTOR\\")

	assert.Equal(t, "USBSTOR\\Port_#0001.Hub_#0001", dev.Location())
}

func TestRootHubHasNoLocation(t *testing.T) {
	s := New()
	root := s.NewRootHub("root", 2)

	probe := devstack.NewPropertyQuery(devstack.PropertyLocationInformation, nil)
	assert.Equal(t, devstack.StatusNotSupported, submit(t, root, probe))
}

func TestNodeInformationDiscriminant(t *testing.T) {
	s := New()
	root := s.NewRootHub("root", 4)
	root.SetBusPowered(true)
	comp := root.AttachCompositeParent(1, "cam", 3)
	dev := root.AttachDevice(2, "dev")

	t.Run("Hub", func(t *testing.T) {
		node := &devstack.NodeInformation{NodeType: devstack.NodeHub}
		req := devstack.NewDeviceControl(devstack.ControlGetNodeInformation, node)
		require.Equal(t, devstack.StatusSuccess, submit(t, root, req))
		require.Equal(t, devstack.NodeHub, node.NodeType)
		require.NotNil(t, node.Hub)
		assert.Nil(t, node.CompositeParent)
		assert.Equal(t, uint32(4), node.Hub.PortCount)
		assert.True(t, node.Hub.BusPowered)
	})

	t.Run("CompositeParent", func(t *testing.T) {
		node := &devstack.NodeInformation{NodeType: devstack.NodeHub}
		req := devstack.NewDeviceControl(devstack.ControlGetNodeInformation, node)
		require.Equal(t, devstack.StatusSuccess, submit(t, comp, req))
		require.Equal(t, devstack.NodeCompositeParent, node.NodeType)
		require.NotNil(t, node.CompositeParent)
		assert.Nil(t, node.Hub)
		assert.Equal(t, uint32(3), node.CompositeParent.InterfaceCount)
	})

	t.Run("PlainDeviceRejects", func(t *testing.T) {
		node := &devstack.NodeInformation{NodeType: devstack.NodeHub}
		req := devstack.NewDeviceControl(devstack.ControlGetNodeInformation, node)
		assert.Equal(t, devstack.StatusInvalidRequest, submit(t, dev, req))
	})
}

func TestConnectionInformation(t *testing.T) {
	s := New()
	root := s.NewRootHub("root", 4)
	hub2 := root.AttachHub(1, "hub2", 2)
	root.AttachDevice(3, "dev")

	t.Run("ConnectedHub", func(t *testing.T) {
		info := &devstack.ConnectionInfo{ConnectionIndex: 1}
		req := devstack.NewDeviceControl(devstack.ControlGetNodeConnectionInformation, info)
		require.Equal(t, devstack.StatusSuccess, submit(t, root, req))
		assert.True(t, info.DeviceIsHub)
		assert.Equal(t, hub2.Address(), info.DeviceAddress)
		assert.Equal(t, devstack.DeviceConnected, info.ConnectionStatus)
	})

	t.Run("EmptyPort", func(t *testing.T) {
		info := &devstack.ConnectionInfo{ConnectionIndex: 2}
		req := devstack.NewDeviceControl(devstack.ControlGetNodeConnectionInformation, info)
		require.Equal(t, devstack.StatusSuccess, submit(t, root, req))
		assert.False(t, info.DeviceIsHub)
		assert.Zero(t, info.DeviceAddress)
		assert.Equal(t, devstack.NoDeviceConnected, info.ConnectionStatus)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		for _, port := range []uint32{0, 5, 100} {
			info := &devstack.ConnectionInfo{ConnectionIndex: port}
			req := devstack.NewDeviceControl(devstack.ControlGetNodeConnectionInformation, info)
			assert.Equal(t, devstack.StatusInvalidParameter, submit(t, root, req), "port %d", port)
		}
	})

	t.Run("StatusOverride", func(t *testing.T) {
		root.SetConnectionStatus(3, devstack.DeviceFailedEnumeration)
		info := &devstack.ConnectionInfo{ConnectionIndex: 3}
		req := devstack.NewDeviceControl(devstack.ControlGetNodeConnectionInformation, info)
		require.Equal(t, devstack.StatusSuccess, submit(t, root, req))
		assert.Equal(t, devstack.DeviceFailedEnumeration, info.ConnectionStatus)
	})
}

func TestFaultInjection(t *testing.T) {
	s := New()
	root := s.NewRootHub("root", 2)
	dev := root.AttachDevice(1, "dev")

	dev.FailKind(devstack.KindQueryProperty, devstack.StatusNoSuchDevice)
	probe := devstack.NewPropertyQuery(devstack.PropertyLocationInformation, nil)
	assert.Equal(t, devstack.StatusNoSuchDevice, submit(t, dev, probe))

	dev.ClearFaults()
	probe = devstack.NewPropertyQuery(devstack.PropertyLocationInformation, nil)
	assert.Equal(t, devstack.StatusBufferTooSmall, submit(t, dev, probe))
}

func TestDeferredCompletion(t *testing.T) {
	s := New()
	root := s.NewRootHub("root", 2)
	dev := root.AttachDevice(1, "dev")
	s.SetDeferred(true)

	req := devstack.NewPropertyQuery(devstack.PropertyLocationInformation, nil)
	status := dev.Submit(req)
	require.Equal(t, devstack.StatusPending, status)

	<-req.Done()
	assert.Equal(t, devstack.StatusBufferTooSmall, req.Status())
}

func TestLoadTopology(t *testing.T) {
	data := []byte(`
name: root
ports: 7
busPowered: true
devices:
  - name: hub2
    port: 1
    ports: 4
    devices:
      - name: keyboard
        port: 3
  - name: mouse
    port: 4
  - name: camera
    port: 5
    interfaces: 3
  - name: stick
    port: 6
    locationPrefix: "USBSTOR\\"
`)

	s, err := Load(data)
	require.NoError(t, err)

	root := s.Root()
	require.NotNil(t, root)
	assert.Equal(t, "root", root.Name())
	assert.True(t, root.IsHub())

	hub2, ok := s.Node("hub2")
	require.True(t, ok)
	assert.True(t, hub2.IsHub())
	assert.Equal(t, root, hub2.Parent())

	keyboard, ok := s.Node("keyboard")
	require.True(t, ok)
	assert.Equal(t, "Port_#0003.Hub_#0002", keyboard.Location())

	stick, ok := s.Node("stick")
	require.True(t, ok)
	assert.Equal(t, "USBSTOR\\Port_#0006.Hub_#0001", stick.Location())

	atts := s.Attachments()
	require.Len(t, atts, 5)
	assert.Equal(t, "hub2", atts[0].Device.Name())
	assert.Equal(t, "keyboard", atts[1].Device.Name())
}

func TestLoadTopologyErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"RootNotHub", "name: root"},
		{"MissingName", "name: root\nports: 2\ndevices:\n  - port: 1"},
		{"MissingPort", "name: root\nports: 2\ndevices:\n  - name: dev"},
		{"PortOutOfRange", "name: root\nports: 2\ndevices:\n  - name: dev\n    port: 3"},
		{"DuplicateName", "name: root\nports: 2\ndevices:\n  - name: root\n    port: 1"},
		{"DuplicatePort", "name: root\nports: 2\ndevices:\n  - name: a\n    port: 1\n  - name: b\n    port: 1"},
		{"BadYAML", ":"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
