package stackemu

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NodeSpec is the YAML shape of one topology node. The root must be a hub.
// A node with Ports > 0 is a hub, with Interfaces > 0 a composite parent,
// otherwise a plain device.
type NodeSpec struct {
	Name           string     `yaml:"name"`
	Port           uint32     `yaml:"port"`
	Ports          uint32     `yaml:"ports"`
	Interfaces     uint32     `yaml:"interfaces"`
	BusPowered     bool       `yaml:"busPowered"`
	LocationPrefix string     `yaml:"locationPrefix"`
	Devices        []NodeSpec `yaml:"devices"`
}

// Load builds a stack from a YAML topology description.
func Load(data []byte) (*Stack, error) {
	var root NodeSpec
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}
	if root.Name == "" {
		return nil, fmt.Errorf("topology root needs a name")
	}
	if root.Ports == 0 {
		return nil, fmt.Errorf("topology root %q must be a hub (ports > 0)", root.Name)
	}

	s := New()
	hub := s.NewRootHub(root.Name, root.Ports)
	hub.SetBusPowered(root.BusPowered)
	if err := attachAll(hub, root.Devices); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile builds a stack from a YAML topology file.
func LoadFile(path string) (*Stack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

func attachAll(parent *Node, specs []NodeSpec) error {
	for _, spec := range specs {
		if spec.Name == "" {
			return fmt.Errorf("device below %q needs a name", parent.Name())
		}
		if spec.Port == 0 {
			return fmt.Errorf("device %q needs a port", spec.Name)
		}
		if _, dup := parent.stack.nodes[spec.Name]; dup {
			return fmt.Errorf("duplicate node name %q", spec.Name)
		}
		if spec.Port > parent.capacity {
			return fmt.Errorf("device %q: port %d out of range on %q", spec.Name, spec.Port, parent.Name())
		}
		if _, taken := parent.children[spec.Port]; taken {
			return fmt.Errorf("device %q: port %d on %q already occupied", spec.Name, spec.Port, parent.Name())
		}

		var child *Node
		switch {
		case spec.Ports > 0:
			child = parent.AttachHub(spec.Port, spec.Name, spec.Ports)
			child.SetBusPowered(spec.BusPowered)
		case spec.Interfaces > 0:
			child = parent.AttachCompositeParent(spec.Port, spec.Name, spec.Interfaces)
		default:
			child = parent.attach(spec.Port, spec.Name, kindDevice, 0, spec.LocationPrefix)
		}
		if err := attachAll(child, spec.Devices); err != nil {
			return err
		}
	}
	return nil
}
