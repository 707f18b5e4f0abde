// Package stackemu emulates a USB device stack in memory.
//
// It implements devstack.Handle over a tree of hubs, composite parents and
// devices, with live reference counting, optional deferred (pending)
// completion, and fault injection. It backs the package tests and the
// usbtap-sim/usbtap-shell tools; it is not part of the public API.
package stackemu

import (
	"fmt"
	"sort"
	"sync"

	"github.com/usbtap/usbtap-go/pkg/devstack"
)

// Stack is an emulated device stack: one root hub plus whatever the test
// attaches below it. Topology is built up front with the Attach methods or
// loaded from YAML; after that, any number of goroutines may submit
// requests.
type Stack struct {
	mu       sync.Mutex
	root     *Node
	nodes    map[string]*Node
	nextHub  uint32
	nextAddr uint16
	deferred bool
}

// New creates an empty stack. Call NewRootHub before anything else.
func New() *Stack {
	return &Stack{nodes: make(map[string]*Node)}
}

// SetDeferred switches completion mode. When deferred, every Submit returns
// StatusPending and the request completes on a separate goroutine, which
// exercises the dispatcher's blocking path.
func (s *Stack) SetDeferred(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deferred = on
}

func (s *Stack) isDeferred() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deferred
}

// NewRootHub creates the root hub. It must be called exactly once.
func (s *Stack) NewRootHub(name string, ports uint32) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root != nil {
		panic("stackemu: root hub already exists")
	}
	root := s.newNode(name, kindHub, ports)
	root.address = s.allocAddr()
	s.root = root
	return root
}

// Root returns the root hub.
func (s *Stack) Root() *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Node looks a node up by name.
func (s *Stack) Node(name string) (*Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[name]
	return n, ok
}

// Attachment pairs a node with the parent it hangs off and the port index
// it occupies.
type Attachment struct {
	Parent *Node
	Device *Node
	Port   uint32
}

// Attachments lists every non-root node with its parent, depth-first in
// port order. Deterministic, for table output and tests.
func (s *Stack) Attachments() []Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Attachment
	var walk func(n *Node)
	walk = func(n *Node) {
		ports := make([]uint32, 0, len(n.children))
		for p := range n.children {
			ports = append(ports, p)
		}
		sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
		for _, p := range ports {
			child := n.children[p]
			out = append(out, Attachment{Parent: n, Device: child, Port: p})
			walk(child)
		}
	}
	if s.root != nil {
		walk(s.root)
	}
	return out
}

// newNode allocates a node and registers its name. Caller holds s.mu.
func (s *Stack) newNode(name string, kind nodeKind, capacity uint32) *Node {
	if name == "" {
		panic("stackemu: node needs a name")
	}
	if _, dup := s.nodes[name]; dup {
		panic(fmt.Sprintf("stackemu: duplicate node name %q", name))
	}
	n := &Node{
		stack:        s,
		name:         name,
		kind:         kind,
		capacity:     capacity,
		children:     make(map[uint32]*Node),
		faults:       make(map[devstack.RequestKind]devstack.Status),
		connOverride: make(map[uint32]devstack.ConnectionStatus),
	}
	if kind == kindHub {
		s.nextHub++
		n.hubNumber = s.nextHub
	}
	s.nodes[name] = n
	return n
}

// allocAddr hands out the next bus address. Caller holds s.mu.
func (s *Stack) allocAddr() uint16 {
	s.nextAddr++
	return s.nextAddr
}
