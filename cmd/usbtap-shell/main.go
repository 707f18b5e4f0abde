// Command usbtap-shell is an interactive explorer for an emulated USB
// topology. It drives the same resolution operations the capture filter
// uses, one command at a time, which makes it handy for poking at edge
// cases: deferred completion, empty ports, composite parents, fault
// injection via topology files.
//
// Usage:
//
//	usbtap-shell [-topology file]
//
// Commands inside the shell:
//
//	tree                  print the topology
//	resolve <device>      resolve a device's bus address via its parent
//	parent <device>       locate a device's physical object
//	port <device>         parse a device's upstream port number
//	count <node>          query a node's downstream port/interface count
//	info <hub> <port>     query one port's connection snapshot
//	children <hub>        snapshot every port on a hub
//	defer on|off          toggle deferred request completion
//	help                  show this list
//	exit                  leave the shell
package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/usbtap/usbtap-go/internal/stackemu"
	"github.com/usbtap/usbtap-go/pkg/resolve"
)

var topologyFile = flag.String("topology", "", "YAML topology file (default: built-in demo topology)")

// defaultTopology mirrors the usbtap-sim demo topology.
const defaultTopology = `
name: root
ports: 7
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
`

func main() {
	flag.Parse()

	stack, err := loadStack()
	if err != nil {
		fmt.Printf("usbtap-shell: %v\n", err)
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "usbtap> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("usbtap-shell: failed to create readline: %v\n", err)
		return
	}
	defer rl.Close()

	sh := &shell{
		stack:    stack,
		resolver: resolve.New(nil),
		rl:       rl,
	}
	sh.run()
}

func loadStack() (*stackemu.Stack, error) {
	if *topologyFile != "" {
		return stackemu.LoadFile(*topologyFile)
	}
	return stackemu.Load([]byte(defaultTopology))
}

// shell holds the interactive session state.
type shell struct {
	stack    *stackemu.Stack
	resolver *resolve.Resolver
	rl       *readline.Instance
}

func (s *shell) run() {
	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		fields := strings.Fields(input)
		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "help":
			s.printHelp()
		case "tree":
			s.printTree()
		case "resolve":
			s.cmdResolve(args)
		case "parent":
			s.cmdParent(args)
		case "port":
			s.cmdPort(args)
		case "count":
			s.cmdCount(args)
		case "info":
			s.cmdInfo(args)
		case "children":
			s.cmdChildren(args)
		case "defer":
			s.cmdDefer(args)
		case "exit", "quit":
			return
		default:
			s.printf("unknown command %q, try help\n", cmd)
		}
	}
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.rl.Stdout(), format, args...)
}

func (s *shell) printHelp() {
	s.printf(`Commands:
  tree                  print the topology
  resolve <device>      resolve a device's bus address via its parent
  parent <device>       locate a device's physical object
  port <device>         parse a device's upstream port number
  count <node>          query a node's downstream port/interface count
  info <hub> <port>     query one port's connection snapshot
  children <hub>        snapshot every port on a hub
  defer on|off          toggle deferred request completion
  help                  show this list
  exit                  leave the shell
`)
}

func (s *shell) printTree() {
	root := s.stack.Root()
	s.printf("%s (root hub, address %d)\n", root.Name(), root.Address())
	for _, att := range s.stack.Attachments() {
		depth := 0
		for p := att.Parent; p != nil; p = p.Parent() {
			depth++
		}
		kind := "device"
		if att.Device.IsHub() {
			kind = "hub"
		}
		s.printf("%sport %d: %s (%s, address %d)\n",
			strings.Repeat("  ", depth), att.Port, att.Device.Name(), kind, att.Device.Address())
	}
}

// lookup finds a named node or reports the failure to the user.
func (s *shell) lookup(name string) (*stackemu.Node, bool) {
	n, ok := s.stack.Node(name)
	if !ok {
		s.printf("no node named %q, try tree\n", name)
	}
	return n, ok
}

func (s *shell) cmdResolve(args []string) {
	if len(args) != 1 {
		s.printf("usage: resolve <device>\n")
		return
	}
	dev, ok := s.lookup(args[0])
	if !ok {
		return
	}
	parent := dev.Parent()
	if parent == nil {
		s.printf("%s is the root hub; nothing assigns it an address\n", dev.Name())
		return
	}

	resolved, err := s.resolver.ResolveAddress(parent, dev)
	if err != nil {
		s.printf("resolve failed: %v\n", err)
		return
	}
	s.printf("%s: address %d (via %s port %d)\n", dev.Name(), resolved.Address, parent.Name(), dev.Port())
}

func (s *shell) cmdParent(args []string) {
	if len(args) != 1 {
		s.printf("usage: parent <device>\n")
		return
	}
	dev, ok := s.lookup(args[0])
	if !ok {
		return
	}

	physical, err := s.resolver.PhysicalParent(dev)
	if err != nil {
		s.printf("parent lookup failed: %v\n", err)
		return
	}
	defer physical.Release()

	if n, isNode := physical.Handle().(*stackemu.Node); isNode {
		s.printf("physical object: %s (references now %d)\n", n.Name(), n.Refs())
		return
	}
	s.printf("physical object located\n")
}

func (s *shell) cmdPort(args []string) {
	if len(args) != 1 {
		s.printf("usage: port <device>\n")
		return
	}
	dev, ok := s.lookup(args[0])
	if !ok {
		return
	}

	physical, err := s.resolver.PhysicalParent(dev)
	if err != nil {
		s.printf("parent lookup failed: %v\n", err)
		return
	}
	defer physical.Release()

	port, err := s.resolver.DevicePort(physical)
	if err != nil {
		s.printf("port lookup failed: %v\n", err)
		return
	}
	s.printf("%s: upstream port %d (location %q)\n", dev.Name(), port, dev.Location())
}

func (s *shell) cmdCount(args []string) {
	if len(args) != 1 {
		s.printf("usage: count <node>\n")
		return
	}
	n, ok := s.lookup(args[0])
	if !ok {
		return
	}

	count, err := s.resolver.PortCount(n)
	if err != nil {
		s.printf("count failed: %v\n", err)
		return
	}
	switch count.Kind {
	case resolve.PortCountHub:
		s.printf("%s: hub with %d downstream ports\n", n.Name(), count.Count)
	case resolve.PortCountCompositeParent:
		s.printf("%s: composite parent with %d interfaces\n", n.Name(), count.Count)
	}
}

func (s *shell) cmdInfo(args []string) {
	if len(args) != 2 {
		s.printf("usage: info <hub> <port>\n")
		return
	}
	hub, ok := s.lookup(args[0])
	if !ok {
		return
	}
	port, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		s.printf("bad port %q\n", args[1])
		return
	}

	info, err := s.resolver.PortInfo(hub, uint32(port))
	if err != nil {
		s.printf("info failed: %v\n", err)
		return
	}
	s.printf("port %d: %s, isHub=%t, address=%d\n",
		info.ConnectionIndex, info.ConnectionStatus, info.DeviceIsHub, info.DeviceAddress)
}

func (s *shell) cmdChildren(args []string) {
	if len(args) != 1 {
		s.printf("usage: children <hub>\n")
		return
	}
	hub, ok := s.lookup(args[0])
	if !ok {
		return
	}

	infos, err := s.resolver.Children(hub)
	if err != nil {
		s.printf("children failed: %v\n", err)
		return
	}
	for _, info := range infos {
		s.printf("port %d: %s, isHub=%t, address=%d\n",
			info.ConnectionIndex, info.ConnectionStatus, info.DeviceIsHub, info.DeviceAddress)
	}
}

func (s *shell) cmdDefer(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		s.printf("usage: defer on|off\n")
		return
	}
	s.stack.SetDeferred(args[0] == "on")
	s.printf("deferred completion %s\n", args[0])
}
