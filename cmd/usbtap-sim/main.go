// Command usbtap-sim resolves bus addresses across an emulated USB topology.
//
// It loads a topology description (or uses a built-in demo topology),
// resolves every attached device through the same code path the capture
// filter uses, and prints the results as a table. It exists to exercise and
// demonstrate the resolution layer end to end without real hardware.
//
// Usage:
//
//	usbtap-sim [flags]
//
// Flags:
//
//	-topology string  YAML topology file (default: built-in demo topology)
//	-trace string     Write CBOR trace events to this file
//	-deferred         Complete all emulated requests asynchronously
//	-verbose          Print trace events to stderr
//
// Examples:
//
//	# Resolve the built-in topology with console tracing
//	usbtap-sim -verbose
//
//	# Resolve a custom topology and keep the trace for later inspection
//	usbtap-sim -topology lab.yaml -trace lab-trace.cbor
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/usbtap/usbtap-go/internal/stackemu"
	"github.com/usbtap/usbtap-go/pkg/resolve"
	"github.com/usbtap/usbtap-go/pkg/trace"
)

// defaultTopology is used when no -topology file is given.
const defaultTopology = `
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
      - name: headset
        port: 4
  - name: mouse
    port: 4
  - name: camera
    port: 5
    interfaces: 3
  - name: stick
    port: 6
    locationPrefix: "USBSTOR\\"
`

var (
	topologyFile = flag.String("topology", "", "YAML topology file (default: built-in demo topology)")
	traceFile    = flag.String("trace", "", "write CBOR trace events to this file")
	deferred     = flag.Bool("deferred", false, "complete all emulated requests asynchronously")
	verbose      = flag.Bool("verbose", false, "print trace events to stderr")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "usbtap-sim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	stack, err := loadStack()
	if err != nil {
		return err
	}
	if *deferred {
		stack.SetDeferred(true)
	}

	logger, closeTrace, err := buildLogger()
	if err != nil {
		return err
	}
	defer closeTrace()

	resolver := resolve.New(logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DEVICE\tPARENT\tPORT\tHUB\tADDRESS")
	for _, att := range stack.Attachments() {
		kind := "device"
		if att.Device.IsHub() {
			kind = "hub"
		}

		resolved, err := resolver.ResolveAddress(att.Parent, att.Device)
		address := "unknown"
		if err == nil {
			address = fmt.Sprintf("%d", resolved.Address)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			att.Device.Name(), att.Parent.Name(), att.Port, kind, address)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	return printChildren(resolver, stack)
}

// printChildren dumps the root hub's per-port connection snapshot.
func printChildren(resolver *resolve.Resolver, stack *stackemu.Stack) error {
	infos, err := resolver.Children(stack.Root())
	if err != nil {
		return fmt.Errorf("walk root hub: %w", err)
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PORT\tCONNECTION\tIS HUB\tADDRESS")
	for _, info := range infos {
		fmt.Fprintf(w, "%d\t%s\t%t\t%d\n",
			info.ConnectionIndex, info.ConnectionStatus, info.DeviceIsHub, info.DeviceAddress)
	}
	return w.Flush()
}

func loadStack() (*stackemu.Stack, error) {
	if *topologyFile != "" {
		return stackemu.LoadFile(*topologyFile)
	}
	return stackemu.Load([]byte(defaultTopology))
}

// buildLogger assembles the trace sinks selected by flags. The returned
// close function flushes the trace file, if any.
func buildLogger() (trace.Logger, func(), error) {
	var loggers []trace.Logger

	if *verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, trace.NewSlogAdapter(slog.New(handler)))
	}

	closeTrace := func() {}
	if *traceFile != "" {
		fl, err := trace.NewFileLogger(*traceFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open trace file: %w", err)
		}
		loggers = append(loggers, fl)
		closeTrace = func() { _ = fl.Close() }
	}

	switch len(loggers) {
	case 0:
		return nil, closeTrace, nil
	case 1:
		return loggers[0], closeTrace, nil
	default:
		return trace.NewMultiLogger(loggers...), closeTrace, nil
	}
}
