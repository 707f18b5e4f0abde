package resolve

import (
	"fmt"

	"github.com/usbtap/usbtap-go/pkg/devstack"
	"github.com/usbtap/usbtap-go/pkg/location"
	"github.com/usbtap/usbtap-go/pkg/trace"
)

// DevicePort determines which upstream port physical is attached to by
// reading its topology location text and parsing the port number out of it.
//
// The location property uses a two-phase protocol: a zero-length probe that
// is expected to fail with StatusBufferTooSmall and report the required
// size, then a fetch with a buffer of exactly that size. A probe that
// reports anything else - including plain success, which the property
// contract rules out for an empty buffer - is an error.
func (r *Resolver) DevicePort(physical *devstack.OwnedHandle) (uint32, error) {
	return r.devicePort("", physical)
}

func (r *Resolver) devicePort(rid string, physical *devstack.OwnedHandle) (uint32, error) {
	const (
		opProbe = "probe location size"
		opFetch = "query location information"
	)

	probe := devstack.NewPropertyQuery(devstack.PropertyLocationInformation, nil)
	status := Dispatch(physical.Handle(), probe)
	r.traceQuery(rid, opProbe, status)
	if status != devstack.StatusBufferTooSmall {
		if !status.IsSuccess() {
			return 0, statusErr(opProbe, status)
		}
		// The probe cannot legitimately succeed; don't hand the caller a
		// success status it would misread.
		return 0, fmt.Errorf("location size probe reported %s: %w", status, ErrProtocolViolation)
	}

	buf := make([]byte, probe.Required)
	fetch := devstack.NewPropertyQuery(devstack.PropertyLocationInformation, buf)
	status = Dispatch(physical.Handle(), fetch)
	r.traceQuery(rid, opFetch, status)
	if !status.IsSuccess() {
		return 0, statusErr(opFetch, status)
	}

	port, err := location.ParsePort(buf)
	if err != nil {
		r.traceParse(rid, &trace.ParseEvent{Location: string(buf), Err: err.Error()})
		return 0, err
	}
	r.traceParse(rid, &trace.ParseEvent{Location: string(buf), Port: port})
	return port, nil
}
