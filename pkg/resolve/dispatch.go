package resolve

import (
	"github.com/usbtap/usbtap-go/pkg/devstack"
)

// Dispatch submits req to target and blocks until the request completes,
// returning the final status. If the stack completes the submission
// synchronously that status is returned directly; if it reports
// StatusPending, Dispatch waits on the request's private completion signal
// and then reads the final status from the completed request.
//
// Dispatch never retries and never substitutes its own status for the
// stack's, with one exception: a request that cannot be submitted at all
// (nil target or nil request) yields StatusInsufficientResources without
// anything reaching the stack.
//
// There is no timeout. A stack that never completes a pending request
// blocks the calling goroutine forever; callers needing bounded latency
// must arrange it a layer above. Concurrent calls are independent: each
// request carries its own completion signal.
func Dispatch(target devstack.Handle, req *devstack.Request) devstack.Status {
	if target == nil || req == nil {
		return devstack.StatusInsufficientResources
	}

	status := target.Submit(req)
	if status == devstack.StatusPending {
		<-req.Done()
		status = req.Status()
	}
	return status
}
