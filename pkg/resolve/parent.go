package resolve

import (
	"fmt"

	"github.com/usbtap/usbtap-go/pkg/devstack"
)

// PhysicalParent resolves the physical device object backing logical by
// issuing a target-device relation query against its stack. The returned
// OwnedHandle holds one reference that the caller must release exactly
// once, on every path, success or failure downstream.
func (r *Resolver) PhysicalParent(logical devstack.Handle) (*devstack.OwnedHandle, error) {
	return r.physicalParent("", logical)
}

func (r *Resolver) physicalParent(rid string, logical devstack.Handle) (*devstack.OwnedHandle, error) {
	const op = "query target device relation"

	req := devstack.NewRelationsQuery(devstack.RelationTargetDevice)
	status := Dispatch(logical, req)
	r.traceQuery(rid, op, status)
	if !status.IsSuccess() {
		return nil, statusErr(op, status)
	}

	// The stack contract guarantees at least one entry on success.
	rel := req.Relations
	if rel == nil || len(rel.Objects) == 0 {
		return nil, fmt.Errorf("target device relation returned no objects: %w", ErrProtocolViolation)
	}

	// Only the first entry is the physical representative. Every entry
	// arrived referenced, so drop the ones we don't keep.
	for _, extra := range rel.Objects[1:] {
		extra.Dereference()
	}
	return devstack.NewOwnedHandle(rel.Objects[0]), nil
}
