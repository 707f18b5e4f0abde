package trace

import (
	"time"
)

// Event is one resolver trace record. CBOR encoding uses integer keys for
// compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ResolutionID correlates all events of one ResolveAddress call (UUID).
	// Empty for events emitted outside a full resolution.
	ResolutionID string `cbor:"2,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Type-specific payload (exactly one is set).
	Query   *QueryEvent   `cbor:"4,keyasint,omitempty"`
	Parse   *ParseEvent   `cbor:"5,keyasint,omitempty"`
	Port    *PortEvent    `cbor:"6,keyasint,omitempty"`
	Resolve *ResolveEvent `cbor:"7,keyasint,omitempty"`
}

// Category classifies a trace event.
type Category uint8

const (
	// CategoryQuery is one request/response exchange with the device stack.
	CategoryQuery Category = 0
	// CategoryParse is a location-text parse.
	CategoryParse Category = 1
	// CategoryPort is a per-port connection snapshot.
	CategoryPort Category = 2
	// CategoryResolve is the outcome of a full address resolution.
	CategoryResolve Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryQuery:
		return "QUERY"
	case CategoryParse:
		return "PARSE"
	case CategoryPort:
		return "PORT"
	case CategoryResolve:
		return "RESOLVE"
	default:
		return "UNKNOWN"
	}
}

// QueryEvent records one request/response exchange with the device stack.
type QueryEvent struct {
	// Op names the operation, e.g. "query target device relation".
	Op string `cbor:"1,keyasint"`

	// Status is the raw completion status reported by the stack.
	Status uint32 `cbor:"2,keyasint"`
}

// ParseEvent records a location-text parse.
type ParseEvent struct {
	// Location is the raw location text as returned by the stack.
	Location string `cbor:"1,keyasint"`

	// Port is the parsed port number. Zero together with a non-empty Err
	// means the parse failed.
	Port uint32 `cbor:"2,keyasint,omitempty"`

	// Err is the parse failure, if any.
	Err string `cbor:"3,keyasint,omitempty"`
}

// PortEvent records one port's connection snapshot.
type PortEvent struct {
	Index      uint32 `cbor:"1,keyasint"`
	IsHub      bool   `cbor:"2,keyasint,omitempty"`
	Address    uint16 `cbor:"3,keyasint,omitempty"`
	Connection uint8  `cbor:"4,keyasint"`
}

// ResolveEvent records the outcome of a full address resolution.
type ResolveEvent struct {
	// Port is the parsed upstream port, when resolution got that far.
	Port uint32 `cbor:"1,keyasint,omitempty"`

	// Address is the resolved bus address, on success.
	Address uint16 `cbor:"2,keyasint,omitempty"`

	// Err is the failure that ended the resolution, if any.
	Err string `cbor:"3,keyasint,omitempty"`
}
