package devstack

// Status is the completion status of a device-stack request.
type Status uint32

const (
	// StatusSuccess indicates the request completed successfully.
	StatusSuccess Status = 0

	// StatusPending indicates the stack will complete the request later.
	// It is only ever returned from Handle.Submit, never as a final status.
	StatusPending Status = 1

	// StatusBufferTooSmall indicates the supplied buffer cannot hold the
	// result; the required size is reported alongside.
	StatusBufferTooSmall Status = 2

	// StatusNotSupported indicates no driver in the stack handles the request.
	StatusNotSupported Status = 3

	// StatusInsufficientResources indicates the request object could not
	// be constructed or queued.
	StatusInsufficientResources Status = 4

	// StatusInvalidRequest indicates the request is not valid for the
	// target device object.
	StatusInvalidRequest Status = 5

	// StatusInvalidParameter indicates a request parameter is out of range.
	StatusInvalidParameter Status = 6

	// StatusNoSuchDevice indicates the target device is gone.
	StatusNoSuchDevice Status = 7

	// StatusDeviceNotConnected indicates the addressed port has no device.
	StatusDeviceNotConnected Status = 8

	// StatusUnsuccessful indicates a failure with no more specific cause.
	StatusUnsuccessful Status = 9
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusPending:
		return "PENDING"
	case StatusBufferTooSmall:
		return "BUFFER_TOO_SMALL"
	case StatusNotSupported:
		return "NOT_SUPPORTED"
	case StatusInsufficientResources:
		return "INSUFFICIENT_RESOURCES"
	case StatusInvalidRequest:
		return "INVALID_REQUEST"
	case StatusInvalidParameter:
		return "INVALID_PARAMETER"
	case StatusNoSuchDevice:
		return "NO_SUCH_DEVICE"
	case StatusDeviceNotConnected:
		return "DEVICE_NOT_CONNECTED"
	case StatusUnsuccessful:
		return "UNSUCCESSFUL"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}
