// Package location parses device topology location text.
//
// The OS reports a device's attachment path as a loosely-structured string
// with the informal shape
//
//	<prefix>Port_#<digits>.Hub_#<digits><suffix>
//
// There is no formal grammar guarantee for the prefix or suffix, so the
// parser commits only to: everything up to the first '#' is ignored, the
// digit run immediately after it is the port number, and the rest of the
// text is ignored. Anything else is a parse failure, never a guess.
package location

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Parse errors.
var (
	// ErrNoMarker means the text contains no '#' within its length.
	ErrNoMarker = errors.New("location text has no '#' marker")

	// ErrBadPort means the characters after the marker do not form a port
	// number representable in 32 bits.
	ErrBadPort = errors.New("location text has no numeric port field")
)

// ParsePort extracts the port number from location text. The slice bounds
// are the text's declared length; the parser never reads past them. The
// input is not modified.
func ParsePort(text []byte) (uint32, error) {
	marker := bytes.IndexByte(text, '#')
	if marker < 0 {
		return 0, fmt.Errorf("%q: %w", text, ErrNoMarker)
	}

	digits := text[marker+1:]
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("%q: %w", text, ErrBadPort)
	}

	port, err := strconv.ParseUint(string(digits[:end]), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", text, ErrBadPort)
	}
	return uint32(port), nil
}

// ParsePortString is ParsePort for callers holding the text as a string.
func ParsePortString(text string) (uint32, error) {
	return ParsePort([]byte(text))
}
