package ring

import "errors"

// Sentinel errors returned by the protocol engine. Transport-level failures
// are wrapped and propagate unchanged; the engine performs no retries.
var (
	// ErrPayloadTooLarge is returned when a command payload exceeds the
	// 14 bytes available in a fixed-size packet.
	ErrPayloadTooLarge = errors.New("ring: payload exceeds 14 bytes")

	// ErrInvalidLength is returned when a frame offered to ParsePacket is
	// not exactly 16 bytes.
	ErrInvalidLength = errors.New("ring: packet must be 16 bytes")

	// ErrResponseTimeout is returned when no matching response frame
	// arrives within the exchange deadline.
	ErrResponseTimeout = errors.New("ring: timeout waiting for response")

	// ErrBulkTransferTimeout is returned when a big-data stream does not
	// complete within the session deadline.
	ErrBulkTransferTimeout = errors.New("ring: timeout waiting for big data stream")

	// ErrMissingTimestampMarker is returned when a sleep stream carried no
	// embedded timestamp and the caller supplied no fallback start time.
	// The decoder never invents one.
	ErrMissingTimestampMarker = errors.New("ring: stream has no timestamp marker and no fallback start time was given")
)
