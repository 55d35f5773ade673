package slcanx

import "errors"

// Sentinel errors returned by the driver. Callers should use errors.Is,
// not string comparison or type assertion.
var (
	// ErrNoDevice is returned by a send or command path when the port has
	// no transport bound (the transport is gone or was never attached).
	ErrNoDevice = errors.New("slcanx: no transport attached")

	// ErrBusy is returned by Channel.Send when the outbound buffer does
	// not have enough headroom for another record.
	ErrBusy = errors.New("slcanx: outbound buffer busy")

	// ErrDecode is returned internally when a received record fails to
	// parse; it is never surfaced to a Send caller, only counted.
	ErrDecode = errors.New("slcanx: malformed record")

	// ErrOverflow names the condition of the inbound line buffer filling
	// before a terminator is seen. No function returns it: the receive
	// parser counts an overflow in the first channel's RxOverflows.
	ErrOverflow = errors.New("slcanx: inbound line overflow")

	// ErrCommandTimeout is returned by a command rendezvous that received
	// no completion notification within the timeout window.
	ErrCommandTimeout = errors.New("slcanx: command timed out")

	// ErrCommandInterrupted is returned by a command rendezvous whose
	// context was cancelled while waiting.
	ErrCommandInterrupted = errors.New("slcanx: command interrupted")

	// ErrBusOff names the bus-off condition. No function returns it:
	// bus-off is reported through NetSink.HandleBusOff and Channel.State.
	ErrBusOff = errors.New("slcanx: channel is bus-off")

	// ErrInvalidConfig is returned by Open when the requested
	// configuration cannot be expressed on the wire (e.g. FD enabled
	// without a data bitrate, or a bitrate outside the supported table).
	ErrInvalidConfig = errors.New("slcanx: invalid channel configuration")
)
