// Package slcanx implements the SLCANX line-discipline core: a driver
// that multiplexes up to four independent CAN/CAN-FD logical interfaces
// over a single serial byte stream using an ASCII framing protocol.
//
// The package owns the on-wire codec, the per-channel state, the shared
// transmit pipeline, the receive parser, and the command rendezvous used
// for configuration. It does not open serial devices, manage sockets, or
// register network interfaces with the host OS — those concerns live
// behind the Transport and NetSink interfaces so this package can be
// driven by tests, a real TTY (pkg/transport/serial), or any other
// byte-stream transport.
package slcanx
