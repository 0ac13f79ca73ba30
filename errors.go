package webrtcdc

import "fmt"

// TLSError wraps a DTLS record/handshake failure encountered after the
// handshake has already completed (spec §7).
type TLSError struct{ Err error }

func (e *TLSError) Error() string { return fmt.Sprintf("webrtcdc: dtls error: %v", e.Err) }
func (e *TLSError) Unwrap() error { return e.Err }

// TLSSetupError wraps a failure during the initial DTLS handshake itself.
type TLSSetupError struct{ Err error }

func (e *TLSSetupError) Error() string { return fmt.Sprintf("webrtcdc: dtls setup error: %v", e.Err) }
func (e *TLSSetupError) Unwrap() error { return e.Err }

// NotConnectedError is returned by operations that require a completed
// DTLS handshake when the client has not reached Established, or has
// already moved to ShuttingDown/Shutdown.
type NotConnectedError struct{}

func (e *NotConnectedError) Error() string { return "webrtcdc: client is not connected" }

// NotEstablishedError is returned by SendMessage when the DTLS record
// layer is up but the SCTP association has not yet reached Established.
type NotEstablishedError struct{}

func (e *NotEstablishedError) Error() string { return "webrtcdc: data channel is not established" }

// IncompletePacketReadError indicates an inbound datagram could not be
// queued because it would not fit the shim's read buffer.
type IncompletePacketReadError struct{}

func (e *IncompletePacketReadError) Error() string {
	return "webrtcdc: inbound datagram exceeds maximum read size"
}

// IncompletePacketWriteError indicates an outbound SCTP packet could not
// be marshaled into a single datagram.
type IncompletePacketWriteError struct{}

func (e *IncompletePacketWriteError) Error() string {
	return "webrtcdc: outbound packet exceeds maximum datagram size"
}
