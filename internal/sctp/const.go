// Package sctp implements the minimal passive-role SCTP association this
// engine needs to carry a single WebRTC data channel over DTLS: packet and
// chunk codec, the INIT/COOKIE-ECHO handshake, DATA/SACK/HEARTBEAT dispatch,
// and the DCEP open/ack exchange riding on PPID CONTROL. Full RFC 4960
// (congestion control, reassembly, retransmission, multi-streaming) is out
// of scope; see the package's governing specification for the exact subset
// implemented here.
package sctp

import "time"

// Wire and timing constants shared by the Client and the association.
const (
	HeartbeatInterval   = 3 * time.Second
	MaxUDPPayloadSize   = 65507
	MaxSCTPPacketSize   = 16384
	MaxDTLSMessageSize  = MaxSCTPPacketSize
	BufferSize          = 0x40000
	MaxChunksPerPacket  = 16
	StateCookie         = "WEBRTC-UNRELIABLE-COOKIE"
	HeartbeatInfoCookie = "WEBRTC-UNRELIABLE-HEARTBEAT"
)

// Payload Protocol Identifiers, per spec §6.
const (
	PPIDControl uint32 = 50
	PPIDString  uint32 = 51
	PPIDBinary  uint32 = 53
)

// Generator is the subset of github.com/pion/randutil's Generator this
// package needs. Keeping it narrow lets tests inject a deterministic
// implementation (spec §9 Design Notes: "the PRNG should be injectable to
// produce reproducible values") without depending on randutil's full
// interface shape.
type Generator interface {
	Uint32() uint32
}
