package webrtcdc

import "github.com/rtcdata/webrtcdc/internal/sctp"

// Re-exported wire and timing constants, per spec §6.
const (
	HeartbeatInterval  = sctp.HeartbeatInterval
	MaxUDPPayloadSize  = sctp.MaxUDPPayloadSize
	MaxDTLSMessageSize = sctp.MaxDTLSMessageSize
	MaxSCTPPacketSize  = sctp.MaxSCTPPacketSize
	SCTPBufferSize     = sctp.BufferSize
	SCTPMaxChunks      = sctp.MaxChunksPerPacket
	StateCookie        = sctp.StateCookie
	HeartbeatCookie    = sctp.HeartbeatInfoCookie
)
