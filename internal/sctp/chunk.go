package sctp

import "github.com/pkg/errors"

type chunkType uint8

const (
	chunkTypeData         chunkType = 0
	chunkTypeInit         chunkType = 1
	chunkTypeInitAck      chunkType = 2
	chunkTypeSack         chunkType = 3
	chunkTypeHeartbeat    chunkType = 4
	chunkTypeHeartbeatAck chunkType = 5
	chunkTypeAbort        chunkType = 6
	chunkTypeShutdown     chunkType = 7
	chunkTypeShutdownAck  chunkType = 8
	chunkTypeCookieEcho   chunkType = 10
	chunkTypeCookieAck    chunkType = 11
	chunkTypeForwardTSN   chunkType = 192
)

var errUnknownChunkType = errors.New("sctp: unknown chunk type")

// buildChunk assembles the 4-byte chunk header (type, flags, length) in
// front of body, per RFC 4960 §3.2. Padding to a 4-byte boundary is the
// caller's (Packet.Marshal's) job.
func buildChunk(t chunkType, flags byte, body []byte) []byte {
	raw := make([]byte, 4+len(body))
	raw[0] = byte(t)
	raw[1] = flags
	length := uint16(4 + len(body))
	raw[2] = byte(length >> 8)
	raw[3] = byte(length)
	copy(raw[4:], body)
	return raw
}

func parseChunk(t chunkType, flags byte, body []byte) (Chunk, error) {
	switch t {
	case chunkTypeInit:
		return parseChunkInit(flags, body)
	case chunkTypeInitAck:
		return parseChunkInitAck(flags, body)
	case chunkTypeCookieEcho:
		return parseChunkCookieEcho(flags, body)
	case chunkTypeCookieAck:
		return &chunkCookieAck{}, nil
	case chunkTypeData:
		return parseChunkData(flags, body)
	case chunkTypeSack:
		return parseChunkSack(flags, body)
	case chunkTypeHeartbeat:
		return parseChunkHeartbeat(flags, body)
	case chunkTypeHeartbeatAck:
		return parseChunkHeartbeatAck(flags, body)
	case chunkTypeAbort:
		return &chunkAbort{}, nil
	case chunkTypeShutdown:
		return &chunkShutdown{}, nil
	case chunkTypeShutdownAck:
		return &chunkShutdownAck{}, nil
	case chunkTypeForwardTSN:
		return parseChunkForwardTSN(flags, body)
	default:
		return nil, errUnknownChunkType
	}
}
