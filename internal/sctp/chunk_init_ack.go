package sctp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// chunkInitAck is the INIT-ACK this engine replies with, carrying the
// fixed state cookie as a TLV parameter (RFC 4960 §3.3.3).
type chunkInitAck struct {
	initiateTag              uint32
	advertisedReceiverWindow uint32
	numOutboundStreams       uint16
	numInboundStreams        uint16
	initialTSN               uint32
	stateCookie              []byte
}

func parseChunkInitAck(_ byte, body []byte) (*chunkInitAck, error) {
	if len(body) < initCommonFieldsSize {
		return nil, errors.Errorf("sctp: INIT-ACK chunk too short: %d bytes", len(body))
	}
	c := &chunkInitAck{
		initiateTag:              binary.BigEndian.Uint32(body[0:4]),
		advertisedReceiverWindow: binary.BigEndian.Uint32(body[4:8]),
		numOutboundStreams:       binary.BigEndian.Uint16(body[8:10]),
		numInboundStreams:        binary.BigEndian.Uint16(body[10:12]),
		initialTSN:               binary.BigEndian.Uint32(body[12:16]),
	}
	rest := body[initCommonFieldsSize:]
	for len(rest) > 0 {
		ptype, value, consumed, err := decodeParam(rest)
		if err != nil {
			break
		}
		if ptype == paramTypeStateCookie {
			c.stateCookie = append([]byte(nil), value...)
		}
		rest = rest[consumed:]
	}
	return c, nil
}

func (c *chunkInitAck) marshal() ([]byte, error) {
	body := make([]byte, initCommonFieldsSize)
	binary.BigEndian.PutUint32(body[0:4], c.initiateTag)
	binary.BigEndian.PutUint32(body[4:8], c.advertisedReceiverWindow)
	binary.BigEndian.PutUint16(body[8:10], c.numOutboundStreams)
	binary.BigEndian.PutUint16(body[10:12], c.numInboundStreams)
	binary.BigEndian.PutUint32(body[12:16], c.initialTSN)
	body = append(body, encodeParam(paramTypeStateCookie, c.stateCookie)...)
	return buildChunk(chunkTypeInitAck, 0, body), nil
}
