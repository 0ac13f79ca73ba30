package sctp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const initCommonFieldsSize = 16

// chunkInit is the INIT chunk a peer sends to open the association. This
// engine never sends one (it is passive-only, see spec §1 Non-goals), only
// parses it.
type chunkInit struct {
	initiateTag              uint32
	advertisedReceiverWindow uint32
	numOutboundStreams       uint16
	numInboundStreams        uint16
	initialTSN               uint32
}

func parseChunkInit(_ byte, body []byte) (*chunkInit, error) {
	if len(body) < initCommonFieldsSize {
		return nil, errors.Errorf("sctp: INIT chunk too short: %d bytes", len(body))
	}
	return &chunkInit{
		initiateTag:              binary.BigEndian.Uint32(body[0:4]),
		advertisedReceiverWindow: binary.BigEndian.Uint32(body[4:8]),
		numOutboundStreams:       binary.BigEndian.Uint16(body[8:10]),
		numInboundStreams:        binary.BigEndian.Uint16(body[10:12]),
		initialTSN:               binary.BigEndian.Uint32(body[12:16]),
	}, nil
}

func (c *chunkInit) marshal() ([]byte, error) {
	body := make([]byte, initCommonFieldsSize)
	binary.BigEndian.PutUint32(body[0:4], c.initiateTag)
	binary.BigEndian.PutUint32(body[4:8], c.advertisedReceiverWindow)
	binary.BigEndian.PutUint16(body[8:10], c.numOutboundStreams)
	binary.BigEndian.PutUint16(body[10:12], c.numInboundStreams)
	binary.BigEndian.PutUint32(body[12:16], c.initialTSN)
	return buildChunk(chunkTypeInit, 0, body), nil
}
