package sctp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const sackHeaderSize = 12

// chunkSack is a SACK (RFC 4960 §3.3.4). This engine always sends one with
// zero gap-ack blocks and zero duplicate TSNs — it never reorders or drops
// within a single datagram read, so there is nothing to report. Inbound
// SACKs are parsed only far enough to learn whether the peer reported any
// gap blocks at all (spec §4.3/§9: any gap block triggers a FORWARD-TSN).
type chunkSack struct {
	cumulativeTSNAck         uint32
	advertisedReceiverWindow uint32
	numGapAckBlocks          uint16
	numDuplicateTSN          uint16
}

func parseChunkSack(_ byte, body []byte) (*chunkSack, error) {
	if len(body) < sackHeaderSize {
		return nil, errors.Errorf("sctp: SACK chunk too short: %d bytes", len(body))
	}
	return &chunkSack{
		cumulativeTSNAck:         binary.BigEndian.Uint32(body[0:4]),
		advertisedReceiverWindow: binary.BigEndian.Uint32(body[4:8]),
		numGapAckBlocks:          binary.BigEndian.Uint16(body[8:10]),
		numDuplicateTSN:          binary.BigEndian.Uint16(body[10:12]),
	}, nil
}

func (c *chunkSack) marshal() ([]byte, error) {
	body := make([]byte, sackHeaderSize)
	binary.BigEndian.PutUint32(body[0:4], c.cumulativeTSNAck)
	binary.BigEndian.PutUint32(body[4:8], c.advertisedReceiverWindow)
	binary.BigEndian.PutUint16(body[8:10], c.numGapAckBlocks)
	binary.BigEndian.PutUint16(body[10:12], c.numDuplicateTSN)
	return buildChunk(chunkTypeSack, 0, body), nil
}
