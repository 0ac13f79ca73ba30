package sctp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// chunkForwardTSN (RFC 3758) tells the peer to advance its cumulative TSN
// point past data this engine will never retransmit. No per-stream skip
// list is carried — this engine has one stream and no retransmission
// buffer (spec §1 Non-goals), so the new cumulative TSN is the whole story.
type chunkForwardTSN struct {
	newCumulativeTSN uint32
}

func parseChunkForwardTSN(_ byte, body []byte) (*chunkForwardTSN, error) {
	if len(body) < 4 {
		return nil, errors.Errorf("sctp: FORWARD-TSN chunk too short: %d bytes", len(body))
	}
	return &chunkForwardTSN{newCumulativeTSN: binary.BigEndian.Uint32(body[0:4])}, nil
}

func (c *chunkForwardTSN) marshal() ([]byte, error) {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body[0:4], c.newCumulativeTSN)
	return buildChunk(chunkTypeForwardTSN, 0, body), nil
}
