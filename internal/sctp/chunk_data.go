package sctp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	dataEndingFragmentBitmask    byte = 1
	dataBeginningFragmentBitmask byte = 2
	dataUnorderedBitmask         byte = 4

	// flagCompleteUnreliable marks a DATA chunk as a single, unordered,
	// unfragmented message — the only shape this engine ever sends, since
	// it carries exactly one datagram per data channel message and never
	// reassembles (spec §1 Non-goals: no fragmentation/reassembly).
	flagCompleteUnreliable = dataEndingFragmentBitmask | dataBeginningFragmentBitmask | dataUnorderedBitmask
)

const dataHeaderSize = 12

// chunkData is a DATA chunk (RFC 4960 §3.3.1): one data-channel message (or
// DCEP control message) tagged with a TSN and a payload protocol id.
type chunkData struct {
	flags                byte
	tsn                  uint32
	streamID             uint16
	streamSequenceNumber uint16
	payloadProtocolID    uint32
	userData             []byte
}

func newDataChunk(tsn uint32, streamID uint16, ppid uint32, userData []byte) *chunkData {
	return &chunkData{
		flags:             flagCompleteUnreliable,
		tsn:               tsn,
		streamID:          streamID,
		payloadProtocolID: ppid,
		userData:          userData,
	}
}

func parseChunkData(flags byte, body []byte) (*chunkData, error) {
	if len(body) < dataHeaderSize {
		return nil, errors.Errorf("sctp: DATA chunk too short: %d bytes", len(body))
	}
	return &chunkData{
		flags:                flags,
		tsn:                  binary.BigEndian.Uint32(body[0:4]),
		streamID:             binary.BigEndian.Uint16(body[4:6]),
		streamSequenceNumber: binary.BigEndian.Uint16(body[6:8]),
		payloadProtocolID:    binary.BigEndian.Uint32(body[8:12]),
		userData:             append([]byte(nil), body[12:]...),
	}, nil
}

func (c *chunkData) marshal() ([]byte, error) {
	body := make([]byte, dataHeaderSize+len(c.userData))
	binary.BigEndian.PutUint32(body[0:4], c.tsn)
	binary.BigEndian.PutUint16(body[4:6], c.streamID)
	binary.BigEndian.PutUint16(body[6:8], c.streamSequenceNumber)
	binary.BigEndian.PutUint32(body[8:12], c.payloadProtocolID)
	copy(body[dataHeaderSize:], c.userData)
	return buildChunk(chunkTypeData, c.flags, body), nil
}
