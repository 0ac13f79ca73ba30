package sctp

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/pion/logging"
	"github.com/pkg/errors"
)

const packetHeaderSize = 12

var crcTable = crc32.MakeTable(crc32.Castagnoli)

func getPadding(length int) int {
	return (4 - (length % 4)) % 4
}

// Packet is one SCTP packet: a 12-byte common header followed by one or
// more chunks, laid out exactly as RFC 4960 §3 describes it.
type Packet struct {
	SourcePort      uint16
	DestinationPort uint16
	VerificationTag uint32
	Chunks          []Chunk
}

// Chunk is anything this package knows how to put on the wire inside a
// Packet. Parsing produces the concrete chunk types in this package;
// building a reply does too.
type Chunk interface {
	marshal() ([]byte, error)
}

func packetChecksum(raw []byte) uint32 {
	return crc32.Checksum(raw, crcTable)
}

// ParsePacket decodes raw into a Packet, verifying the CRC32c checksum and
// then walking the chunk list. Chunk types this package does not recognize
// are logged and skipped — the rest of the packet is still parsed — per
// this engine's "drop and continue" parse discipline.
func ParsePacket(raw []byte, log logging.LeveledLogger) (*Packet, error) {
	if len(raw) < packetHeaderSize {
		return nil, errors.Errorf("sctp: packet too short: %d bytes", len(raw))
	}

	theirChecksum := binary.LittleEndian.Uint32(raw[8:12])
	zeroed := make([]byte, len(raw))
	copy(zeroed, raw)
	zeroed[8], zeroed[9], zeroed[10], zeroed[11] = 0, 0, 0, 0
	if ourChecksum := packetChecksum(zeroed); ourChecksum != theirChecksum {
		return nil, errors.Errorf("sctp: checksum mismatch: got %x want %x", theirChecksum, ourChecksum)
	}

	p := &Packet{
		SourcePort:      binary.BigEndian.Uint16(raw[0:2]),
		DestinationPort: binary.BigEndian.Uint16(raw[2:4]),
		VerificationTag: binary.BigEndian.Uint32(raw[4:8]),
	}

	offset := packetHeaderSize
	for offset < len(raw) {
		if offset+4 > len(raw) {
			return nil, errors.Errorf("sctp: truncated chunk header at offset %d", offset)
		}
		typ := chunkType(raw[offset])
		flags := raw[offset+1]
		length := int(binary.BigEndian.Uint16(raw[offset+2 : offset+4]))
		if length < 4 || offset+length > len(raw) {
			return nil, errors.Errorf("sctp: invalid chunk length %d at offset %d", length, offset)
		}
		body := raw[offset+4 : offset+length]

		if len(p.Chunks) >= MaxChunksPerPacket {
			if log != nil {
				log.Debugf("sctp: packet exceeds %d chunks, ignoring remainder", MaxChunksPerPacket)
			}
			break
		}

		c, err := parseChunk(typ, flags, body)
		switch {
		case err == errUnknownChunkType:
			if log != nil {
				log.Debugf("sctp: skipping unrecognized chunk type %d", typ)
			}
		case err != nil:
			return nil, err
		default:
			p.Chunks = append(p.Chunks, c)
		}

		offset += length + getPadding(length)
	}

	return p, nil
}

// Marshal encodes the packet, computing and filling in its checksum.
func (p *Packet) Marshal() ([]byte, error) {
	raw := make([]byte, packetHeaderSize)
	binary.BigEndian.PutUint16(raw[0:2], p.SourcePort)
	binary.BigEndian.PutUint16(raw[2:4], p.DestinationPort)
	binary.BigEndian.PutUint32(raw[4:8], p.VerificationTag)

	for _, c := range p.Chunks {
		body, err := c.marshal()
		if err != nil {
			return nil, err
		}
		raw = append(raw, body...)
		if pad := getPadding(len(body)); pad > 0 {
			raw = append(raw, make([]byte, pad)...)
		}
	}

	if len(raw) > MaxSCTPPacketSize {
		return nil, errors.Errorf("sctp: marshaled packet exceeds %d bytes", MaxSCTPPacketSize)
	}

	binary.LittleEndian.PutUint32(raw[8:12], packetChecksum(raw))
	return raw, nil
}
