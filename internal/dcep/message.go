// Package dcep implements the small slice of the Data Channel Establishment
// Protocol (RFC 8832) this engine needs: recognizing an inbound
// DATA_CHANNEL_OPEN message and building the DATA_CHANNEL_ACK reply. The
// channel's label, protocol, and reliability parameters are parsed for
// completeness but otherwise unused — this engine always accepts with a
// bare ack, it never negotiates channel semantics.
package dcep

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// MessageType is the one-byte discriminant at the front of every DCEP
// message.
type MessageType byte

const (
	TypeAck  MessageType = 0x02
	TypeOpen MessageType = 0x03
)

const channelOpenHeaderLength = 12

// Message is anything Parse can recognize.
type Message interface {
	Marshal() ([]byte, error)
	messageType() MessageType
}

// ChannelOpen is a DATA_CHANNEL_OPEN message (RFC 8832 §5.1).
type ChannelOpen struct {
	ChannelType          byte
	Priority             uint16
	ReliabilityParameter uint32
	Label                []byte
	Protocol             []byte
}

func (m *ChannelOpen) messageType() MessageType { return TypeOpen }

// Marshal encodes m per RFC 8832 §5.1.
func (m *ChannelOpen) Marshal() ([]byte, error) {
	raw := make([]byte, channelOpenHeaderLength+len(m.Label)+len(m.Protocol))
	raw[0] = byte(TypeOpen)
	raw[1] = m.ChannelType
	binary.BigEndian.PutUint16(raw[2:4], m.Priority)
	binary.BigEndian.PutUint32(raw[4:8], m.ReliabilityParameter)
	binary.BigEndian.PutUint16(raw[8:10], uint16(len(m.Label)))
	binary.BigEndian.PutUint16(raw[10:12], uint16(len(m.Protocol)))
	copy(raw[channelOpenHeaderLength:], m.Label)
	copy(raw[channelOpenHeaderLength+len(m.Label):], m.Protocol)
	return raw, nil
}

func unmarshalChannelOpen(raw []byte) (*ChannelOpen, error) {
	if len(raw) < channelOpenHeaderLength {
		return nil, errors.Errorf("dcep: DATA_CHANNEL_OPEN too short: %d bytes", len(raw))
	}
	labelLength := int(binary.BigEndian.Uint16(raw[8:10]))
	protocolLength := int(binary.BigEndian.Uint16(raw[10:12]))
	if channelOpenHeaderLength+labelLength+protocolLength > len(raw) {
		return nil, errors.Errorf("dcep: DATA_CHANNEL_OPEN label/protocol length exceeds message")
	}
	m := &ChannelOpen{
		ChannelType:          raw[1],
		Priority:             binary.BigEndian.Uint16(raw[2:4]),
		ReliabilityParameter: binary.BigEndian.Uint32(raw[4:8]),
	}
	labelEnd := channelOpenHeaderLength + labelLength
	m.Label = append([]byte(nil), raw[channelOpenHeaderLength:labelEnd]...)
	m.Protocol = append([]byte(nil), raw[labelEnd:labelEnd+protocolLength]...)
	return m, nil
}

// ChannelAck is a DATA_CHANNEL_ACK message: a single type byte, matching
// the one-byte user_data the reference implementation sends.
type ChannelAck struct{}

func (m *ChannelAck) messageType() MessageType { return TypeAck }

func (m *ChannelAck) Marshal() ([]byte, error) {
	return []byte{byte(TypeAck)}, nil
}

// Parse dispatches on the message's first byte.
func Parse(raw []byte) (Message, error) {
	if len(raw) < 1 {
		return nil, errors.Errorf("dcep: empty message")
	}
	switch MessageType(raw[0]) {
	case TypeOpen:
		return unmarshalChannelOpen(raw)
	case TypeAck:
		return &ChannelAck{}, nil
	default:
		return nil, errors.Errorf("dcep: unrecognized message type %#x", raw[0])
	}
}
