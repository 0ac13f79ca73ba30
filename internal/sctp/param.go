package sctp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const paramHeaderSize = 4

const (
	paramTypeHeartbeatInfo uint16 = 1
	paramTypeStateCookie   uint16 = 7
)

// encodeParam wraps value in a TLV parameter (RFC 4960 §3.2.1), padded to a
// 4-byte boundary.
func encodeParam(ptype uint16, value []byte) []byte {
	raw := make([]byte, paramHeaderSize+len(value))
	binary.BigEndian.PutUint16(raw[0:2], ptype)
	binary.BigEndian.PutUint16(raw[2:4], uint16(paramHeaderSize+len(value)))
	copy(raw[4:], value)
	if pad := getPadding(len(raw)); pad > 0 {
		raw = append(raw, make([]byte, pad)...)
	}
	return raw
}

// decodeParam reads one TLV parameter from the front of raw, returning its
// type, value, and how many bytes (including padding) it consumed.
func decodeParam(raw []byte) (ptype uint16, value []byte, consumed int, err error) {
	if len(raw) < paramHeaderSize {
		return 0, nil, 0, errors.Errorf("sctp: truncated parameter header")
	}
	ptype = binary.BigEndian.Uint16(raw[0:2])
	length := int(binary.BigEndian.Uint16(raw[2:4]))
	if length < paramHeaderSize || length > len(raw) {
		return 0, nil, 0, errors.Errorf("sctp: invalid parameter length %d", length)
	}
	value = raw[paramHeaderSize:length]
	consumed = length + getPadding(length)
	return ptype, value, consumed, nil
}
