package sctp

import "github.com/pkg/errors"

// chunkHeartbeat carries an opaque Heartbeat Info parameter (RFC 4960
// §3.3.5) that the receiver must echo back verbatim in a HEARTBEAT-ACK.
type chunkHeartbeat struct {
	info []byte
}

func parseChunkHeartbeat(_ byte, body []byte) (*chunkHeartbeat, error) {
	ptype, value, _, err := decodeParam(body)
	if err != nil {
		return nil, errors.Wrap(err, "sctp: HEARTBEAT")
	}
	if ptype != paramTypeHeartbeatInfo {
		return nil, errors.Errorf("sctp: HEARTBEAT missing heartbeat-info parameter")
	}
	return &chunkHeartbeat{info: append([]byte(nil), value...)}, nil
}

func (c *chunkHeartbeat) marshal() ([]byte, error) {
	return buildChunk(chunkTypeHeartbeat, 0, encodeParam(paramTypeHeartbeatInfo, c.info)), nil
}
