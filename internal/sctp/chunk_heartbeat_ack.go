package sctp

import "github.com/pkg/errors"

// chunkHeartbeatAck echoes back the Heartbeat Info a HEARTBEAT carried.
type chunkHeartbeatAck struct {
	info []byte
}

func parseChunkHeartbeatAck(_ byte, body []byte) (*chunkHeartbeatAck, error) {
	ptype, value, _, err := decodeParam(body)
	if err != nil {
		return nil, errors.Wrap(err, "sctp: HEARTBEAT-ACK")
	}
	if ptype != paramTypeHeartbeatInfo {
		return nil, errors.Errorf("sctp: HEARTBEAT-ACK missing heartbeat-info parameter")
	}
	return &chunkHeartbeatAck{info: append([]byte(nil), value...)}, nil
}

func (c *chunkHeartbeatAck) marshal() ([]byte, error) {
	return buildChunk(chunkTypeHeartbeatAck, 0, encodeParam(paramTypeHeartbeatInfo, c.info)), nil
}
