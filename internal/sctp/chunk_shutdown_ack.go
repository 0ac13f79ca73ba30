package sctp

// chunkShutdownAck is a SHUTDOWN-ACK (RFC 4960 §3.3.9), empty-bodied. This
// engine both sends one (in reply to SHUTDOWN) and receives one (as a
// signal to tear its own side down, per spec §4.3/§9).
type chunkShutdownAck struct{}

func (c *chunkShutdownAck) marshal() ([]byte, error) {
	return buildChunk(chunkTypeShutdownAck, 0, nil), nil
}
