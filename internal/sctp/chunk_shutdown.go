package sctp

// chunkShutdown is a SHUTDOWN (RFC 4960 §3.3.8). This engine only receives
// these (it never initiates graceful SCTP shutdown itself, see client.go),
// replying with a SHUTDOWN-ACK.
type chunkShutdown struct{}

func (c *chunkShutdown) marshal() ([]byte, error) {
	return buildChunk(chunkTypeShutdown, 0, make([]byte, 4)), nil
}
