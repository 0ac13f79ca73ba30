package sctp

// chunkAbort is an ABORT (RFC 4960 §3.3.7). This engine sends a bare one
// (no Error Causes) when tearing down, and only needs to recognize the
// type on receipt — the dispatch only cares that the peer aborted, not why.
type chunkAbort struct{}

func (c *chunkAbort) marshal() ([]byte, error) {
	return buildChunk(chunkTypeAbort, 0, nil), nil
}
