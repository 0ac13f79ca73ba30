// Package webrtcdc implements a per-client WebRTC data-channel engine:
// DTLS 1.2 handshake and record layer, a minimal passive SCTP association,
// and DCEP channel negotiation, all driven purely by buffered UDP
// datagrams. A Client owns no socket and makes no blocking I/O call on its
// caller's goroutine — every entry point either returns immediately or
// polls a background result non-blockingly.
package webrtcdc

import (
	"crypto/tls"
	"errors"
	"io"
	"net"
	"time"

	"github.com/pion/dtls/v3"
	"github.com/pion/logging"

	"github.com/rtcdata/webrtcdc/internal/dtlsshim"
	"github.com/rtcdata/webrtcdc/internal/sctp"
)

// dtlsPhase is the sum type spec §9 Design Notes calls for: "a state
// machine... modeled as a sum type with per-variant payload". Go has no
// tagged union, so the phase is an enum and the live payload (the *dtls.Conn)
// is just a field that is only meaningful once phase >= dtlsEstablished.
type dtlsPhase int

const (
	dtlsHandshake dtlsPhase = iota
	dtlsEstablished
	dtlsShuttingDown
	dtlsShutdown
)

type handshakeResult struct {
	conn *dtls.Conn
	err  error
}

// Client is the engine for one remote peer. Every exported method except
// the constructor is safe to call only from the single goroutine that owns
// the Client — there is no internal locking, by design (spec §2: "a single
// logical owner drives it").
type Client struct {
	remoteAddr net.Addr
	log        logging.LeveledLogger
	pool       BufferPool
	now        func() time.Time

	shim *dtlsshim.Conn

	phase       dtlsPhase
	conn        *dtls.Conn
	handshakeCh chan handshakeResult

	assoc sctp.Association

	handshakeErr error

	lastActivity time.Time
	lastSent     time.Time

	received []Message

	scratch [sctp.MaxSCTPPacketSize]byte
}

// NewClient starts a Client for remoteAddr. The DTLS handshake begins
// immediately in a background goroutine (mirroring how the teacher's
// dtlstransport.go and internal/network/manager.go drive pion/dtls.Server
// off the caller's goroutine); its outcome is observed by the first
// ReceiveIncoming call after it finishes, never blocking the caller.
func NewClient(remoteAddr net.Addr, cfg *Config) *Client {
	cfg = cfg.withDefaults()

	shim := dtlsshim.New(remoteAddr.String())

	dtlsConfig := &dtls.Config{
		Certificates:       []tls.Certificate{cfg.Certificate},
		ClientAuth:         dtls.RequireAnyClientCert,
		InsecureSkipVerify: true,
		LoggerFactory:      cfg.LoggerFactory,
	}

	c := &Client{
		remoteAddr:  remoteAddr,
		log:         cfg.LoggerFactory.NewLogger("webrtcdc"),
		pool:        cfg.BufferPool,
		now:         cfg.Clock,
		shim:        shim,
		phase:       dtlsHandshake,
		handshakeCh: make(chan handshakeResult, 1),
		assoc:       sctp.NewAssociation(cfg.Rand),
	}
	c.lastActivity = c.now()
	c.lastSent = c.now()

	go func() {
		conn, err := dtls.Server(shim, dtlsConfig)
		c.handshakeCh <- handshakeResult{conn: conn, err: err}
	}()

	return c
}

// pollHandshake observes the background dtls.Server call's outcome, if any.
// pion/dtls runs the handshake to completion or failure in one blocking
// call with no way to distinguish a transient, retryable failure from a
// fatal setup error (unlike OpenSSL's BIO-pump model, which can report
// "failure, stay in Handshake" separately from "setup failure, abort").
// Every handshake error this engine observes is therefore terminal; see
// DESIGN.md.
func (c *Client) pollHandshake() {
	if c.phase != dtlsHandshake {
		return
	}
	select {
	case res := <-c.handshakeCh:
		if res.err != nil {
			c.log.Warnf("webrtcdc: dtls handshake failed for %s: %v", c.remoteAddr, res.err)
			c.handshakeErr = res.err
			c.phase = dtlsShutdown
			return
		}
		c.log.Infof("webrtcdc: dtls established for %s", c.remoteAddr)
		c.conn = res.conn
		c.phase = dtlsEstablished
		c.lastActivity = c.now()
	default:
	}
}

// ReceiveIncoming hands one UDP payload to the client. It advances the
// DTLS handshake or record layer, then drains as many plaintext SCTP
// packets as the record layer can produce, dispatching each to the SCTP
// association (spec §4.1).
func (c *Client) ReceiveIncoming(datagram []byte) error {
	if c.phase == dtlsShutdown {
		return &NotConnectedError{}
	}
	if c.phase == dtlsShuttingDown {
		// pion/dtls's Conn.Close does not expose OpenSSL's two-valued
		// shutdown result (sent vs. both sides closed); resolve to
		// Shutdown on the next activity we observe rather than waiting
		// for a signal pion/dtls never gives us. Close has also closed
		// the shim, so the datagram is not queued. See DESIGN.md.
		c.phase = dtlsShutdown
		c.log.Infof("webrtcdc: dtls shutdown complete for %s", c.remoteAddr)
		return nil
	}
	if len(datagram) > MaxUDPPayloadSize {
		c.log.Debugf("webrtcdc: dropping oversized datagram from %s (%d bytes)", c.remoteAddr, len(datagram))
		return nil
	}
	if err := c.shim.PushInbound(datagram); err != nil {
		c.log.Debugf("webrtcdc: inbound queue rejected datagram from %s: %v", c.remoteAddr, err)
		return &IncompletePacketReadError{}
	}

	c.pollHandshake()

	if c.phase == dtlsShutdown && c.handshakeErr != nil {
		err := c.handshakeErr
		c.handshakeErr = nil
		return &TLSSetupError{Err: err}
	}

	if c.phase == dtlsEstablished {
		return c.drainPlaintext()
	}
	return nil
}

func (c *Client) drainPlaintext() error {
	for {
		if err := c.conn.SetReadDeadline(expiredDeadline); err != nil {
			return &TLSError{Err: err}
		}
		n, err := c.conn.Read(c.scratch[:])
		if err != nil {
			if isTimeout(err) {
				return nil
			}
			if errors.Is(err, io.EOF) {
				c.log.Infof("webrtcdc: dtls close notify received from %s", c.remoteAddr)
				return c.StartShutdown()
			}
			c.log.Warnf("webrtcdc: dtls read error for %s: %v", c.remoteAddr, err)
			c.phase = dtlsShutdown
			return &TLSError{Err: err}
		}

		pkt, perr := sctp.ParsePacket(c.scratch[:n], c.log)
		if perr != nil {
			c.log.Debugf("webrtcdc: dropping malformed sctp packet from %s: %v", c.remoteAddr, perr)
			continue
		}

		result := c.assoc.Dispatch(pkt, c.log)

		for _, m := range result.Messages {
			buf := c.pool.Acquire()
			buf.Append(m.Data)
			c.received = append(c.received, Message{Type: toMessageType(m.Kind), Data: buf})
		}
		if result.Activity || len(result.Messages) > 0 {
			c.lastActivity = c.now()
		}
		for _, out := range result.Outgoing {
			if err := c.writePacket(out); err != nil {
				return err
			}
		}
		if result.PeerClosed {
			if err := c.StartShutdown(); err != nil {
				return err
			}
		}
	}
}

func (c *Client) writePacket(pkt *sctp.Packet) error {
	raw, err := pkt.Marshal()
	if err != nil {
		return &IncompletePacketWriteError{}
	}
	if _, err := c.conn.Write(raw); err != nil {
		c.log.Warnf("webrtcdc: dtls write error for %s: %v", c.remoteAddr, err)
		c.phase = dtlsShutdown
		return &TLSError{Err: err}
	}
	c.lastSent = c.now()
	return nil
}

// TakeOutgoing drains and returns every datagram queued for this client
// since the last call, in order. The caller owns the returned buffers and
// must Release each one. Returns nil once the client is Shutdown.
func (c *Client) TakeOutgoing() []*PooledBuffer {
	if c.phase == dtlsShutdown {
		return nil
	}
	datagrams, err := c.shim.DrainOutbound(c.scratch[:])
	if err != nil {
		c.log.Debugf("webrtcdc: drain outbound failed for %s: %v", c.remoteAddr, err)
	}
	if len(datagrams) == 0 {
		return nil
	}
	out := make([]*PooledBuffer, 0, len(datagrams))
	for _, d := range datagrams {
		buf := c.pool.Acquire()
		buf.Append(d)
		out = append(out, buf)
	}
	return out
}

// SendMessage queues one application message for delivery, requiring both
// an established DTLS record layer and an established SCTP association
// (spec §4.1, §7).
func (c *Client) SendMessage(kind MessageType, data []byte) error {
	if c.phase != dtlsEstablished {
		return &NotConnectedError{}
	}
	if c.assoc.State != sctp.AssociationEstablished {
		return &NotEstablishedError{}
	}
	ppid := sctp.PPIDString
	if kind == Binary {
		ppid = sctp.PPIDBinary
	}
	return c.writePacket(c.assoc.BuildDataPacket(ppid, data))
}

// ReceiveMessages drains and returns every application message received
// since the last call, in delivery order. The caller owns the returned
// buffers and must Release each one.
func (c *Client) ReceiveMessages() []Message {
	if len(c.received) == 0 {
		return nil
	}
	out := c.received
	c.received = nil
	return out
}

// GeneratePeriodic should be called regularly by the owner's driving loop.
// Once both DTLS and SCTP are established, it sends a HEARTBEAT if more
// than HeartbeatInterval has elapsed since the last outbound packet.
func (c *Client) GeneratePeriodic() error {
	if c.phase != dtlsEstablished || c.assoc.State != sctp.AssociationEstablished {
		return nil
	}
	if c.now().Sub(c.lastSent) <= HeartbeatInterval {
		return nil
	}
	return c.writePacket(c.assoc.BuildHeartbeat([]byte(HeartbeatCookie)))
}

// StartShutdown begins tearing the client down: if the SCTP association is
// not already Shutdown, it sends an ABORT first (spec §4.3/§9 — this
// ordering means a SHUTDOWN-ACK/ABORT received from the peer, which flips
// SCTP to Shutdown before calling this, never itself triggers a responsive
// ABORT). It then closes the DTLS connection.
func (c *Client) StartShutdown() error {
	if c.phase != dtlsEstablished {
		return nil
	}
	if c.assoc.State != sctp.AssociationShutdown {
		if err := c.writePacket(c.assoc.BuildAbort()); err != nil {
			return err
		}
		c.assoc.State = sctp.AssociationShutdown
	}
	if err := c.conn.Close(); err != nil {
		c.log.Debugf("webrtcdc: dtls close for %s returned %v", c.remoteAddr, err)
	}
	c.phase = dtlsShuttingDown
	return nil
}

// IsEstablished reports whether both the DTLS record layer and the SCTP
// association have completed their handshakes.
func (c *Client) IsEstablished() bool {
	return c.phase == dtlsEstablished && c.assoc.State == sctp.AssociationEstablished
}

// IsShutdown reports whether the client has reached its terminal state.
func (c *Client) IsShutdown() bool { return c.phase == dtlsShutdown }

// LastActivity returns the time of the most recent inbound proof of life:
// DTLS establishment, or an SCTP packet carrying INIT, an accepted
// COOKIE-ECHO, DATA, HEARTBEAT, HEARTBEAT-ACK or SACK. Before any of these
// it is the time the Client was created.
func (c *Client) LastActivity() time.Time { return c.lastActivity }

func toMessageType(k sctp.RecvKind) MessageType {
	if k == sctp.RecvBinary {
		return Binary
	}
	return Text
}

var expiredDeadline = time.Unix(0, 1)

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
