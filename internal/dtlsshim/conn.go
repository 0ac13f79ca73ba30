// Package dtlsshim bridges buffered UDP datagrams to the byte-stream
// net.Conn that github.com/pion/dtls/v3 expects to read and write, without
// owning any socket or blocking on I/O itself (spec §4.2). It is the
// literal implementation of "two queues of UDP payloads, datagram boundary
// preserving" from spec §3/§4.2.
package dtlsshim

import (
	"net"
	"time"

	"github.com/pion/transport/v4/packetio"
)

// queueLimit bounds how much unread data either queue will hold before
// Write starts returning an error. This is generous headroom, not a
// negotiated flow-control window — true backpressure policy belongs to
// whatever owns the UDP socket (spec §1 external collaborator).
const queueLimit = 4 << 20

type addr string

func (a addr) Network() string { return "udp" }
func (a addr) String() string  { return string(a) }

// Conn is a net.Conn with no underlying socket: Write enqueues a
// datagram-sized buffer for the owner to collect with DrainOutbound, and
// Read serves datagrams the owner pushed in with PushInbound. Deadlines on
// either end force an otherwise-blocking queue read to return immediately,
// the same trick internal/mux's Endpoint plays over packetio.Buffer.
type Conn struct {
	inbound  *packetio.Buffer
	outbound *packetio.Buffer
	remote   net.Addr
}

// New returns a Conn for a client at the given remote address. remote may
// be empty if the owner does not track one.
func New(remote string) *Conn {
	in := packetio.NewBuffer()
	in.SetLimitSize(queueLimit)
	out := packetio.NewBuffer()
	out.SetLimitSize(queueLimit)
	return &Conn{inbound: in, outbound: out, remote: addr(remote)}
}

// PushInbound queues one UDP payload for the DTLS/SCTP stack to read.
func (c *Conn) PushInbound(datagram []byte) error {
	_, err := c.inbound.Write(datagram)
	return err
}

// DrainOutbound returns every complete datagram queued for send, in
// order, using buf as scratch space. It never blocks: once the outbound
// queue is empty it returns immediately with what it has collected so far.
func (c *Conn) DrainOutbound(buf []byte) ([][]byte, error) {
	var datagrams [][]byte
	for {
		if err := c.outbound.SetReadDeadline(expiredDeadline); err != nil {
			return datagrams, err
		}
		n, err := c.outbound.Read(buf)
		if err != nil {
			if isTimeout(err) {
				return datagrams, nil
			}
			return datagrams, err
		}
		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		datagrams = append(datagrams, datagram)
	}
}

var expiredDeadline = time.Unix(0, 1)

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

func (c *Conn) Read(p []byte) (int, error)  { return c.inbound.Read(p) }
func (c *Conn) Write(p []byte) (int, error) { return c.outbound.Write(p) }

func (c *Conn) Close() error {
	_ = c.inbound.Close()
	return c.outbound.Close()
}

func (c *Conn) LocalAddr() net.Addr  { return addr("") }
func (c *Conn) RemoteAddr() net.Addr { return c.remote }

func (c *Conn) SetDeadline(t time.Time) error {
	if err := c.inbound.SetReadDeadline(t); err != nil {
		return err
	}
	return nil
}

func (c *Conn) SetReadDeadline(t time.Time) error  { return c.inbound.SetReadDeadline(t) }
func (c *Conn) SetWriteDeadline(time.Time) error   { return nil }
