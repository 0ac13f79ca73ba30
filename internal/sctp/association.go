package sctp

import (
	"github.com/pion/logging"

	"github.com/rtcdata/webrtcdc/internal/dcep"
)

// AssociationState is the association's own small state machine, distinct
// from (and nested inside) the Client's DTLS phase — see spec §4.3.
type AssociationState int

const (
	AssociationShutdown AssociationState = iota
	AssociationInitAck
	AssociationEstablished
)

// RecvKind distinguishes the two kinds of application message this engine
// delivers to its owner.
type RecvKind int

const (
	RecvText RecvKind = iota
	RecvBinary
)

// ReceivedMessage is one complete data-channel message pulled out of a
// DATA chunk's payload.
type ReceivedMessage struct {
	Kind RecvKind
	Data []byte
}

// DispatchResult is everything handling one inbound Packet produced: zero
// or more reply packets to send (in emission order), zero or more
// application messages to deliver, and whether the peer signalled it is
// tearing the association down.
type DispatchResult struct {
	Outgoing   []*Packet
	Messages   []ReceivedMessage
	PeerClosed bool
	Activity   bool
}

// Association is the minimal passive-role SCTP peer this engine runs per
// client: it never sends INIT, never multi-streams, never fragments or
// retransmits (spec §1 Non-goals) — it exists only to carry one data
// channel's DCEP handshake and Text/Binary messages over one stream.
type Association struct {
	rand Generator

	State AssociationState

	LocalPort  uint16
	RemotePort uint16

	LocalVerificationTag  uint32
	RemoteVerificationTag uint32

	LocalTSN  uint32
	RemoteTSN uint32
}

// NewAssociation returns an association in the Shutdown state, ready to
// receive an INIT. rand seeds the local verification tag and initial TSN
// (spec §9: "the PRNG should be injectable to produce reproducible
// values").
func NewAssociation(rand Generator) Association {
	return Association{rand: rand, State: AssociationShutdown}
}

func (a *Association) wrap(chunks ...Chunk) *Packet {
	return &Packet{
		SourcePort:      a.LocalPort,
		DestinationPort: a.RemotePort,
		VerificationTag: a.RemoteVerificationTag,
		Chunks:          chunks,
	}
}

// BuildDataPacket wraps a single application message in a DATA chunk,
// consuming (and advancing) the next local TSN.
func (a *Association) BuildDataPacket(ppid uint32, data []byte) *Packet {
	chunk := newDataChunk(a.LocalTSN, 0, ppid, data)
	a.LocalTSN++
	return a.wrap(chunk)
}

// BuildHeartbeat wraps info in a HEARTBEAT chunk.
func (a *Association) BuildHeartbeat(info []byte) *Packet {
	return a.wrap(&chunkHeartbeat{info: info})
}

// BuildAbort constructs a bare ABORT packet addressed to the peer's
// verification tag.
func (a *Association) BuildAbort() *Packet {
	return a.wrap(&chunkAbort{})
}

// Dispatch applies every chunk in pkt to the association in order,
// mirroring the per-chunk table in spec §4.3 exactly, including the
// SHUTDOWN-ACK/ABORT-before-startShutdown ordering from spec §9's
// resolved Open Question.
func (a *Association) Dispatch(pkt *Packet, log logging.LeveledLogger) DispatchResult {
	var result DispatchResult

	for _, c := range pkt.Chunks {
		switch chunk := c.(type) {
		case *chunkInit:
			a.LocalPort = pkt.DestinationPort
			a.RemotePort = pkt.SourcePort
			a.LocalVerificationTag = a.rand.Uint32()
			a.RemoteVerificationTag = chunk.initiateTag
			a.LocalTSN = a.rand.Uint32()
			a.RemoteTSN = chunk.initialTSN
			ack := &chunkInitAck{
				initiateTag:              a.LocalVerificationTag,
				advertisedReceiverWindow: BufferSize,
				numOutboundStreams:       chunk.numOutboundStreams,
				numInboundStreams:        chunk.numInboundStreams,
				initialTSN:               a.LocalTSN,
				stateCookie:              []byte(StateCookie),
			}
			result.Outgoing = append(result.Outgoing, a.wrap(ack))
			a.State = AssociationInitAck
			result.Activity = true

		case *chunkCookieEcho:
			if string(chunk.cookie) != StateCookie || a.State == AssociationShutdown {
				break
			}
			result.Outgoing = append(result.Outgoing, a.wrap(&chunkCookieAck{}))
			if a.State == AssociationInitAck {
				a.State = AssociationEstablished
				result.Activity = true
			}

		case *chunkData:
			a.RemoteTSN = MaxTSN(a.RemoteTSN, chunk.tsn)
			a.handleData(chunk, &result, log)
			result.Outgoing = append(result.Outgoing, a.wrap(&chunkSack{
				cumulativeTSNAck:         a.RemoteTSN,
				advertisedReceiverWindow: BufferSize,
			}))
			result.Activity = true

		case *chunkHeartbeat:
			result.Outgoing = append(result.Outgoing, a.wrap(&chunkHeartbeatAck{info: chunk.info}))
			result.Activity = true

		case *chunkHeartbeatAck:
			result.Activity = true

		case *chunkSack:
			if chunk.numGapAckBlocks > 0 {
				result.Outgoing = append(result.Outgoing, a.wrap(&chunkForwardTSN{newCumulativeTSN: a.LocalTSN}))
			}
			result.Activity = true

		case *chunkShutdown:
			result.Outgoing = append(result.Outgoing, a.wrap(&chunkShutdownAck{}))

		case *chunkShutdownAck:
			a.State = AssociationShutdown
			result.PeerClosed = true

		case *chunkAbort:
			a.State = AssociationShutdown
			result.PeerClosed = true

		case *chunkForwardTSN:
			a.RemoteTSN = chunk.newCumulativeTSN

		case *chunkInitAck, *chunkCookieAck:
			// This engine never sends INIT, so these never have a
			// handshake waiting on them; ignored per spec §4.3.

		default:
			if log != nil {
				log.Debugf("sctp: unhandled chunk %T", c)
			}
		}
	}

	return result
}

// handleData recognizes a DCEP DATA_CHANNEL_OPEN on the control PPID and
// queues its ack, or appends a Text/Binary message for delivery. Other
// PPIDs are logged and dropped.
func (a *Association) handleData(chunk *chunkData, result *DispatchResult, log logging.LeveledLogger) {
	switch chunk.payloadProtocolID {
	case PPIDControl:
		msg, err := dcep.Parse(chunk.userData)
		if err != nil {
			return
		}
		if _, ok := msg.(*dcep.ChannelOpen); ok {
			ack, err := (&dcep.ChannelAck{}).Marshal()
			if err != nil {
				return
			}
			reply := newDataChunk(a.LocalTSN, chunk.streamID, PPIDControl, ack)
			a.LocalTSN++
			result.Outgoing = append(result.Outgoing, a.wrap(reply))
		}
	case PPIDString:
		result.Messages = append(result.Messages, ReceivedMessage{Kind: RecvText, Data: chunk.userData})
	case PPIDBinary:
		result.Messages = append(result.Messages, ReceivedMessage{Kind: RecvBinary, Data: chunk.userData})
	default:
		if log != nil {
			log.Debugf("sctp: dropping DATA chunk with unknown PPID %d", chunk.payloadProtocolID)
		}
	}
}
