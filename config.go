package webrtcdc

import (
	"crypto/tls"
	"time"

	"github.com/pion/logging"
	"github.com/pion/randutil"

	"github.com/rtcdata/webrtcdc/internal/sctp"
)

// Config configures a Client. There is no CLI and no environment-variable
// surface (spec §1 Non-goals: the HTTP session endpoint and socket
// ownership are external collaborators) — every knob is set here.
type Config struct {
	// Certificate is this peer's DTLS certificate, presented during the
	// handshake. Required.
	Certificate tls.Certificate

	// LoggerFactory builds the leveled logger passed to every
	// sub-component. Defaults to logging.NewDefaultLoggerFactory().
	LoggerFactory logging.LoggerFactory

	// Rand seeds the local verification tag and initial TSN. Defaults to
	// randutil.NewMathRandomGenerator(), the same generator rtpsender.go
	// uses for its SSRC. Inject a fixed-seed implementation for
	// reproducible test runs, per spec §9 Design Notes. Typed to the
	// narrow interface internal/sctp actually needs rather than
	// randutil.Generator itself, so any single-method Uint32 source works.
	Rand sctp.Generator

	// BufferPool supplies buffers for inbound messages and outbound
	// datagrams. Defaults to NewBufferPool().
	BufferPool BufferPool

	// Clock returns the current time, used for heartbeat pacing and
	// LastActivity. Defaults to time.Now.
	Clock func() time.Time
}

func (c *Config) withDefaults() *Config {
	cfg := *c
	if cfg.LoggerFactory == nil {
		cfg.LoggerFactory = logging.NewDefaultLoggerFactory()
	}
	if cfg.Rand == nil {
		cfg.Rand = randutil.NewMathRandomGenerator()
	}
	if cfg.BufferPool == nil {
		cfg.BufferPool = NewBufferPool()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &cfg
}
