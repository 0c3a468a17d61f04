package ring

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RealtimeKind selects which live measurement the ring streams.
type RealtimeKind byte

const (
	RealtimeHeartRate RealtimeKind = 0x01
	RealtimeSpO2      RealtimeKind = 0x03
)

func (k RealtimeKind) String() string {
	switch k {
	case RealtimeHeartRate:
		return "heart rate"
	case RealtimeSpO2:
		return "spo2"
	default:
		return fmt.Sprintf("realtime(0x%02x)", byte(k))
	}
}

// Reading is one live measurement from the ring.
type Reading struct {
	Kind  RealtimeKind
	Value int
	At    time.Time
}

// keepaliveInterval is how often the stream nudges the firmware to keep
// measuring. The firmware stops emitting readings if the keepalive lapses.
const keepaliveInterval = 2 * time.Second

// keepalivePayload is the continue-measurement payload, ASCII "3" in the
// observed captures.
var keepalivePayload = []byte{'3'}

// RealtimeStream is a live heart-rate or SpO2 measurement session. It holds
// the connection's notification subscription for its whole lifetime, so no
// other exchange may run until Stop.
type RealtimeStream struct {
	transport Transport
	log       *zap.Logger
	kind      RealtimeKind

	sub      Subscription
	done     chan struct{}
	stopOnce sync.Once
	stopErr  error

	// mu orders in-flight frame deliveries against Stop: a notification
	// dispatched before Unsubscribe takes effect may still reach
	// handleFrame, and sending on a closed channel panics.
	mu       sync.Mutex
	readings chan Reading
	stopped  bool
}

// StartRealtime begins streaming live measurements of the given kind.
// Callers consume Readings and must call Stop when done.
func StartRealtime(transport Transport, kind RealtimeKind, log *zap.Logger) (*RealtimeStream, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &RealtimeStream{
		transport: transport,
		log:       log,
		kind:      kind,
		readings:  make(chan Reading, defaultQueueDepth),
		done:      make(chan struct{}),
	}

	sub, err := transport.Subscribe(s.handleFrame)
	if err != nil {
		return nil, fmt.Errorf("ring: subscribe: %w", err)
	}
	s.sub = sub

	start, err := BuildPacket(CmdRealtimeStart, s.startPayload())
	if err != nil {
		sub.Unsubscribe()
		return nil, err
	}
	if err := transport.Write(start); err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("ring: start %s stream: %w", kind, err)
	}

	go s.keepalive()
	return s, nil
}

// startPayload matches the captures: heart rate starts with [kind, 0x00],
// SpO2 with [kind, 0x25].
func (s *RealtimeStream) startPayload() []byte {
	if s.kind == RealtimeSpO2 {
		return []byte{byte(s.kind), 0x25}
	}
	return []byte{byte(s.kind), 0x00}
}

// handleFrame parses one notification. Live readings arrive as regular
// 16-byte packets echoing the start command: payload byte 0 is the kind,
// byte 1 an error code, byte 2 the measured value. Zero values are the
// sensor settling and are skipped.
func (s *RealtimeStream) handleFrame(frame []byte) {
	cmd, payload, err := ParsePacket(frame)
	if err != nil || cmd != CmdRealtimeStart {
		return
	}
	if RealtimeKind(payload[0]) != s.kind {
		return
	}
	if code := payload[1]; code != 0 {
		s.log.Warn("realtime measurement error", zap.Uint8("code", code), zap.Stringer("kind", s.kind))
		return
	}
	value := int(payload[2])
	if value == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	select {
	case s.readings <- Reading{Kind: s.kind, Value: value, At: time.Now()}:
	default:
		s.log.Warn("reading channel full, dropping reading")
	}
}

// keepalive re-arms the measurement until the stream is stopped.
func (s *RealtimeStream) keepalive() {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			packet, err := BuildPacket(CmdRealtimeKeep, keepalivePayload)
			if err != nil {
				return
			}
			if err := s.transport.Write(packet); err != nil {
				s.log.Warn("keepalive write failed", zap.Error(err))
			}
		case <-s.done:
			return
		}
	}
}

// Readings is the stream of live measurements, closed by Stop.
func (s *RealtimeStream) Readings() <-chan Reading {
	return s.readings
}

// Stop ends the measurement, releases the notification subscription and
// closes Readings. Safe to call more than once.
func (s *RealtimeStream) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)

		// Tell the firmware to power the sensor down.
		stop, err := BuildPacket(CmdRealtimeStop, []byte{byte(s.kind), 0x00, 0x00})
		if err == nil {
			if werr := s.transport.Write(stop); werr != nil {
				s.stopErr = fmt.Errorf("ring: stop %s stream: %w", s.kind, werr)
			}
		}

		if err := s.sub.Unsubscribe(); err != nil && s.stopErr == nil {
			s.stopErr = fmt.Errorf("ring: unsubscribe: %w", err)
		}

		s.mu.Lock()
		s.stopped = true
		close(s.readings)
		s.mu.Unlock()
	})
	return s.stopErr
}
