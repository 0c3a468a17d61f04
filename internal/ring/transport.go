package ring

import "go.uber.org/zap"

// Transport is the byte-oriented channel the protocol engine runs over. The
// BLE plumbing (discovery, connect, GATT characteristics) lives behind this
// interface; internal/ble provides the tinygo bluetooth implementation and
// tests provide fakes.
type Transport interface {
	// Write sends one outbound payload to the device.
	Write(data []byte) error
	// Subscribe registers handler to be called once per inbound
	// notification frame, in delivery order.
	Subscribe(handler func(frame []byte)) (Subscription, error)
}

// Subscription is an active notification registration. Unsubscribe must be
// called on every exit path: a leaked subscription makes later unrelated
// exchanges misattribute frames.
type Subscription interface {
	Unsubscribe() error
}

// defaultQueueDepth bounds the frame queue between the transport callback
// and a state machine. Big-data streams arrive in tens of frames; anything
// deeper than this means the consumer has stalled.
const defaultQueueDepth = 64

// frameQueue adapts the transport's push callback into an ordered, bounded
// channel the state machines can select on. Frames are copied on entry
// because BLE stacks reuse notification buffers.
type frameQueue struct {
	ch  chan []byte
	log *zap.Logger
}

func newFrameQueue(depth int, log *zap.Logger) *frameQueue {
	if depth <= 0 {
		depth = defaultQueueDepth
	}
	return &frameQueue{ch: make(chan []byte, depth), log: log}
}

// push enqueues one inbound frame. A full queue drops the frame rather than
// blocking the BLE stack's notification goroutine.
func (q *frameQueue) push(frame []byte) {
	buf := make([]byte, len(frame))
	copy(buf, frame)
	select {
	case q.ch <- buf:
	default:
		q.log.Warn("frame queue full, dropping frame", zap.Int("len", len(frame)))
	}
}

func (q *frameQueue) frames() <-chan []byte {
	return q.ch
}
