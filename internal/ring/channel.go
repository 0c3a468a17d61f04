package ring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultExchangeTimeout is how long Exchange waits for a matching response
// when the caller passes no explicit timeout.
const DefaultExchangeTimeout = 5 * time.Second

// CommandChannel drives the fixed 16-byte request/response protocol over a
// Transport. At most one exchange is outstanding at a time; concurrent
// callers serialize on an internal mutex. A big-data session must not run on
// the same connection while an exchange is in flight.
type CommandChannel struct {
	transport Transport
	log       *zap.Logger

	mu sync.Mutex // one outstanding exchange per connection
}

// NewCommandChannel returns a channel over transport. A nil logger disables
// logging.
func NewCommandChannel(transport Transport, log *zap.Logger) *CommandChannel {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommandChannel{transport: transport, log: log}
}

// Write builds and sends a command packet without waiting for any response.
// Used for commands the firmware never acknowledges, like set-time.
func (c *CommandChannel) Write(cmd byte, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	packet, err := BuildPacket(cmd, payload)
	if err != nil {
		return err
	}
	c.log.Debug("write", zap.Uint8("cmd", cmd), zap.Binary("packet", packet))
	if err := c.transport.Write(packet); err != nil {
		return fmt.Errorf("ring: write command 0x%02x: %w", cmd, err)
	}
	return nil
}

// Exchange sends one command packet and waits for the first notification
// frame whose leading byte matches cmd. Frames for other commands are
// discarded, not queued. The notification subscription is scoped to the
// exchange and released on every exit path, including timeout and
// cancellation.
func (c *CommandChannel) Exchange(ctx context.Context, cmd byte, payload []byte, timeout time.Duration) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timeout <= 0 {
		timeout = DefaultExchangeTimeout
	}

	packet, err := BuildPacket(cmd, payload)
	if err != nil {
		return nil, err
	}

	queue := newFrameQueue(defaultQueueDepth, c.log)
	sub, err := c.transport.Subscribe(queue.push)
	if err != nil {
		return nil, fmt.Errorf("ring: subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	c.log.Debug("exchange", zap.Uint8("cmd", cmd), zap.Binary("packet", packet))
	if err := c.transport.Write(packet); err != nil {
		return nil, fmt.Errorf("ring: write command 0x%02x: %w", cmd, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case frame := <-queue.frames():
			if len(frame) == 0 || frame[0] != cmd {
				c.log.Debug("discarding unmatched frame",
					zap.Uint8("want", cmd), zap.Binary("frame", frame))
				continue
			}
			return frame, nil
		case <-timer.C:
			return nil, fmt.Errorf("%w: command 0x%02x", ErrResponseTimeout, cmd)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
