package ble

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/ryan-huang1/r02ctl/internal/ring"
)

// characteristicTransport adapts one write/notify characteristic pair to
// ring.Transport. BLE-level notifications stay enabled for the life of the
// transport; Subscribe/Unsubscribe only swap the frame handler, so releasing
// a subscription is cheap and never races the bluetooth stack.
type characteristicTransport struct {
	write  *bluetooth.DeviceCharacteristic
	notify *bluetooth.DeviceCharacteristic
	log    *zap.Logger

	mu        sync.Mutex
	handler   func([]byte)
	notifying bool
}

func newCharacteristicTransport(write, notify *bluetooth.DeviceCharacteristic, log *zap.Logger) *characteristicTransport {
	return &characteristicTransport{write: write, notify: notify, log: log}
}

// Write sends one payload to the device. The ring only accepts
// write-without-response on both protocol characteristics.
func (t *characteristicTransport) Write(data []byte) error {
	t.log.Debug("ble write", zap.Binary("data", data))
	if _, err := t.write.WriteWithoutResponse(data); err != nil {
		return fmt.Errorf("ble: write: %w", err)
	}
	return nil
}

// Subscribe installs handler as the receiver for inbound notification
// frames. One subscriber at a time: the protocol engine enforces one
// outstanding exchange per connection, and a second subscription here would
// mean frames get misattributed.
func (t *characteristicTransport) Subscribe(handler func(frame []byte)) (ring.Subscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handler != nil {
		return nil, errors.New("ble: subscription already active on this characteristic")
	}
	if !t.notifying {
		if err := t.notify.EnableNotifications(t.dispatch); err != nil {
			return nil, fmt.Errorf("ble: enable notifications: %w", err)
		}
		t.notifying = true
	}
	t.handler = handler
	return &subscription{t: t}, nil
}

// dispatch routes one notification to the current subscriber. Frames that
// arrive with no subscriber belong to no exchange and are dropped.
func (t *characteristicTransport) dispatch(buf []byte) {
	t.mu.Lock()
	handler := t.handler
	t.mu.Unlock()

	if handler == nil {
		t.log.Debug("dropping frame with no subscriber", zap.Int("len", len(buf)))
		return
	}
	handler(buf)
}

type subscription struct {
	t    *characteristicTransport
	once sync.Once
}

func (s *subscription) Unsubscribe() error {
	s.once.Do(func() {
		s.t.mu.Lock()
		s.t.handler = nil
		s.t.mu.Unlock()
	})
	return nil
}
