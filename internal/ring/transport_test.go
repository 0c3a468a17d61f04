package ring

import (
	"sync"
)

// fakeTransport implements Transport for tests. Responses are injected
// either synchronously from onWrite or by calling notify directly.
type fakeTransport struct {
	mu           sync.Mutex
	writes       [][]byte
	handler      func([]byte)
	subscribes   int
	unsubscribes int
	writeErr     error
	onWrite      func(data []byte)
}

type fakeSubscription struct {
	t *fakeTransport
}

func (s *fakeSubscription) Unsubscribe() error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	s.t.unsubscribes++
	s.t.handler = nil
	return nil
}

func (t *fakeTransport) Write(data []byte) error {
	t.mu.Lock()
	buf := make([]byte, len(data))
	copy(buf, data)
	t.writes = append(t.writes, buf)
	err := t.writeErr
	onWrite := t.onWrite
	t.mu.Unlock()
	if err != nil {
		return err
	}
	if onWrite != nil {
		onWrite(buf)
	}
	return nil
}

func (t *fakeTransport) Subscribe(handler func(frame []byte)) (Subscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribes++
	t.handler = handler
	return &fakeSubscription{t: t}, nil
}

// notify delivers one inbound frame to the current subscriber, if any.
func (t *fakeTransport) notify(frame []byte) {
	t.mu.Lock()
	handler := t.handler
	t.mu.Unlock()
	if handler != nil {
		handler(frame)
	}
}

func (t *fakeTransport) writeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.writes)
}

func (t *fakeTransport) lastWrite() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.writes) == 0 {
		return nil
	}
	return t.writes[len(t.writes)-1]
}
