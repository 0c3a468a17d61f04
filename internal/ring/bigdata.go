package ring

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Big-data sub-protocol constants. The big data service uses its own
// write/notify characteristic pair, distinct from the 16-byte command
// protocol.
const (
	BigDataMagic = 0xBC // first byte of every big-data request and response
	BigDataSleep = 0x27 // subcommand for the sleep log

	bigDataHeaderLen = 6    // magic, subcommand, 16-bit length, 16-bit CRC
	dataStartMarker  = 0x57 // optional marker before record data in the first frame
)

// DefaultBigDataTimeout is how long a session waits for the stream to
// complete when the caller passes no explicit timeout.
const DefaultBigDataTimeout = 10 * time.Second

// defaultLastFrameLimit is the empirical end-of-stream convention: observed
// firmware sends a final frame shorter than a full notification. Not part of
// the declared protocol, hence the pluggable predicate below.
const defaultLastFrameLimit = 20

// CompletionPredicate decides whether frame, the frameIndex-th notification
// of a session (0-based), terminates the stream. Firmware variants with a
// different end-of-stream convention supply their own predicate.
type CompletionPredicate func(frameIndex int, frame []byte) bool

// DefaultCompletion treats any frame after the first that is shorter than 20
// bytes as the last frame of the stream.
func DefaultCompletion(frameIndex int, frame []byte) bool {
	return frameIndex > 0 && len(frame) < defaultLastFrameLimit
}

// HeaderStyle records how the first frame located its record data. It is
// resolved once per session from the first frame, never re-guessed.
type HeaderStyle struct {
	// Marked reports whether the 0x57 data-start marker was found. When
	// false the session fell back to skipping the fixed 6-byte header, and
	// no embedded timestamp is available.
	Marked bool
	// DataStart is the offset of the first record byte within the first
	// frame (after the header, marker and timestamp, as applicable).
	DataStart int
}

// Record is one decoded (stage, duration) pair from a reassembled big-data
// stream.
type Record struct {
	Stage   SleepStage
	Minutes int
}

// BigDataResult is the output of a completed (or, on request, partial)
// session: records in arrival order plus the embedded start timestamp when
// the stream carried one.
type BigDataResult struct {
	Records      []Record
	StartTime    time.Time // valid only when HasStartTime
	HasStartTime bool
	Style        HeaderStyle
	Partial      bool // true when the stream timed out and partial results were requested
}

type sessionState int

const (
	stateIdle sessionState = iota
	stateRequested
	stateReceiving
	stateComplete
	stateTimedOut
)

// BigDataSession drives one streaming big-data exchange. Each session owns
// its accumulator and carry buffer exclusively and is used for a single Run;
// nothing is shared between sessions. It must not be active concurrently
// with a CommandChannel exchange on the same connection.
type BigDataSession struct {
	transport  Transport
	log        *zap.Logger
	subcommand byte
	complete   CompletionPredicate
	partialOK  bool

	state      sessionState
	frameIndex int
	carry      []byte // 0 or 1 byte split off an odd-length frame
	records    []Record
	style      HeaderStyle
	start      time.Time
	hasStart   bool
}

// BigDataOption configures a BigDataSession.
type BigDataOption func(*BigDataSession)

// WithCompletion replaces the default end-of-stream heuristic.
func WithCompletion(p CompletionPredicate) BigDataOption {
	return func(s *BigDataSession) { s.complete = p }
}

// WithPartialResults makes Run return the records accumulated so far
// alongside ErrBulkTransferTimeout instead of discarding them. Off by
// default so truncated sessions are never mistaken for complete ones.
func WithPartialResults() BigDataOption {
	return func(s *BigDataSession) { s.partialOK = true }
}

// NewBigDataSession returns a session for one exchange of the given
// subcommand. A nil logger disables logging.
func NewBigDataSession(transport Transport, subcommand byte, log *zap.Logger, opts ...BigDataOption) *BigDataSession {
	if log == nil {
		log = zap.NewNop()
	}
	s := &BigDataSession{
		transport:  transport,
		log:        log,
		subcommand: subcommand,
		complete:   DefaultCompletion,
		state:      stateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// buildRequest assembles the big-data request header: magic, subcommand,
// zero length, 0xFFFF CRC placeholder. The length and CRC fields are
// advisory; observed firmware ignores them on responses too.
func (s *BigDataSession) buildRequest() []byte {
	return []byte{BigDataMagic, s.subcommand, 0x00, 0x00, 0xFF, 0xFF}
}

// Run performs the exchange: sends the request, accumulates notification
// frames until the completion predicate fires, and returns the reassembled
// records. On timeout it returns ErrBulkTransferTimeout; the partial record
// sequence is returned alongside the error only when WithPartialResults was
// given.
func (s *BigDataSession) Run(ctx context.Context, timeout time.Duration) (*BigDataResult, error) {
	if s.state != stateIdle {
		return nil, fmt.Errorf("ring: big data session already used")
	}
	if timeout <= 0 {
		timeout = DefaultBigDataTimeout
	}

	queue := newFrameQueue(defaultQueueDepth, s.log)
	sub, err := s.transport.Subscribe(queue.push)
	if err != nil {
		return nil, fmt.Errorf("ring: subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	request := s.buildRequest()
	s.state = stateRequested
	s.log.Debug("big data request",
		zap.Uint8("subcommand", s.subcommand), zap.Binary("request", request))
	if err := s.transport.Write(request); err != nil {
		return nil, fmt.Errorf("ring: write big data request 0x%02x: %w", s.subcommand, err)
	}
	s.state = stateReceiving

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case frame := <-queue.frames():
			if s.consume(frame) {
				s.state = stateComplete
				s.carry = nil // nothing may straddle the end of stream
				return s.result(false), nil
			}
		case <-timer.C:
			s.state = stateTimedOut
			if s.partialOK {
				return s.result(true), fmt.Errorf("%w: %d records accumulated", ErrBulkTransferTimeout, len(s.records))
			}
			return nil, ErrBulkTransferTimeout
		case <-ctx.Done():
			s.state = stateTimedOut
			return nil, ctx.Err()
		}
	}
}

// consume folds one notification frame into the session and reports whether
// the stream is complete.
func (s *BigDataSession) consume(frame []byte) bool {
	s.log.Debug("big data frame",
		zap.Int("index", s.frameIndex), zap.Int("len", len(frame)), zap.Binary("frame", frame))

	data := frame
	if s.frameIndex == 0 && len(frame) >= 2 && frame[0] == BigDataMagic && frame[1] == s.subcommand {
		data = s.resolveHeader(frame)
	}
	s.appendPairs(data)

	done := s.complete(s.frameIndex, frame)
	s.frameIndex++
	return done
}

// resolveHeader inspects the first frame, fixes the session's HeaderStyle,
// decodes the embedded timestamp when present, and returns the record bytes
// that remain. Frame boundaries are MTU-determined, so the remainder may be
// odd-length or even empty.
func (s *BigDataSession) resolveHeader(frame []byte) []byte {
	marker := -1
	for i := bigDataHeaderLen; i < len(frame); i++ {
		if frame[i] == dataStartMarker {
			marker = i
			break
		}
	}

	if marker < 0 {
		// Firmware variant without the marker: skip the fixed header and
		// treat everything after it as record data. No timestamp is
		// recoverable; the decoder surfaces that instead of guessing.
		s.style = HeaderStyle{Marked: false, DataStart: bigDataHeaderLen}
		s.log.Debug("no data start marker, using fixed header offset")
		return frame[bigDataHeaderLen:]
	}

	dataStart := marker + 1
	if dataStart+embeddedTimestampLen <= len(frame) {
		ts, err := DecodeEmbeddedTimestamp(frame[dataStart : dataStart+embeddedTimestampLen])
		if err != nil {
			s.log.Warn("embedded timestamp undecodable", zap.Error(err))
		} else {
			s.start = ts
			s.hasStart = true
		}
		dataStart += embeddedTimestampLen
	}
	s.style = HeaderStyle{Marked: true, DataStart: dataStart}
	return frame[dataStart:]
}

// appendPairs parses data as strict (stage, duration) byte pairs, carrying a
// trailing odd byte across to the next frame. Records are MTU-agnostic: a
// pair may legitimately straddle two notifications.
func (s *BigDataSession) appendPairs(data []byte) {
	if len(s.carry) > 0 {
		data = append(s.carry, data...)
		s.carry = nil
	}
	if len(data)%2 != 0 {
		s.carry = []byte{data[len(data)-1]}
		data = data[:len(data)-1]
	}
	for i := 0; i+1 < len(data); i += 2 {
		stage := StageFromByte(data[i])
		minutes := int(data[i+1])
		if minutes == 0 {
			// Zero-duration filler contributes nothing to the session.
			continue
		}
		s.records = append(s.records, Record{Stage: stage, Minutes: minutes})
	}
}

func (s *BigDataSession) result(partial bool) *BigDataResult {
	return &BigDataResult{
		Records:      s.records,
		StartTime:    s.start,
		HasStartTime: s.hasStart,
		Style:        s.style,
		Partial:      partial,
	}
}
