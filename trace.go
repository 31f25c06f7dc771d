package dice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// EventKind classifies trace events.
type EventKind uint8

const (
	// EventTransaction is an asynchronous transaction to the unit.
	EventTransaction EventKind = iota
	// EventNotification is a notification word received from the unit.
	EventNotification
)

// String returns the name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventTransaction:
		return "transaction"
	case EventNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// Event is a protocol trace event. CBOR encoding uses integer keys.
type Event struct {
	Timestamp time.Time `cbor:"1,keyasint"`
	SessionID string    `cbor:"2,keyasint"`
	Kind      EventKind `cbor:"3,keyasint"`

	Tcode    TransactionCode `cbor:"4,keyasint,omitempty"`
	Addr     uint64          `cbor:"5,keyasint,omitempty"`
	Data     []byte          `cbor:"6,keyasint,omitempty"`
	Duration time.Duration   `cbor:"7,keyasint,omitempty"`
	Err      string          `cbor:"8,keyasint,omitempty"`

	Notification uint32 `cbor:"9,keyasint,omitempty"`
}

// String returns a single line description of the event.
func (e Event) String() string {
	ts := e.Timestamp.Format(time.RFC3339Nano)

	if e.Kind == EventNotification {
		return fmt.Sprintf("%s notification %#08x", ts, e.Notification)
	}

	s := fmt.Sprintf("%s %s %#012x len=%d %s", ts, e.Tcode, e.Addr, len(e.Data), e.Duration)
	if e.Err != "" {
		s += " error=" + e.Err
	}

	return s
}

// Logger receives protocol trace events. Implementations must be safe for concurrent use.
type Logger interface {
	Log(event Event)
}

// NoopLogger discards all events.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}

var (
	traceEncMode cbor.EncMode
	traceDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	traceEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	traceDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR decoder mode: %v", err))
	}
}

// EncodeEvent encodes the event to CBOR.
func EncodeEvent(event Event) ([]byte, error) {
	return traceEncMode.Marshal(event)
}

// DecodeEvent decodes an event from CBOR.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := traceDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}

	return event, nil
}

// SlogAdapter writes trace events to a slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to the logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("kind", event.Kind.String()),
	}

	switch event.Kind {
	case EventTransaction:
		attrs = append(attrs,
			slog.String("tcode", event.Tcode.String()),
			slog.String("addr", fmt.Sprintf("%#012x", event.Addr)),
			slog.Int("length", len(event.Data)),
			slog.Duration("duration", event.Duration),
		)
		if event.Err != "" {
			attrs = append(attrs, slog.String("error", event.Err))
		}
	case EventNotification:
		attrs = append(attrs, slog.String("notification", fmt.Sprintf("%#08x", event.Notification)))
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, event.Kind.String(), attrs...)
}

var _ Logger = (*SlogAdapter)(nil)

// FileLogger appends CBOR encoded trace events to a file. It is safe for concurrent use.
type FileLogger struct {
	mu      sync.Mutex
	file    *os.File
	encoder *cbor.Encoder
	closed  bool
}

// NewFileLogger opens the file at path for appending, creating it if needed.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	return &FileLogger{
		file:    f,
		encoder: traceEncMode.NewEncoder(f),
	}, nil
}

// Log writes the event. Encoding errors are ignored.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	_ = l.encoder.Encode(event)
}

// Close closes the file. Later events are dropped.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true

	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)

// TraceReader reads events written by FileLogger.
type TraceReader struct {
	r       io.Reader
	decoder *cbor.Decoder
}

// NewTraceReader returns a reader decoding events from r.
func NewTraceReader(r io.Reader) *TraceReader {
	return &TraceReader{r: r, decoder: traceDecMode.NewDecoder(r)}
}

// Next returns the next event, or io.EOF at the end of the stream.
func (r *TraceReader) Next() (Event, error) {
	var event Event
	if err := r.decoder.Decode(&event); err != nil {
		if errors.Is(err, io.EOF) {
			return Event{}, io.EOF
		}

		return Event{}, fmt.Errorf("failed to decode trace event: %w", err)
	}

	return event, nil
}

// TracingTransport decorates a Transport and emits one Event per transaction.
type TracingTransport struct {
	t       Transport
	logger  Logger
	session string
	now     func() time.Time
}

var _ Transport = (*TracingTransport)(nil)

// NewTracingTransport returns a transport tracing every transaction of t to logger, tagged
// with a new session ID.
func NewTracingTransport(t Transport, logger Logger) *TracingTransport {
	if logger == nil {
		logger = NoopLogger{}
	}

	return &TracingTransport{
		t:       t,
		logger:  logger,
		session: uuid.NewString(),
		now:     time.Now,
	}
}

// SessionID returns the ID tagging the events of the transport.
func (tt *TracingTransport) SessionID() string {
	return tt.session
}

// Transaction implements Transport.
func (tt *TracingTransport) Transaction(tcode TransactionCode, addr uint64, frame []byte, timeoutMs int) error {
	start := tt.now()
	err := tt.t.Transaction(tcode, addr, frame, timeoutMs)

	event := Event{
		Timestamp: start,
		SessionID: tt.session,
		Kind:      EventTransaction,
		Tcode:     tcode,
		Addr:      addr,
		Data:      append([]byte(nil), frame...),
		Duration:  tt.now().Sub(start),
	}
	if err != nil {
		event.Err = err.Error()
	}

	tt.logger.Log(event)

	return err
}

// LogNotification emits an event for a notification word received from the unit.
func (tt *TracingTransport) LogNotification(msg uint32) {
	tt.logger.Log(Event{
		Timestamp:    tt.now(),
		SessionID:    tt.session,
		Kind:         EventNotification,
		Notification: msg,
	})
}
