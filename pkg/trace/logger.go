package trace

// Logger is the interface applications implement to receive resolver trace
// events. Pass nil or NoopLogger to disable tracing.
type Logger interface {
	// Log records a trace event. Implementations must be safe for
	// concurrent use; events should be processed quickly or queued, since
	// the resolver calls Log inline.
	Log(event Event)
}

// NoopLogger discards all events. Usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}

// MultiLogger sends events to multiple loggers, e.g. console output via
// SlogAdapter plus persistent output via FileLogger.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger that sends events to all provided loggers.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log sends the event to all configured loggers.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*MultiLogger)(nil)
