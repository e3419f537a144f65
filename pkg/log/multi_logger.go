package log

// MultiLogger tees one event stream into several destinations. The
// typical pairing is a FileLogger capturing a session to an .mplog
// file while a SlogAdapter mirrors the same frame and lane events to
// the console.
//
// A nil or empty MultiLogger drops every event.
type MultiLogger []Logger

// NewMultiLogger combines the given destinations into one Logger.
// Nil entries are skipped, so callers can pass optional sinks
// unconditionally.
func NewMultiLogger(loggers ...Logger) MultiLogger {
	m := make(MultiLogger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	return m
}

// Log delivers the event to every destination in order.
func (m MultiLogger) Log(event Event) {
	for _, l := range m {
		l.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = MultiLogger(nil)
