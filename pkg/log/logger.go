package log

// Logger receives a monitor's trace: one sample event per published update
// topic and one lifecycle event per start, stop or strategy change.
// A nil Logger in monitor.Config disables tracing.
type Logger interface {
	// Log records a trace event. It is called on whichever goroutine drove
	// the monitor (a strategy's ticker or timer, or the caller of Update),
	// so implementations must be safe for concurrent use and should not
	// block.
	Log(event Event)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(event Event)

// Log calls f(event).
func (f LoggerFunc) Log(event Event) { f(event) }

// NoopLogger discards the trace. The zero value is ready to use.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var (
	_ Logger = NoopLogger{}
	_ Logger = LoggerFunc(nil)
)
