package lpmodel

// Logger receives progress messages from the model and, when solving, every
// line the solver process prints.
type Logger interface {
	Print(v ...interface{})
}

// LoggerFunc adapts a plain function to the Logger interface.
type LoggerFunc func(v ...interface{})

func (f LoggerFunc) Print(v ...interface{}) { f(v...) }

type noopLogger struct{}

func (noopLogger) Print(v ...interface{}) {}

// NoopLogger returns a Logger discarding everything.
func NoopLogger() Logger { return noopLogger{} }
