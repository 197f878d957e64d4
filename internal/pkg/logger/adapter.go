package logger

import "massa_gateway/internal/app/port"

// slogAdapter implements port.Logger on top of the package helpers and
// prepends a fixed set of attributes to every record.
type slogAdapter struct {
	attrs []any
}

// NewSlogAdapter returns a port.Logger; attrs are slog key/value pairs such as
// "component", "balance".
func NewSlogAdapter(attrs ...any) port.Logger {
	return &slogAdapter{attrs: attrs}
}

func (a *slogAdapter) with(args []any) []any {
	if len(a.attrs) == 0 {
		return args
	}
	out := make([]any, 0, len(a.attrs)+len(args))
	return append(append(out, a.attrs...), args...)
}

func (a *slogAdapter) Info(msg string, args ...any)  { Info(msg, a.with(args)...) }
func (a *slogAdapter) Debug(msg string, args ...any) { Debug(msg, a.with(args)...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { Warn(msg, a.with(args)...) }
func (a *slogAdapter) Error(msg string, args ...any) { Error(msg, a.with(args)...) }

type nopLogger struct{}

// Nop discards everything. Handy in tests.
func Nop() port.Logger { return nopLogger{} }

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
