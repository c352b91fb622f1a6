//go:build !rp2040 && !rp2350

package uarttrace

// nullWriter discards everything; host builds have no UART to trace to.
type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }

// New returns a Tracer that discards its output. Host builds (tests,
// the joybus-selftest demo) use the loopback backend and have no real
// UART to trace over; callers that want to see transitions on the host
// should pass their own Writer (e.g. os.Stdout) to NewTracer directly.
func New() *Tracer {
	return NewTracer(nullWriter{})
}
