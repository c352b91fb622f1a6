// Package uarttrace implements bus.Tracer over a UART, formatting each
// state transition as a single log line so a bus's host/target state
// machine can be watched externally (e.g. over the Pico's USB-CDC or a
// second UART wired to a debug probe).
package uarttrace

import "joybus/bus"

// Writer is the minimal UART surface uarttrace needs. Both the rp2xxx
// and host implementations of New satisfy it with their platform's real
// or simulated UART.
type Writer interface {
	Write(p []byte) (int, error)
}

// Tracer writes "from -> to (reason)\n" for every transition to w.
type Tracer struct {
	w Writer
}

// NewTracer wraps an already-configured Writer as a bus.Tracer.
func NewTracer(w Writer) *Tracer {
	return &Tracer{w: w}
}

func (t *Tracer) Trace(from, to bus.State, reason string) {
	line := from.String() + " -> " + to.String()
	if reason != "" {
		line += " (" + reason + ")"
	}
	line += "\n"
	t.w.Write([]byte(line))
}
