//go:build rp2040 || rp2350

package uarttrace

import "github.com/jangala-dev/tinygo-uartx/uartx"

// New configures uart (UART0 or UART1) at baud and returns a Tracer that
// writes transition lines to it. Typical use wires a second, otherwise
// idle UART to a debug probe so the bus's state machine can be watched
// without disturbing the Joybus line itself.
func New(uart *uartx.UART, baud uint32) *Tracer {
	_ = uart.Configure(uartx.UARTConfig{})
	uart.SetBaudRate(baud)
	return NewTracer(uart)
}
