// Package host implements host-role command encoders: each function
// builds a command into a small local buffer and hands it to bus.Bus's
// Transfer, the Go equivalent of the original tree's per-command
// joybus_*_read/write wrappers around the shared command_buffer.
package host

import (
	"joybus/bus"
	"joybus/commands"
)

// Identify sends the Identify command and captures its 3-byte reply
// into response.
func Identify(b *bus.Bus, response []byte, cb bus.TransferCallback, userData any) error {
	var cmd [1]byte
	cmd[0] = byte(commands.Identify)
	return b.Transfer(cmd[:], response, cb, userData)
}

// Reset sends the Reset command and captures its 3-byte reply into
// response.
func Reset(b *bus.Bus, response []byte, cb bus.TransferCallback, userData any) error {
	var cmd [1]byte
	cmd[0] = byte(commands.Reset)
	return b.Transfer(cmd[:], response, cb, userData)
}
