package host

import (
	"joybus/bus"
	"joybus/commands"
)

// N64 accessory address space.
const (
	accessoryAddrLabel       = 0x0000
	accessoryAddrProbe       = 0x8000
	accessoryAddrRumbleMotor = 0xC000
)

// N64Read polls for the controller's current 4-byte input state.
func N64Read(b *bus.Bus, response []byte, cb bus.TransferCallback, userData any) error {
	var cmd [1]byte
	cmd[0] = byte(commands.N64Read)
	return b.Transfer(cmd[:], response, cb, userData)
}

// AccessoryWrite writes 32 bytes of data to addr in accessory memory
// space. The reply is a single CRC8 byte the caller should check against
// crc8(data) to confirm the write landed (see DetectState for the
// pattern the detection sequencer uses).
func AccessoryWrite(b *bus.Bus, addr uint16, data []byte, response []byte, cb bus.TransferCallback, userData any) error {
	withChecksum := addressWithChecksum(addr)

	var cmd [35]byte
	cmd[0] = byte(commands.N64AccessoryWrite)
	cmd[1] = byte(withChecksum >> 8)
	cmd[2] = byte(withChecksum)
	copy(cmd[3:35], data[:32])

	return b.Transfer(cmd[:], response[:commands.Lengths[commands.N64AccessoryWrite].Rx], cb, userData)
}

// AccessoryRead reads 32 bytes from addr in accessory memory space; the
// reply is those 32 bytes followed by a CRC8 byte.
func AccessoryRead(b *bus.Bus, addr uint16, response []byte, cb bus.TransferCallback, userData any) error {
	withChecksum := addressWithChecksum(addr)

	var cmd [3]byte
	cmd[0] = byte(commands.N64AccessoryRead)
	cmd[1] = byte(withChecksum >> 8)
	cmd[2] = byte(withChecksum)

	return b.Transfer(cmd[:], response[:commands.Lengths[commands.N64AccessoryRead].Rx], cb, userData)
}

// MotorStart turns on a Rumble Pak's motor. The reply is discarded; the
// caller is not notified of completion, matching the original's
// fire-and-forget joybus_n64_motor_start.
func MotorStart(b *bus.Bus) error {
	var data [32]byte
	for i := range data {
		data[i] = 0x01
	}
	var response [1]byte
	return AccessoryWrite(b, accessoryAddrRumbleMotor, data[:], response[:], nil, nil)
}

// MotorStop turns off a Rumble Pak's motor.
func MotorStop(b *bus.Bus) error {
	var data [32]byte
	var response [1]byte
	return AccessoryWrite(b, accessoryAddrRumbleMotor, data[:], response[:], nil, nil)
}
