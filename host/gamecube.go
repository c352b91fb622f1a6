package host

import (
	"joybus/bus"
	"joybus/commands"
	"joybus/gamecube"
)

// GCNRead polls for the controller's current input state, packed
// according to analogMode. The reply is 8 bytes in every mode; for
// AnalogMode3 it is just the first 8 bytes of the full 10-byte Input.
func GCNRead(b *bus.Bus, analogMode gamecube.AnalogMode, motorState gamecube.MotorState, response []byte, cb bus.TransferCallback, userData any) error {
	var cmd [3]byte
	cmd[0] = byte(commands.GCNRead)
	cmd[1] = byte(analogMode)
	cmd[2] = byte(motorState)
	return b.Transfer(cmd[:], response, cb, userData)
}

// GCNReadOrigin requests the controller's stored origin as a full
// 10-byte Input.
func GCNReadOrigin(b *bus.Bus, response []byte, cb bus.TransferCallback, userData any) error {
	var cmd [1]byte
	cmd[0] = byte(commands.GCNReadOrigin)
	return b.Transfer(cmd[:], response, cb, userData)
}

// GCNCalibrate asks the controller to latch its current input state as
// its new origin, returned as a full 10-byte Input.
func GCNCalibrate(b *bus.Bus, response []byte, cb bus.TransferCallback, userData any) error {
	var cmd [3]byte
	cmd[0] = byte(commands.GCNCalibrate)
	return b.Transfer(cmd[:], response, cb, userData)
}

// GCNReadLong polls for the controller's current input state at full
// precision, unpacked (10 bytes). The analog mode byte is ignored by
// every known controller for this command.
func GCNReadLong(b *bus.Bus, motorState gamecube.MotorState, response []byte, cb bus.TransferCallback, userData any) error {
	var cmd [3]byte
	cmd[0] = byte(commands.GCNReadLong)
	cmd[1] = 0
	cmd[2] = byte(motorState)
	return b.Transfer(cmd[:], response, cb, userData)
}

// GCNProbeDevice is the launch-window-era wireless capability probe.
// An OEM WaveBird receiver responds with 8 zero bytes until it has
// bound to a controller.
func GCNProbeDevice(b *bus.Bus, response []byte, cb bus.TransferCallback, userData any) error {
	var cmd [3]byte
	cmd[0] = byte(commands.GCNProbeDevice)
	return b.Transfer(cmd[:], response, cb, userData)
}

// GCNFixDevice binds a WaveBird receiver to a specific controller's
// 10-bit wireless ID.
func GCNFixDevice(b *bus.Bus, wirelessID uint16, response []byte, cb bus.TransferCallback, userData any) error {
	var cmd [3]byte
	cmd[0] = byte(commands.GCNFixDevice)
	cmd[1] = byte((wirelessID>>2)&0xC0) | 0x10
	cmd[2] = byte(wirelessID)
	return b.Transfer(cmd[:], response, cb, userData)
}

// UnpackInput is the inverse of gamecube.Pack: it expands an 8-byte
// GCNRead reply back into a full Input, using zero for any field the
// analog mode omitted.
func UnpackInput(src []byte, analogMode gamecube.AnalogMode) gamecube.Input {
	var dest gamecube.Input
	var full [gamecube.InputSize]byte
	copy(full[0:4], src[0:4])
	dest.SetBytes(full)

	switch analogMode {
	case gamecube.AnalogMode1:
		dest.SubstickX = src[4] & 0xF0
		dest.SubstickY = (src[4] & 0x0F) << 4
		dest.TriggerLeft = src[5]
		dest.TriggerRight = src[6]
		dest.AnalogA = src[7] & 0xF0
		dest.AnalogB = (src[7] & 0x0F) << 4
	case gamecube.AnalogMode2:
		dest.SubstickX = src[4] & 0xF0
		dest.SubstickY = (src[4] & 0x0F) << 4
		dest.TriggerLeft = src[5] & 0xF0
		dest.TriggerRight = (src[5] & 0x0F) << 4
		dest.AnalogA = src[6]
		dest.AnalogB = src[7]
	case gamecube.AnalogMode3:
		dest.SubstickX = src[4]
		dest.SubstickY = src[5]
		dest.TriggerLeft = src[6]
		dest.TriggerRight = src[7]
	case gamecube.AnalogMode4:
		dest.SubstickX = src[4]
		dest.SubstickY = src[5]
		dest.AnalogA = src[6]
		dest.AnalogB = src[7]
	default: // AnalogMode0
		dest.SubstickX = src[4]
		dest.SubstickY = src[5]
		dest.TriggerLeft = src[6] & 0xF0
		dest.TriggerRight = (src[6] & 0x0F) << 4
		dest.AnalogA = src[7] & 0xF0
		dest.AnalogB = (src[7] & 0x0F) << 4
	}
	return dest
}
