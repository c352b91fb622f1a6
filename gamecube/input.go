package gamecube

import "joybus/x/mathx"

// Input is a GameCube controller's full input state: 10 bytes on the
// wire, matching the original packed struct's layout on a little-endian
// target (the buttons field's low byte — A..Error — comes first, its
// high byte — Left..UseOrigin — second).
type Input struct {
	Buttons                   Button
	StickX, StickY            uint8
	SubstickX, SubstickY      uint8
	TriggerLeft, TriggerRight uint8
	AnalogA, AnalogB          uint8
}

// InputSize is the wire length of a full Input.
const InputSize = 10

// Bytes serialises inp to its 10-byte wire form.
func (inp Input) Bytes() [InputSize]byte {
	return [InputSize]byte{
		byte(inp.Buttons),
		byte(inp.Buttons >> 8),
		inp.StickX, inp.StickY,
		inp.SubstickX, inp.SubstickY,
		inp.TriggerLeft, inp.TriggerRight,
		inp.AnalogA, inp.AnalogB,
	}
}

// SetBytes populates inp from its 10-byte wire form.
func (inp *Input) SetBytes(b [InputSize]byte) {
	inp.Buttons = Button(b[0]) | Button(b[1])<<8
	inp.StickX, inp.StickY = b[2], b[3]
	inp.SubstickX, inp.SubstickY = b[4], b[5]
	inp.TriggerLeft, inp.TriggerRight = b[6], b[7]
	inp.AnalogA, inp.AnalogB = b[8], b[9]
}

// ClampAxis constrains a raw, possibly out-of-range physical axis or
// trigger reading (e.g. an ADC sample recentred around 0) to the 0-255
// range a wire byte can carry.
func ClampAxis(raw int) uint8 {
	return uint8(mathx.Clamp(raw, 0, 255))
}

// AnalogMode selects how GCNRead packs a 10-byte Input into the 8-byte
// reply games poll for, trading precision in one pair of analog axes for
// full precision in another.
type AnalogMode uint8

const (
	// AnalogMode0 keeps substick X/Y full precision; triggers and
	// analog A/B are truncated to 4 bits each.
	AnalogMode0 AnalogMode = iota
	// AnalogMode1 keeps triggers full precision; substick X/Y and
	// analog A/B are truncated to 4 bits each.
	AnalogMode1
	// AnalogMode2 keeps analog A/B full precision; substick X/Y and
	// triggers are truncated to 4 bits each.
	AnalogMode2
	// AnalogMode3 keeps substick X/Y and triggers full precision,
	// omitting analog A/B entirely. Every production game but Luigi's
	// Mansion uses this mode.
	AnalogMode3
	// AnalogMode4 keeps substick X/Y and analog A/B full precision,
	// omitting triggers entirely.
	AnalogMode4
)

// MotorState is the rumble motor command sent alongside a read.
type MotorState uint8

const (
	MotorStop MotorState = iota
	MotorRumble
	MotorStopHard
)

// PackedInputSize is the wire length of a packed reply to GCNRead.
const PackedInputSize = 8

// Pack reduces inp to its 8-byte GCNRead reply form for the given mode.
// Modes other than those named above fall back to AnalogMode0's packing,
// matching the original dispatcher's default case.
func Pack(inp Input, mode AnalogMode) [PackedInputSize]byte {
	var out [PackedInputSize]byte
	full := inp.Bytes()
	copy(out[0:4], full[0:4])

	switch mode {
	case AnalogMode1:
		out[4] = (inp.SubstickX & 0xF0) | (inp.SubstickY >> 4)
		out[5] = inp.TriggerLeft
		out[6] = inp.TriggerRight
		out[7] = (inp.AnalogA & 0xF0) | (inp.AnalogB >> 4)
	case AnalogMode2:
		out[4] = (inp.SubstickX & 0xF0) | (inp.SubstickY >> 4)
		out[5] = (inp.TriggerLeft & 0xF0) | (inp.TriggerRight >> 4)
		out[6] = inp.AnalogA
		out[7] = inp.AnalogB
	case AnalogMode3:
		out[4] = inp.SubstickX
		out[5] = inp.SubstickY
		out[6] = inp.TriggerLeft
		out[7] = inp.TriggerRight
	case AnalogMode4:
		out[4] = inp.SubstickX
		out[5] = inp.SubstickY
		out[6] = inp.AnalogA
		out[7] = inp.AnalogB
	default: // AnalogMode0
		out[4] = inp.SubstickX
		out[5] = inp.SubstickY
		out[6] = (inp.TriggerLeft & 0xF0) | (inp.TriggerRight >> 4)
		out[7] = (inp.AnalogA & 0xF0) | (inp.AnalogB >> 4)
	}
	return out
}
