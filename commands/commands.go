// Package commands catalogs Joybus opcodes and their fixed transfer
// lengths. It has no behaviour of its own; host and target packages
// import it for the named constants rather than scattering magic numbers
// across encoders and dispatch switches.
package commands

// Opcode is a Joybus command byte.
type Opcode byte

// Opcode values, grouped by which line they are used on. EEPROM, RTC,
// keyboard, GBA link, and PixelFX opcodes are reserved: this package
// names them for completeness (and so a dispatcher can recognise and
// reject them distinctly from a truly unknown opcode) but no encoder or
// target handler is implemented for them.
const (
	Reset Opcode = 0xFF
	Identify Opcode = 0x00

	N64Read           Opcode = 0x01
	N64AccessoryRead  Opcode = 0x02
	N64AccessoryWrite Opcode = 0x03

	// Reserved: N64-internal EEPROM/RTC line, not implemented.
	N64EEPROMRead  Opcode = 0x04
	N64EEPROMWrite Opcode = 0x05
	N64RTCInfo     Opcode = 0x06
	N64RTCRead     Opcode = 0x07
	N64RTCWrite    Opcode = 0x08

	// Reserved: Randnet keyboard, not implemented.
	N64KeyboardRead Opcode = 0x13

	// Reserved: GBA link cable tunnelling, not implemented.
	GBARead  Opcode = 0x14
	GBAWrite Opcode = 0x15

	// Reserved: PixelFX N64Digital game-ID probe, not implemented.
	PixelFXGameID Opcode = 0x1D

	GCNRead        Opcode = 0x40
	GCNReadOrigin  Opcode = 0x41
	GCNCalibrate   Opcode = 0x42
	GCNReadLong    Opcode = 0x43
	GCNProbeDevice Opcode = 0x4D
	GCNFixDevice   Opcode = 0x4E

	// Reserved: GameCube keyboard controller, not implemented.
	GCNKeyboardRead Opcode = 0x54
)

// Length describes the fixed number of bytes a command sends and
// expects back, not counting the stop pattern either side drives.
type Length struct {
	Tx, Rx int
}

// Lengths maps each known opcode to its Length. PixelFXGameID expects no
// reply (Rx: 0) because it is a broadcast, not a query.
var Lengths = map[Opcode]Length{
	Reset:    {Tx: 1, Rx: 3},
	Identify: {Tx: 1, Rx: 3},

	N64Read:           {Tx: 1, Rx: 4},
	N64AccessoryRead:  {Tx: 3, Rx: 33},
	N64AccessoryWrite: {Tx: 35, Rx: 1},

	N64EEPROMRead:  {Tx: 2, Rx: 8},
	N64EEPROMWrite: {Tx: 10, Rx: 1},
	N64RTCInfo:     {Tx: 1, Rx: 3},
	N64RTCRead:     {Tx: 2, Rx: 9},
	N64RTCWrite:    {Tx: 10, Rx: 1},

	N64KeyboardRead: {Tx: 2, Rx: 7},

	GBARead:  {Tx: 3, Rx: 33},
	GBAWrite: {Tx: 35, Rx: 1},

	PixelFXGameID: {Tx: 11, Rx: 0},

	GCNRead:        {Tx: 3, Rx: 8},
	GCNReadOrigin:  {Tx: 1, Rx: 10},
	GCNCalibrate:   {Tx: 3, Rx: 10},
	GCNReadLong:    {Tx: 3, Rx: 10},
	GCNProbeDevice: {Tx: 3, Rx: 8},
	GCNFixDevice:   {Tx: 3, Rx: 3},

	GCNKeyboardRead: {Tx: 3, Rx: 8},
}
