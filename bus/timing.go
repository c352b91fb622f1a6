package bus

// Bus frequencies, in Hz, for the devices the wire codec has to be able to
// talk timing-compatible with. None of these are user-configurable at
// runtime: they are fixed by the hardware generation being emulated or
// addressed, exactly as JOYBUS_FREQ_* is a set of preprocessor constants
// in the original source.
const (
	// FreqGameCubeController is the bus frequency of an OEM GameCube
	// controller.
	FreqGameCubeController = 250000
	// FreqWaveBird is the bus frequency of a WaveBird receiver.
	FreqWaveBird = 225000
	// FreqConsole is the bus frequency a console host drives the line at.
	FreqConsole = 200000
)

const (
	// BlockSize is the maximum size of a single Joybus transfer, in bytes,
	// matching JOYBUS_BLOCK_SIZE.
	BlockSize = 64

	// InterTransferDelayUS is the minimum delay a host must leave between
	// back-to-back transfers.
	InterTransferDelayUS = 20

	// ReplyTimeoutUS is how long a host waits for a target's reply after
	// the stop bit of a request, before declaring the transfer timed out.
	ReplyTimeoutUS = 100

	// IdleThresholdUS is how long the line must sit high before a target
	// considers the bus idle and ready to drive a command byte 0 window
	// or before a host considers a prior transfer fully settled.
	IdleThresholdUS = 100

	// ByteRxDeadlineUS bounds the wait for each byte after the first of a
	// command (target role) or of a reply (host role) before the receive
	// is abandoned.
	ByteRxDeadlineUS = 60
)
