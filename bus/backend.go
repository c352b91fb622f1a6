package bus

// DeadlineHandle identifies a pending deadline callback so it can be
// cancelled before it fires. A zero value never refers to a live
// deadline.
type DeadlineHandle uint32

// Backend is the platform adapter contract the engine is built on top
// of. A real implementation drives one GPIO pin in open-drain mode using
// whatever timer/PIO/DMA peripherals the MCU has; bus/loopback is a
// software-only implementation used for tests and the self-test command.
//
// Every method here is expected to be safe to call from the engine's
// callback path, i.e. from what would be interrupt context on real
// hardware: implementations must not block or allocate.
type Backend interface {
	// Enable arms the backend to drive or observe the line. It does not
	// by itself start a transfer.
	Enable() error
	// Disable releases the line and cancels any armed operation.
	Disable() error

	// TxBegin clocks chips out on the wire and arms completion delivery
	// via the engine's OnTxComplete. chips has already been produced by
	// EncodeByte/the stop chip tables; the backend only has to serialise
	// it at the configured bit period.
	TxBegin(chips []byte) error

	// RxArmNextByte arms capture of the next byte's worth of edges
	// (16, or 18 for the first byte of a frame) and delivers them to the
	// engine via OnRxEdges, or reports a timeout via OnRxTimeout if no
	// edge arrives within timeoutUS of the call.
	RxArmNextByte(first bool, timeoutUS uint32) error

	// Deadline schedules cb to run after us microseconds and returns a
	// handle that can later be passed to DeadlineCancel. cb must be
	// non-blocking.
	Deadline(us uint32, cb func()) DeadlineHandle
	// DeadlineCancel cancels a deadline previously returned by Deadline.
	// Cancelling an already-fired or unknown handle is a no-op.
	DeadlineCancel(h DeadlineHandle)

	// AwaitLineIdle blocks the caller until the line has been
	// continuously high for thresholdUS, or returns immediately if it
	// already has been. It must only be called outside of callback
	// context; bus.Bus itself never calls it.
	AwaitLineIdle(thresholdUS uint32)
}
