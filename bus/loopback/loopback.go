// Package loopback is a software-only Backend implementation: it loops a
// host's encoded chips straight back into a target's decode path in the
// same call stack, with no real line, timer, or edge capture involved.
// It is the direct analogue of src/backend/loopback/joybus.c in the
// original source tree: a way to exercise the engine and its targets in
// unit tests and in cmd/joybus-selftest without any MCU peripheral.
package loopback

import "joybus/bus"

// notifier is the subset of *bus.Bus the backend needs to call back
// into. bus.Bus satisfies it; tests can substitute a fake.
type notifier interface {
	OnTxComplete()
	OnRxEdges(edges []uint64)
	OnRxTimeout()
}

// Backend is a software Joybus line: TxBegin decodes its own chips
// immediately and hands the result to the opposite side's decode path,
// rather than actually encoding/decoding across a wire.
type Backend struct {
	engine notifier

	enabled bool
	nextDeadlineID bus.DeadlineHandle

	// peer, when set, receives everything this Backend transmits,
	// decoded straight to bytes (skipping chip-level encoding, since
	// there is no real line to drive). Used to wire a host Backend
	// directly to a target Backend in-process.
	peer *Backend

	pendingEdges [][]uint64
	rxCursor     int
	armed        bool
}

// New constructs an unconnected loopback Backend. Call Connect to link
// it to the bus.Bus instance that owns it.
func New() *Backend {
	return &Backend{}
}

// Connect tells the backend which engine to deliver completions to. It
// must be called before Enable.
func (lb *Backend) Connect(engine notifier) {
	lb.engine = engine
}

// Pair links two loopback backends so that bytes transmitted by one are
// delivered as received bytes to the other, modelling a single shared
// wire between a host Bus and a target Bus in the same process.
func Pair(a, b *Backend) {
	a.peer = b
	b.peer = a
}

func (lb *Backend) Enable() error {
	lb.enabled = true
	return nil
}

func (lb *Backend) Disable() error {
	lb.enabled = false
	lb.pendingEdges = nil
	lb.rxCursor = 0
	return nil
}

// TxBegin delivers chips to the peer backend (if any) as a sequence of
// decoded bytes, stripping the trailing stop chips, then reports
// completion to its own engine. Everything happens synchronously: there
// is no simulated bit timing.
func (lb *Backend) TxBegin(chips []byte) error {
	if !lb.enabled {
		return bus.Disabled
	}
	dataChips := chips
	if len(dataChips) >= 8 {
		dataChips = dataChips[:len(dataChips)-8]
	}
	by := make([]byte, 0, len(dataChips)/32)
	for i := 0; i+32 <= len(dataChips); i += 32 {
		by = append(by, decodeChipByte(dataChips[i:i+32]))
	}

	if lb.peer != nil && lb.peer.enabled {
		lb.peer.deliver(by)
	}

	if lb.engine != nil {
		lb.engine.OnTxComplete()
	}
	return nil
}

// deliver queues by as the edge windows RxArmNextByte will hand to the
// engine's decoder, then — if the engine was already armed and waiting
// (the common case: a target left listening, or a host waiting on a
// reply) — immediately pushes the first one in. The windows follow the
// same trailing-bit carry PulseDecoder expects: the first byte of the
// frame gets a 9-width window whose last width is the next byte's
// lead-in bit, and every later byte gets an 8-width window (7 new bits
// plus the following byte's lead-in bit).
func (lb *Backend) deliver(by []byte) {
	lb.pendingEdges = lb.pendingEdges[:0]
	lb.rxCursor = 0
	for i, b := range by {
		var nextLeadIn byte
		if i+1 < len(by) {
			nextLeadIn = bitsOf(by[i+1])[0]
		}
		bits := bitsOf(b)
		if i == 0 {
			bits = append(append([]byte{}, bits...), nextLeadIn)
		} else {
			bits = append(append([]byte{}, bits[1:]...), nextLeadIn)
		}
		lb.pendingEdges = append(lb.pendingEdges, widthsToEdges(bits))
	}
	if lb.armed {
		lb.armed = false
		lb.pump()
	}
}

// RxArmNextByte arms the backend to deliver its next queued byte. If a
// byte is already queued (deliver ran before this arm, as happens for
// every byte after the frame's first), it is handed to the engine
// immediately. Otherwise the backend just remembers it is waiting;
// deliver will push the byte in once the peer actually transmits it.
// Real backends arm a hardware deadline here and time out if nothing
// arrives; the loopback line never actually goes quiet with no sender,
// so there is nothing to time out against.
func (lb *Backend) RxArmNextByte(first bool, timeoutUS uint32) error {
	if !lb.enabled {
		return bus.Disabled
	}
	if lb.rxCursor < len(lb.pendingEdges) {
		lb.pump()
		return nil
	}
	lb.armed = true
	return nil
}

// pump delivers the next queued byte's edges to the engine.
func (lb *Backend) pump() {
	edges := lb.pendingEdges[lb.rxCursor]
	lb.rxCursor++
	if lb.engine != nil {
		lb.engine.OnRxEdges(edges)
	}
}

// Deadline fires cb immediately rather than actually waiting us
// microseconds: the loopback line has no simulated bit timing anywhere
// else in this package, so there is no wall clock for a real delay to
// measure against. Engine code that arms a deadline (the inter-transfer
// delay gate) still runs through the same state transitions it would on
// real hardware, just without the wait.
func (lb *Backend) Deadline(us uint32, cb func()) bus.DeadlineHandle {
	lb.nextDeadlineID++
	id := lb.nextDeadlineID
	if cb != nil {
		cb()
	}
	return id
}

// DeadlineCancel is a no-op: Deadline above has already fired (and
// cannot be un-fired) by the time any caller could try to cancel it.
func (lb *Backend) DeadlineCancel(h bus.DeadlineHandle) {}

// AwaitLineIdle is a no-op: the loopback line is always idle between
// synchronous calls.
func (lb *Backend) AwaitLineIdle(thresholdUS uint32) {}

// decodeChipByte reverses bus.EncodeByte over one byte's 32 chips.
func decodeChipByte(chips []byte) byte {
	var out byte
	for i := 0; i < 8; i++ {
		bitChips := chips[i*4 : i*4+4]
		bit := byte(0)
		if bitChips[1] == 1 {
			bit = 1
		}
		out = (out << 1) | bit
	}
	return out
}

// bitsOf returns b's 8 bits, MSB first.
func bitsOf(b byte) []byte {
	bits := make([]byte, 8)
	for i := 0; i < 8; i++ {
		bits[i] = (b >> uint(7-i)) & 1
	}
	return bits
}

// Pulse widths used for the synthetic edge windows below. PulseDecoder
// classifies a width against half the engine's configured bit period
// (bus.FreqConsole/FreqGameCubeController/FreqWaveBird all land between
// 4000 and 5000ns), so a fixed short/long pair clears that threshold
// regardless of which of those three the caller configured.
const (
	fakeShortPulseNs uint64 = 500
	fakeLongPulseNs  uint64 = 3500
	fakeSegmentNs    uint64 = 6000
)

// widthsToEdges produces an internally-consistent edge window for bits,
// one short (bit=1) or long (bit=0) pulse per entry. It is only ever
// consumed by this package's own RxArmNextByte, which already knows the
// bits in advance; real backends measure actual line pulses instead.
func widthsToEdges(bits []byte) []uint64 {
	edges := make([]uint64, 0, len(bits)*2)
	var clock uint64
	for _, bit := range bits {
		w := fakeLongPulseNs
		if bit == 1 {
			w = fakeShortPulseNs
		}
		edges = append(edges, clock)
		clock += w
		edges = append(edges, clock)
		clock += fakeSegmentNs - w
	}
	return edges
}
