// Package bus implements the Joybus wire engine: a half-duplex,
// asynchronous single-wire protocol state machine that sits on top of an
// abstract platform Backend and drives either a host-role command/reply
// exchange or a target-role command dispatch loop.
package bus

import "sync"

// State is one of the engine's bus states.
type State int

const (
	StateDisabled State = iota
	StateHostIdle
	StateHostTx
	StateHostRx
	StateTargetRx
	StateTargetTx
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateHostIdle:
		return "host-idle"
	case StateHostTx:
		return "host-tx"
	case StateHostRx:
		return "host-rx"
	case StateTargetRx:
		return "target-rx"
	case StateTargetTx:
		return "target-tx"
	default:
		return "unknown"
	}
}

// TransferCallback reports the completion of a host Transfer. result is
// the number of bytes read on success, or a negative Code on failure.
// userData is passed through unchanged from the Transfer call, the same
// raw-pointer-plus-context shape as joybus_transfer_cb_t, so a callback
// registered from interrupt context never has to close over anything the
// caller didn't explicitly hand it.
type TransferCallback func(b *Bus, result int, userData any)

// Config configures a Bus. A zero Config is filled in with sane defaults
// by New.
type Config struct {
	// FrequencyHz is the bit rate to decode incoming edges at and encode
	// outgoing chips at. Defaults to FreqConsole.
	FrequencyHz int
	// Tracer optionally observes state transitions. Defaults to a no-op.
	Tracer Tracer
}

func (c Config) withDefaults() Config {
	if c.FrequencyHz == 0 {
		c.FrequencyHz = FreqConsole
	}
	if c.Tracer == nil {
		c.Tracer = noopTracer{}
	}
	return c
}

// Bus is the Joybus engine. It owns no hardware itself; all line access
// goes through its Backend.
type Bus struct {
	backend  Backend
	tracer   Tracer
	periodNs uint64

	mu    sync.Mutex
	state State

	target    Target
	targetCtx any

	commandBuffer [BlockSize]byte
	cmdLen        int

	decoder PulseDecoder

	// replyBuf holds whatever the target has staged via sendReply for the
	// command currently being received. It is only actually clocked onto
	// the wire once ByteReceived reports the command fully read (return
	// value 0): the target may call sendReply before every byte of a
	// multi-byte command has arrived (the GameCube read command replies
	// after its mode byte but before its motor-state byte), and staging
	// rather than transmitting immediately keeps that early reply from
	// racing the bytes still being clocked in.
	replyBuf [BlockSize]byte
	replyLen int
	haveReply bool

	// pending host transfer
	writeChips []byte
	readBuf    []byte
	readLen    int
	readGot    int
	cb         TransferCallback
	userData   any

	// interTransferBlocked is set the instant a transfer completes (success
	// or timeout) and cleared by deadline once InterTransferDelayUS has
	// passed, the engine-level equivalent of the rp2xxx backend's
	// last_transfer_time/delayed_by_us gate. Transfer consults it so the
	// minimum spacing is enforced for every Backend, not just ones that
	// happen to impose it themselves.
	interTransferBlocked bool

	deadline DeadlineHandle
}

// New constructs a Bus driving backend, applying the first of cfgs (if
// any) over the defaults.
func New(backend Backend, cfgs ...Config) *Bus {
	cfg := Config{}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	cfg = cfg.withDefaults()

	return &Bus{
		backend:  backend,
		tracer:   cfg.Tracer,
		periodNs: uint64(1e9 / cfg.FrequencyHz),
		state:    StateDisabled,
	}
}

// State reports the engine's current state.
func (b *Bus) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Bus) setState(to State, reason string) {
	from := b.state
	b.state = to
	b.tracer.Trace(from, to, reason)
}

// Enable arms the backend and transitions into the idle state
// appropriate for whether a target is currently registered: HostIdle if
// not, TargetRx (listening for a command) if so.
func (b *Bus) Enable() error {
	b.mu.Lock()

	if b.state != StateDisabled {
		b.mu.Unlock()
		return Busy
	}
	if err := b.backend.Enable(); err != nil {
		b.mu.Unlock()
		return err
	}
	if b.target != nil {
		arm := b.armTargetListenLocked()
		b.mu.Unlock()
		return arm()
	}
	b.setState(StateHostIdle, "enable")
	b.mu.Unlock()
	return nil
}

// Disable releases the backend and cancels anything in flight.
func (b *Bus) Disable() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateDisabled {
		return nil
	}
	b.backend.DeadlineCancel(b.deadline)
	// Cancelling the inter-transfer deadline means nothing will ever
	// clear the gate it was arming, so clear it here rather than leaving
	// a disable/re-enable cycle permanently blocked.
	b.interTransferBlocked = false
	if err := b.backend.Disable(); err != nil {
		return err
	}
	b.setState(StateDisabled, "disable")
	return nil
}

// RegisterTarget installs t as the target dispatched to for incoming
// commands. Unlike Transfer, this always succeeds regardless of state: if
// the bus is already enabled, it switches live into TargetRx the way
// joybus_rp2xxx_target_register's enter_idle_mode(bus, true) does, so a
// caller can hot-swap targets (e.g. GC controller to WaveBird) without a
// full Disable/Enable cycle. If disabled, the new target just takes
// effect the next time Enable runs.
func (b *Bus) RegisterTarget(t Target, ctx any) error {
	b.mu.Lock()
	b.target = t
	b.targetCtx = ctx

	if b.state == StateDisabled {
		b.mu.Unlock()
		return nil
	}
	arm := b.armTargetListenLocked()
	b.mu.Unlock()
	return arm()
}

// UnregisterTarget removes the current target. If the bus is enabled, it
// switches live into HostIdle, the equivalent of
// joybus_rp2xxx_target_unregister's enter_idle_mode(bus, false).
func (b *Bus) UnregisterTarget() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.target = nil
	b.targetCtx = nil

	if b.state != StateDisabled {
		b.setState(StateHostIdle, "target-unregistered")
	}
	return nil
}

// Transfer performs a host "write then read" exchange: writeBuf is
// encoded onto the wire, then len(readBuf) bytes are captured from the
// target's reply. cb is invoked on completion or failure from the
// engine's callback path; it must not block.
func (b *Bus) Transfer(writeBuf []byte, readBuf []byte, cb TransferCallback, userData any) error {
	b.mu.Lock()

	if b.state == StateDisabled {
		b.mu.Unlock()
		return Disabled
	}
	if b.state != StateHostIdle {
		b.mu.Unlock()
		return Busy
	}
	if len(writeBuf) > BlockSize || len(readBuf) > BlockSize {
		b.mu.Unlock()
		return NotSupported
	}

	b.readBuf = readBuf
	b.readLen = len(readBuf)
	b.readGot = 0
	b.cb = cb
	b.userData = userData

	chips := make([]byte, 0, len(writeBuf)*32+len(HostStopChips))
	for _, by := range writeBuf {
		c := EncodeByte(by)
		chips = append(chips, c[:]...)
	}
	chips = append(chips, HostStopChips[:]...)
	b.writeChips = chips

	b.setState(StateHostTx, "transfer-start")
	blocked := b.interTransferBlocked
	b.mu.Unlock()

	if blocked {
		// Still within InterTransferDelayUS of the previous transfer's
		// completion. Defer the actual TxBegin rather than rejecting the
		// call outright, matching joybus_rp2xxx_transfer's add_alarm_at
		// scheduling: the caller sees the transfer accepted and in
		// progress, it just doesn't hit the wire immediately.
		b.backend.Deadline(InterTransferDelayUS, func() {
			b.backend.TxBegin(chips)
		})
		return nil
	}
	return b.backend.TxBegin(chips)
}

// armTargetListenLocked prepares the engine to receive the first byte of
// the next command and returns the backend call that actually arms
// reception. Caller must hold b.mu and must call the returned func only
// after releasing it: backends are free to deliver edges back into the
// engine synchronously (bus/loopback does), which would deadlock against
// a lock still held by this call's caller.
func (b *Bus) armTargetListenLocked() func() error {
	b.cmdLen = 0
	b.decoder.Reset()
	b.haveReply = false
	b.setState(StateTargetRx, "listen")
	backend := b.backend
	return func() error { return backend.RxArmNextByte(true, 0) }
}

// finishTransferLocked completes the pending host transfer and returns
// the engine to HostIdle. Caller must hold b.mu and must still hold it
// on return (finishTransferLocked releases it only around the user
// callback, then reacquires it).
func (b *Bus) finishTransferLocked(result int) {
	cb, userData := b.cb, b.userData
	b.cb, b.userData, b.writeChips = nil, nil, nil
	b.setState(StateHostIdle, "transfer-done")
	b.interTransferBlocked = true
	oldDeadline := b.deadline

	// DeadlineCancel/Deadline run unlocked, like every other backend call
	// the engine makes: a Backend is free to invoke clearInterTransferBlock
	// synchronously (bus/loopback does, having no real timer to wait on),
	// which takes b.mu itself.
	b.mu.Unlock()
	b.backend.DeadlineCancel(oldDeadline)
	newDeadline := b.backend.Deadline(InterTransferDelayUS, b.clearInterTransferBlock)
	b.mu.Lock()
	b.deadline = newDeadline

	if cb != nil {
		b.mu.Unlock()
		cb(b, result, userData)
		b.mu.Lock()
	}
}

// clearInterTransferBlock is the Deadline callback armed by
// finishTransferLocked. It runs InterTransferDelayUS after a transfer
// completes and lifts the gate Transfer checks before calling TxBegin.
func (b *Bus) clearInterTransferBlock() {
	b.mu.Lock()
	b.interTransferBlocked = false
	b.mu.Unlock()
}

// OnTxComplete is called by the Backend once a TxBegin's chips have been
// fully clocked out.
func (b *Bus) OnTxComplete() {
	b.mu.Lock()

	switch b.state {
	case StateHostTx:
		if b.readLen == 0 {
			b.finishTransferLocked(0)
			b.mu.Unlock()
			return
		}
		b.decoder.Reset()
		b.setState(StateHostRx, "await-reply")
		b.mu.Unlock()
		b.backend.RxArmNextByte(true, ReplyTimeoutUS)
	case StateTargetTx:
		arm := b.armTargetListenLocked()
		b.mu.Unlock()
		arm()
	default:
		b.mu.Unlock()
	}
}

// OnRxEdges is called by the Backend with the edge timestamps captured
// for one byte, in nanoseconds on whatever monotonic clock the backend
// uses internally (the engine only ever compares differences).
func (b *Bus) OnRxEdges(edges []uint64) {
	b.mu.Lock()

	switch b.state {
	case StateHostRx:
		first := b.readGot == 0
		by, err := b.decoder.DecodeByte(edges, b.periodNs, first)
		if err != nil {
			b.finishTransferLocked(int(Timeout) * -1)
			b.mu.Unlock()
			return
		}
		b.readBuf[b.readGot] = by
		b.readGot++
		if b.readGot >= b.readLen {
			b.finishTransferLocked(b.readGot)
			b.mu.Unlock()
			return
		}
		b.mu.Unlock()
		b.backend.RxArmNextByte(false, ByteRxDeadlineUS)

	case StateTargetRx:
		first := b.cmdLen == 0
		by, err := b.decoder.DecodeByte(edges, b.periodNs, first)
		if err != nil {
			arm := b.armTargetListenLocked()
			b.mu.Unlock()
			arm()
			return
		}
		b.commandBuffer[b.cmdLen] = by
		b.cmdLen++

		target, ctx := b.target, b.targetCtx
		cmd := b.commandBuffer[:b.cmdLen]
		cmdLen := b.cmdLen
		b.mu.Unlock()

		// target.ByteReceived runs unlocked: sendReply (called from
		// within it) only stages bytes and takes the lock itself, but
		// staying unlocked here keeps this call site uniform with the
		// other engine entry points and safe even if a future Target
		// does something heavier.
		n := target.ByteReceived(cmd, cmdLen, b.sendReply, ctx)
		if n > 0 {
			b.backend.RxArmNextByte(false, ByteRxDeadlineUS)
			return
		}
		if n < 0 {
			b.mu.Lock()
			arm := b.armTargetListenLocked()
			b.mu.Unlock()
			arm()
			return
		}

		// Command fully read (n == 0). If the target staged a reply,
		// this is the point the original rp2xxx backend actually kicks
		// off the PIO transmit state machine: not when sendReply was
		// called, which may have been a byte or two earlier.
		b.mu.Lock()
		if !b.haveReply {
			arm := b.armTargetListenLocked()
			b.mu.Unlock()
			arm()
			return
		}
		chips := make([]byte, 0, b.replyLen*32+len(TargetStopChips))
		for _, by := range b.replyBuf[:b.replyLen] {
			c := EncodeByte(by)
			chips = append(chips, c[:]...)
		}
		chips = append(chips, TargetStopChips[:]...)
		b.haveReply = false
		b.setState(StateTargetTx, "reply")
		b.mu.Unlock()
		b.backend.TxBegin(chips)

	default:
		b.mu.Unlock()
	}
}

// OnRxTimeout is called by the Backend when an armed receive window
// elapses with no edge observed.
func (b *Bus) OnRxTimeout() {
	b.mu.Lock()

	switch b.state {
	case StateHostRx:
		b.finishTransferLocked(int(Timeout) * -1)
		b.mu.Unlock()
	case StateTargetRx:
		arm := b.armTargetListenLocked()
		b.mu.Unlock()
		arm()
	default:
		b.mu.Unlock()
	}
}

// sendReply is the ResponseFunc handed to the target's ByteReceived. It
// only stages data for transmission; OnRxEdges is what actually puts it
// on the wire, once ByteReceived reports the command fully read. A
// target may call sendReply before the last byte of its command has
// arrived (GCNRead replies as soon as it has seen the mode byte, ahead
// of the motor-state byte that still follows), and transmitting right
// away would race the bytes still being clocked in.
func (b *Bus) sendReply(ctx any, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateTargetRx || len(data) > BlockSize {
		return
	}
	b.replyLen = copy(b.replyBuf[:], data)
	b.haveReply = true
}
