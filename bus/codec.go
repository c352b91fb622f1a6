package bus

import "errors"

// Joybus line coding samples each bit as four quarter-period "chips": a
// data bit is a low pulse followed by enough high chips to fill out the
// period. Bit 0 is a long low pulse (three low chips), bit 1 is a short
// low pulse (one low chip). Transmission is MSB-first.
var (
	bitZeroChips = [4]byte{0, 0, 0, 1}
	bitOneChips  = [4]byte{0, 1, 1, 1}

	// HostStopChips is the 8-chip stop pattern a host drives after the
	// last byte of a command, signalling "done transmitting, wait for
	// reply" to the target: 0b01111111.
	HostStopChips = [8]byte{0, 1, 1, 1, 1, 1, 1, 1}

	// TargetStopChips is the 8-chip stop pattern a target drives after
	// the last byte of a reply: 0b00111111.
	TargetStopChips = [8]byte{0, 0, 1, 1, 1, 1, 1, 1}
)

// EncodeByte expands b into its 32-chip line encoding, MSB-first.
func EncodeByte(b byte) [32]byte {
	var out [32]byte
	for i := 0; i < 8; i++ {
		bit := (b >> uint(7-i)) & 1
		chips := bitZeroChips
		if bit == 1 {
			chips = bitOneChips
		}
		copy(out[i*4:i*4+4], chips[:])
	}
	return out
}

// ErrShortEdgeWindow is returned by DecodeByte when it is not handed
// enough edge timestamps to recover a byte.
var ErrShortEdgeWindow = errors.New("joybus: short edge window")

// PulseDecoder recovers bytes from pulse-width edge timestamps. Each data
// bit is captured as a pair of edges (falling, rising) bracketing its low
// phase; the width of that phase against half the nominal bit period
// tells bit 0 from bit 1. Because the falling edge of one byte's leading
// bit arrives before the previous byte has finished being processed, one
// bit's worth of decode is always carried over into the next call — this
// is the "trailing bit" the original backend threads across byte
// boundaries.
type PulseDecoder struct {
	trailingBit byte
	haveTrailer bool
}

// Reset clears any carried trailing bit, starting a fresh command frame.
func (d *PulseDecoder) Reset() {
	d.trailingBit = 0
	d.haveTrailer = false
}

// DecodeByte decodes one byte from edges, a sequence of rising/falling
// timestamps in the same units as periodNs. The first byte of a frame
// requires 18 edges (9 bit-widths: 8 for the byte plus one lead-in width
// that becomes the trailing bit for the next byte); every following byte
// requires 16 edges, using the previously carried trailing bit as its
// MSB and producing a new trailing bit for the byte after it.
func (d *PulseDecoder) DecodeByte(edges []uint64, periodNs uint64, first bool) (byte, error) {
	want := 16
	if first {
		want = 18
	}
	if len(edges) < want {
		return 0, ErrShortEdgeWindow
	}
	widths := make([]uint64, want/2)
	for i := range widths {
		widths[i] = edges[2*i+1] - edges[2*i]
	}
	threshold := periodNs / 2

	bitOf := func(w uint64) byte {
		if w < threshold {
			return 1
		}
		return 0
	}

	var out byte
	if first {
		for i := 0; i < 8; i++ {
			out = (out << 1) | bitOf(widths[i])
		}
		d.trailingBit = bitOf(widths[8])
		d.haveTrailer = true
		return out, nil
	}

	out = d.trailingBit
	for i := 0; i < 7; i++ {
		out = (out << 1) | bitOf(widths[i])
	}
	d.trailingBit = bitOf(widths[7])
	d.haveTrailer = true
	return out, nil
}
