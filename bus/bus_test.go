// bus/bus_test.go
package bus

import "testing"

// TestPulseDecoderCarriesTrailingBit builds the exact edge sequence a
// correctly functioning backend would hand the decoder for a run of
// bytes, including the one-bit lead-in each byte's window captures for
// the byte after it, and checks the decoded bytes match.
func TestPulseDecoderCarriesTrailingBit(t *testing.T) {
	const freq = FreqConsole
	periodNs := uint64(1e9 / freq)
	threshold := periodNs / 2
	short := threshold / 2     // bit 1: low phase well under half a period
	long := threshold + short  // bit 0: low phase well over half a period

	widthFor := func(bit byte) uint64 {
		if bit == 1 {
			return short
		}
		return long
	}

	bytesIn := []byte{0x00, 0xFF, 0x5A, 0x81, 0x3C}

	// bitAt returns bit i (0=MSB) of bytesIn[byteIdx], or the MSB of the
	// following byte when i==8 (the lead-in width for the next window),
	// defaulting to 0 past the end of the sequence.
	bitAt := func(byteIdx, i int) byte {
		if i < 8 {
			return (bytesIn[byteIdx] >> uint(7-i)) & 1
		}
		if byteIdx+1 < len(bytesIn) {
			return (bytesIn[byteIdx+1] >> 7) & 1
		}
		return 0
	}

	var dec PulseDecoder
	for idx := range bytesIn {
		n := 8
		if idx == 0 {
			n = 9
		}
		edges := make([]uint64, 0, n*2)
		var clock uint64
		for i := 0; i < n; i++ {
			// Later windows start at bit 1: their MSB is the lead-in the
			// previous window already captured.
			bit := i
			if idx > 0 {
				bit = i + 1
			}
			w := widthFor(bitAt(idx, bit))
			edges = append(edges, clock)
			clock += w
			edges = append(edges, clock)
			clock += periodNs - w
		}

		got, err := dec.DecodeByte(edges, periodNs, idx == 0)
		if err != nil {
			t.Fatalf("byte %d: decode error: %v", idx, err)
		}
		if got != bytesIn[idx] {
			t.Errorf("byte %d: got 0x%02X, want 0x%02X", idx, got, bytesIn[idx])
		}
	}
}

func TestDecodeByteShortWindow(t *testing.T) {
	var dec PulseDecoder
	if _, err := dec.DecodeByte(make([]uint64, 4), 1000, true); err != ErrShortEdgeWindow {
		t.Fatalf("expected ErrShortEdgeWindow, got %v", err)
	}
}

func TestStopChipPatterns(t *testing.T) {
	if HostStopChips[0] != 0 || HostStopChips[1] != 1 {
		t.Fatalf("host stop pattern should begin 01..., got %v", HostStopChips)
	}
	if TargetStopChips[0] != 0 || TargetStopChips[1] != 0 || TargetStopChips[2] != 1 {
		t.Fatalf("target stop pattern should begin 001..., got %v", TargetStopChips)
	}
}

func TestCodeIsError(t *testing.T) {
	var err error = Timeout
	if Of(err) != Timeout {
		t.Fatalf("Of(Timeout) = %v, want Timeout", Of(err))
	}
	if Of(nil) != OK {
		t.Fatalf("Of(nil) = %v, want OK", Of(nil))
	}
}
