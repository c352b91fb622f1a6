package commands

import "testing"

func TestLengthsCoverDefinedOpcodes(t *testing.T) {
	opcodes := []Opcode{
		Reset, Identify,
		N64Read, N64AccessoryRead, N64AccessoryWrite,
		N64EEPROMRead, N64EEPROMWrite, N64RTCInfo, N64RTCRead, N64RTCWrite,
		N64KeyboardRead, GBARead, GBAWrite, PixelFXGameID,
		GCNRead, GCNReadOrigin, GCNCalibrate, GCNReadLong, GCNProbeDevice, GCNFixDevice,
		GCNKeyboardRead,
	}
	for _, op := range opcodes {
		if _, ok := Lengths[op]; !ok {
			t.Errorf("opcode 0x%02X has no Length entry", byte(op))
		}
	}
}

func TestGCNReadLength(t *testing.T) {
	l := Lengths[GCNRead]
	if l.Tx != 3 || l.Rx != 8 {
		t.Errorf("GCNRead length = %+v, want {3 8}", l)
	}
}
