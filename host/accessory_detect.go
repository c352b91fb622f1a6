package host

import (
	"bytes"

	"joybus/bus"
)

// AccessoryType identifies what, if anything, joybus_n64_accessory_detect
// found plugged into the controller's accessory slot.
type AccessoryType int

const (
	AccessoryNone AccessoryType = iota
	AccessoryUnknown
	AccessoryControllerPak
	AccessoryRumblePak
	AccessoryTransferPak
	AccessoryBioSensor
	AccessorySnapStation
)

func (t AccessoryType) String() string {
	switch t {
	case AccessoryNone:
		return "none"
	case AccessoryControllerPak:
		return "controller-pak"
	case AccessoryRumblePak:
		return "rumble-pak"
	case AccessoryTransferPak:
		return "transfer-pak"
	case AccessoryBioSensor:
		return "bio-sensor"
	case AccessorySnapStation:
		return "snap-station"
	default:
		return "unknown"
	}
}

const (
	probeTypeRumblePak   = 0x80
	probeTypeBioSensor   = 0x81
	probeTypeTransferPak = 0x84
	probeTypeSnapStation = 0x85
	probeTypeReset       = 0xFE
)

type detectStep int

const (
	stepNone detectStep = iota
	stepInit
	stepControllerPakReset
	stepControllerPakLabelBackup
	stepControllerPakLabelOverwrite
	stepControllerPakLabelTest
	stepControllerPakLabelRestore
	stepRumblePakProbeWrite
	stepRumblePakProbeRead
	stepTransferPakProbeWrite
	stepTransferPakProbeRead
	stepTransferPakTurnOff
	stepSnapStationProbeWrite
	stepSnapStationProbeRead
)

// DetectCallback reports the outcome of an accessory detection sequence.
type DetectCallback func(result AccessoryType, userData any)

// DetectState holds one in-flight accessory detection sequence. It is
// owned entirely by the caller: the original C implementation used a
// single function-static struct, which meant two concurrent detections
// (e.g. on two controller ports) silently corrupted each other. Every
// StartAccessoryDetect call here takes its own *DetectState, so callers
// managing multiple controllers use one DetectState per controller.
type DetectState struct {
	step         detectStep
	response     [64]byte
	writeBuf     [32]byte
	labelBackup  [32]byte
	userCallback DetectCallback
	userData     any
}

// StartAccessoryDetect kicks off an accessory detection sequence on b,
// storing progress in state. callback is invoked exactly once, from
// within one of the Transfer completions this sequence issues, with the
// detected AccessoryType (or AccessoryNone/AccessoryUnknown).
func StartAccessoryDetect(b *bus.Bus, state *DetectState, callback DetectCallback, userData any) error {
	state.step = stepInit
	state.userCallback = callback
	state.userData = userData

	for i := range state.writeBuf {
		state.writeBuf[i] = probeTypeReset
	}
	return AccessoryWrite(b, accessoryAddrProbe, state.writeBuf[:], state.response[:], accessoryDetectionCB, state)
}

// validateDetectionWrite checks the single CRC8 byte an accessory write
// replies with. A reply of crc8(writeBuf)^0xFF means no accessory is
// present; any other mismatch means an accessory responded but not in a
// way this sequence understands.
func (s *DetectState) validateDetectionWrite() (ok bool, failure AccessoryType) {
	expected := crc8(s.writeBuf[:])
	switch s.response[0] {
	case expected:
		return true, AccessoryNone
	case expected ^ 0xFF:
		return false, AccessoryNone
	default:
		return false, AccessoryUnknown
	}
}

// validateDetectionRead checks the CRC8 byte following a 32-byte
// accessory read.
func (s *DetectState) validateDetectionRead() (ok bool, failure AccessoryType) {
	expected := crc8(s.response[:32])
	switch s.response[32] {
	case expected:
		return true, AccessoryNone
	case expected ^ 0xFF:
		return false, AccessoryNone
	default:
		return false, AccessoryUnknown
	}
}

// accessoryDetectionCB drives the detection sequence forward one step
// per Transfer completion, following the original's step order: probe
// reset, Controller Pak round-trip (backup/overwrite/test/restore),
// Rumble Pak / Bio Sensor probe, Transfer Pak probe, Snap Station probe.
func accessoryDetectionCB(b *bus.Bus, result int, userData any) {
	state := userData.(*DetectState)

	if result < 0 {
		state.userCallback(AccessoryUnknown, state.userData)
		return
	}

	switch state.step {
	case stepInit:
		if ok, failure := state.validateDetectionWrite(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		state.step = stepControllerPakReset
		for i := range state.writeBuf {
			state.writeBuf[i] = 0x00
		}
		AccessoryWrite(b, accessoryAddrProbe, state.writeBuf[:], state.response[:], accessoryDetectionCB, state)

	case stepControllerPakReset:
		if ok, failure := state.validateDetectionWrite(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		state.step = stepControllerPakLabelBackup
		AccessoryRead(b, accessoryAddrLabel, state.response[:], accessoryDetectionCB, state)

	case stepControllerPakLabelBackup:
		if ok, failure := state.validateDetectionRead(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		copy(state.labelBackup[:], state.response[:32])
		state.step = stepControllerPakLabelOverwrite
		for i := range state.writeBuf {
			state.writeBuf[i] = byte(i)
		}
		AccessoryWrite(b, accessoryAddrLabel, state.writeBuf[:], state.response[:], accessoryDetectionCB, state)

	case stepControllerPakLabelOverwrite:
		if ok, failure := state.validateDetectionWrite(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		state.step = stepControllerPakLabelTest
		AccessoryRead(b, accessoryAddrLabel, state.response[:], accessoryDetectionCB, state)

	case stepControllerPakLabelTest:
		if ok, failure := state.validateDetectionRead(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		if bytes.Equal(state.response[:32], state.writeBuf[:]) {
			state.step = stepControllerPakLabelRestore
			copy(state.writeBuf[:], state.labelBackup[:])
			AccessoryWrite(b, accessoryAddrLabel, state.writeBuf[:], state.response[:], accessoryDetectionCB, state)
		} else {
			state.step = stepRumblePakProbeWrite
			for i := range state.writeBuf {
				state.writeBuf[i] = probeTypeRumblePak
			}
			AccessoryWrite(b, accessoryAddrProbe, state.writeBuf[:], state.response[:], accessoryDetectionCB, state)
		}

	case stepControllerPakLabelRestore:
		if ok, failure := state.validateDetectionWrite(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		state.userCallback(AccessoryControllerPak, state.userData)

	case stepRumblePakProbeWrite:
		if ok, failure := state.validateDetectionWrite(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		state.step = stepRumblePakProbeRead
		AccessoryRead(b, accessoryAddrProbe, state.response[:], accessoryDetectionCB, state)

	case stepRumblePakProbeRead:
		if ok, failure := state.validateDetectionRead(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		switch state.response[0] {
		case probeTypeRumblePak:
			state.userCallback(AccessoryRumblePak, state.userData)
			return
		case probeTypeBioSensor:
			state.userCallback(AccessoryBioSensor, state.userData)
			return
		}
		state.step = stepTransferPakProbeWrite
		for i := range state.writeBuf {
			state.writeBuf[i] = probeTypeTransferPak
		}
		AccessoryWrite(b, accessoryAddrProbe, state.writeBuf[:], state.response[:], accessoryDetectionCB, state)

	case stepTransferPakProbeWrite:
		if ok, failure := state.validateDetectionWrite(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		state.step = stepTransferPakProbeRead
		AccessoryRead(b, accessoryAddrProbe, state.response[:], accessoryDetectionCB, state)

	case stepTransferPakProbeRead:
		if ok, failure := state.validateDetectionRead(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		if state.response[0] == probeTypeTransferPak {
			state.step = stepTransferPakTurnOff
			for i := range state.writeBuf {
				state.writeBuf[i] = probeTypeReset
			}
			AccessoryWrite(b, accessoryAddrProbe, state.writeBuf[:], state.response[:], accessoryDetectionCB, state)
		} else {
			state.step = stepSnapStationProbeWrite
			for i := range state.writeBuf {
				state.writeBuf[i] = probeTypeSnapStation
			}
			AccessoryWrite(b, accessoryAddrProbe, state.writeBuf[:], state.response[:], accessoryDetectionCB, state)
		}

	case stepTransferPakTurnOff:
		if ok, failure := state.validateDetectionWrite(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		state.userCallback(AccessoryTransferPak, state.userData)

	case stepSnapStationProbeWrite:
		if ok, failure := state.validateDetectionWrite(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		state.step = stepSnapStationProbeRead
		AccessoryRead(b, accessoryAddrProbe, state.response[:], accessoryDetectionCB, state)

	case stepSnapStationProbeRead:
		if ok, failure := state.validateDetectionRead(); !ok {
			state.userCallback(failure, state.userData)
			return
		}
		if state.response[0] == probeTypeSnapStation {
			state.userCallback(AccessorySnapStation, state.userData)
			return
		}
		state.userCallback(AccessoryUnknown, state.userData)

	default:
		state.userCallback(AccessoryUnknown, state.userData)
	}
}
