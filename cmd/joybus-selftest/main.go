// Command joybus-selftest wires a host-role bus.Bus and a target-role
// bus.Bus together over bus/loopback, runs a handful of GameCube
// transfers against them, and prints what came back. It exists so the
// Joybus stack can be exercised end to end without any real hardware,
// the same role src/backend/loopback/joybus.c plays for the original
// library's host tests.
package main

import (
	"time"

	"joybus/bus"
	"joybus/bus/loopback"
	"joybus/gamecube"
	"joybus/host"
	"joybus/target/gccontroller"
	"joybus/x/strconvx"
)

func printBytes(label string, data []byte) {
	print(label)
	print(" ")
	for i, b := range data {
		if i > 0 {
			print(" ")
		}
		s := strconvx.FormatUint(uint64(b), 16)
		if len(s) < 2 {
			s = "0" + s
		}
		print(s)
	}
	println()
}

func waitFor(done *bool) {
	for i := 0; i < 1000 && !*done; i++ {
		time.Sleep(time.Millisecond)
	}
}

func main() {
	hostBackend := loopback.New()
	targetBackend := loopback.New()
	loopback.Pair(hostBackend, targetBackend)

	hostBus := bus.New(hostBackend, bus.Config{FrequencyHz: bus.FreqGameCubeController})
	targetBus := bus.New(targetBackend, bus.Config{FrequencyHz: bus.FreqGameCubeController})

	hostBackend.Connect(hostBus)
	targetBackend.Connect(targetBus)

	controller := gccontroller.New(gamecube.DeviceGameCubeController)
	targetBus.RegisterTarget(controller, nil)

	hostBus.Enable()
	targetBus.Enable()

	println("[selftest] Identify")
	var identifyReply [3]byte
	done := false
	host.Identify(hostBus, identifyReply[:], func(b *bus.Bus, result int, userData any) {
		done = true
	}, nil)
	waitFor(&done)
	printBytes("  reply:", identifyReply[:])

	println("[selftest] GCNRead mode 3")
	controller.SetInput(gamecube.Input{
		Buttons: gamecube.ButtonA,
		StickX:  0x90, StickY: 0x78,
		SubstickX: 0x81, SubstickY: 0x82,
		TriggerLeft: 0x20, TriggerRight: 0x30,
	})
	var readReply [8]byte
	done = false
	host.GCNRead(hostBus, gamecube.AnalogMode3, gamecube.MotorStop, readReply[:], func(b *bus.Bus, result int, userData any) {
		done = true
	}, nil)
	waitFor(&done)
	printBytes("  reply:", readReply[:])

	println("[selftest] GCNCalibrate")
	var calibrateReply [10]byte
	done = false
	host.GCNCalibrate(hostBus, calibrateReply[:], func(b *bus.Bus, result int, userData any) {
		done = true
	}, nil)
	waitFor(&done)
	printBytes("  reply:", calibrateReply[:])

	println("[selftest] done")
}
