// Package hd44780 controls a 16x2 character LCD based on the Hitachi HD44780
// controller, wired directly to GPIO pins in 4-bit mode.
//
// The driver owns six output lines (register select, enable, and data lines
// D4..D7) and implements the controller's nibble transfer protocol with the
// datasheet timings, the power-on initialization sequence, clear/home, cursor
// addressing, and bounded text output. There is no read path: the R/W line is
// assumed tied low and display state is write-only.
//
// # Hardware Connection
//
// Connect the display to any six available GPIO outputs:
//
//	Display Pin → System Pin
//	VSS         → GND
//	VDD         → 5V
//	RS          → GPIO (default GPIO10)
//	RW          → GND (the driver never reads)
//	E           → GPIO (default GPIO9)
//	D4..D7      → GPIO (defaults GPIO6, GPIO13, GPIO19, GPIO26)
//	D0..D3      → unconnected (4-bit mode)
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/flavioheleno/hd44780"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		if _, err := host.Init(); err != nil {
//			log.Fatal(err)
//		}
//
//		dev, err := hd44780.New(hd44780.Pins{
//			RS: gpioreg.ByName("GPIO10"),
//			EN: gpioreg.ByName("GPIO9"),
//			D4: gpioreg.ByName("GPIO6"),
//			D5: gpioreg.ByName("GPIO13"),
//			D6: gpioreg.ByName("GPIO19"),
//			D7: gpioreg.ByName("GPIO26"),
//		}, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer dev.Halt()
//
//		dev.WriteString("Hello")
//		dev.MoveTo(17) // first cell of the second line
//		dev.WriteString("World")
//	}
//
// # Cursor Addressing
//
// MoveTo uses a flat 1..32 numbering: 1..16 is the first line, 17..32 the
// second. Internally the controller keeps line 2 at DDRAM address 0x40, so
// the driver remaps positions 17..32 onto 64..79. Out-of-range positions are
// ignored without error.
//
// # Output Limits
//
// Print and WriteString transmit at most 16 characters per call and stop at
// the first zero byte. The display memory holds 40 cells per line but only 16
// are visible; the driver refuses to wrap or scroll, so anything past the cap
// is dropped silently.
//
// # Concurrency
//
// The driver is synchronous and blocking: every transfer sleeps out the
// controller's setup, hold, and execution times on the calling goroutine.
// A Dev must not be used from more than one goroutine at a time. The fifod
// package provides a serialized multi-channel front end.
//
// # Command Channels
//
// The channel package interprets byte payloads the way the original
// three-node character device did: channel 0 prints text, channel 1 clears
// the display, channel 2 parses a one- or two-digit decimal cursor position.
// The fifod package exposes those channels as three named pipes
// (displaylcd, displaylcd_cls, displaylcd_pos).
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780
