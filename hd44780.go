// Package hd44780 controls a 16x2 character LCD based on the Hitachi HD44780
// controller, wired directly to GPIO pins in 4-bit mode.
//
// See the examples for how to use this package.
package hd44780

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
)

// Display geometry. Only the 16x2 variant is supported.
const (
	Cols = 16
	Rows = 2

	// MinPos and MaxPos bound the logical cursor positions accepted by
	// MoveTo: 1..16 on the first line, 17..32 on the second.
	MinPos = 1
	MaxPos = 32
)

// Controller commands (HD44780 datasheet, table 6).
const (
	cmdClearDisplay   = 0x01
	cmdFunctionSet    = 0x28 // 4-bit bus, 2 lines, 5x8 font
	cmdDisplayControl = 0x0C // display on, cursor off, blink off
	cmdEntryModeSet   = 0x06 // increment address, no display shift
	cmdSetDDRAMAddr   = 0x80
)

// line2Offset converts the contiguous logical range 0..31 into the
// controller's discontiguous address space: line 2 starts at DDRAM 0x40, so
// zero-based position 16 must land on 64.
const line2Offset = 0x40 - Cols

// Bus timing. The three nanosecond figures come straight from the datasheet
// enable-cycle diagram (page 58, figure 25); every command except Clear
// Display executes within 37us, so 40us is used as the generic settle time.
const (
	enableSetup = 150 * time.Nanosecond
	dataSetup   = 80 * time.Nanosecond
	enableHold  = 10 * time.Nanosecond
	execSettle  = 40 * time.Microsecond
	clearSettle = 2 * time.Millisecond // Clear Display needs up to 1.52ms
	powerOnWait = 15 * time.Millisecond
	resetRepeat = 5 * time.Millisecond
	resetShort  = 100 * time.Microsecond
)

// regMode tracks which register the next transfer addresses.
type regMode bool

const (
	modeCommand   regMode = false
	modeCharacter regMode = true
)

// Pins is the fixed assignment of the six logical signals to GPIO outputs.
// All six are required. The four data lines carry the high nibble of the
// controller's 8-bit bus: D4 receives the least-significant bit of each
// transmitted nibble.
type Pins struct {
	RS gpio.PinOut // register select: low = command, high = character
	EN gpio.PinOut // enable: the controller latches on the falling edge
	D4 gpio.PinOut
	D5 gpio.PinOut
	D6 gpio.PinOut
	D7 gpio.PinOut
}

func (p *Pins) validate() error {
	for _, pin := range []struct {
		name string
		pin  gpio.PinOut
	}{
		{"RS", p.RS}, {"EN", p.EN},
		{"D4", p.D4}, {"D5", p.D5}, {"D6", p.D6}, {"D7", p.D7},
	} {
		if pin.pin == nil {
			return fmt.Errorf("hd44780: pin %s is required", pin.name)
		}
	}
	return nil
}

// Opts is the optional configuration for the display.
type Opts struct {
	// Clock performs the mandated bus delays. Defaults to the real clock;
	// a fake clock can be injected in tests.
	Clock clockwork.Clock
}

// Dev is the device handle for the display. It exclusively owns the six
// signal lines for its lifetime.
//
// Dev is not safe for concurrent use: all three command channels drive the
// same pins and the same register-select state, so callers must serialize
// every operation (the fifod boundary does this with a mutex).
type Dev struct {
	pins  Pins
	clock clockwork.Clock

	// mode mirrors the RS line. Every byte transfer leaves it at
	// modeCharacter; command transfers force modeCommand first.
	mode   regMode
	halted bool
}

// New initializes the controller on the given pins and returns a device
// handle ready for Print/MoveTo/Clear.
//
// The pins must already be configured as outputs driven low. New runs the
// full power-on reset sequence, which blocks for roughly 25ms; it must run
// exactly once before any other call.
func New(pins Pins, opts *Opts) (*Dev, error) {
	if err := pins.validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Opts{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	d := &Dev{
		pins:  pins,
		clock: clock,
		mode:  modeCommand,
	}
	if err := d.init(); err != nil {
		return nil, fmt.Errorf("hd44780: init: %w", err)
	}
	return d, nil
}

// init performs the wake-up dance documented in the datasheet (page 46):
// three 0x03 nibbles pull the controller out of any half-finished 4-bit
// transfer, 0x02 switches it to 4-bit sensing, then the three configuration
// commands and a clear.
func (d *Dev) init() error {
	if err := d.pins.RS.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.pins.EN.Out(gpio.Low); err != nil {
		return err
	}
	d.clock.Sleep(powerOnWait)
	if err := d.writeNibble(0x03); err != nil {
		return err
	}
	d.clock.Sleep(resetRepeat)
	if err := d.writeNibble(0x03); err != nil {
		return err
	}
	d.clock.Sleep(resetShort)
	if err := d.writeNibble(0x03); err != nil {
		return err
	}
	d.clock.Sleep(execSettle)
	if err := d.writeNibble(0x02); err != nil {
		return err
	}
	d.clock.Sleep(execSettle)

	for _, cmd := range []byte{cmdFunctionSet, cmdDisplayControl, cmdEntryModeSet} {
		if err := d.command(cmd); err != nil {
			return err
		}
	}
	return d.Clear()
}

// writeNibble pulses one 4-bit value onto the bus. RS must already be set by
// the caller; EN is expected low on entry and is left low.
func (d *Dev) writeNibble(v byte) error {
	if err := d.pins.EN.Out(gpio.High); err != nil {
		return err
	}
	d.clock.Sleep(enableSetup)

	data := []gpio.PinOut{d.pins.D4, d.pins.D5, d.pins.D6, d.pins.D7}
	for i, pin := range data {
		if err := pin.Out(gpio.Level(v&(1<<i) != 0)); err != nil {
			return err
		}
	}
	d.clock.Sleep(dataSetup)

	// The falling edge is what the controller latches on.
	if err := d.pins.EN.Out(gpio.Low); err != nil {
		return err
	}
	d.clock.Sleep(enableHold)
	return nil
}

// writeByte transmits an 8-bit value as two nibbles, high half first, then
// waits out the worst-case execution time. It unconditionally returns RS to
// the character state: most transfers are characters, so command transfers
// force the mode immediately before calling this.
func (d *Dev) writeByte(v byte) error {
	if err := d.writeNibble(v >> 4); err != nil {
		return err
	}
	if err := d.writeNibble(v & 0x0F); err != nil {
		return err
	}
	d.clock.Sleep(execSettle)

	if err := d.pins.RS.Out(gpio.High); err != nil {
		return err
	}
	d.mode = modeCharacter
	return nil
}

// command forces the command register and transmits one command byte.
func (d *Dev) command(v byte) error {
	if err := d.pins.RS.Out(gpio.Low); err != nil {
		return err
	}
	d.mode = modeCommand
	return d.writeByte(v)
}

// Clear clears the display and returns the cursor to position 1. Clear
// Display is the one command that outruns the generic settle time, so it
// gets its own 2ms wait.
func (d *Dev) Clear() error {
	if d.halted {
		return errors.New("hd44780: halted")
	}
	if err := d.command(cmdClearDisplay); err != nil {
		return err
	}
	d.clock.Sleep(clearSettle)
	return nil
}

// MoveTo positions the cursor at a logical position:
//
//	---------------------------------------------------------------------
//	|  1 |  2 |  3 |  4 |  5 |  6 |  7 |  8 | ... | 13 | 14 | 15 | 16 |
//	---------------------------------------------------------------------
//	| 17 | 18 | 19 | 20 | 21 | 22 | 23 | 24 | ... | 29 | 30 | 31 | 32 |
//	---------------------------------------------------------------------
//
// Positions outside [MinPos, MaxPos] are ignored: no command is issued and
// nil is returned. Callers that need to report the ignore derive it from the
// value they passed.
func (d *Dev) MoveTo(pos int) error {
	if d.halted {
		return errors.New("hd44780: halted")
	}
	if pos < MinPos || pos > MaxPos {
		return nil
	}
	addr := byte(pos - 1)
	if addr >= Cols {
		addr += line2Offset
	}
	return d.command(cmdSetDDRAMAddr | addr)
}

// Print transmits up to Cols characters from p, stopping early at the first
// zero byte. Anything past the 16th character is dropped rather than sent:
// one line holds 16 cells and the driver never wraps or scrolls. It returns
// the number of characters transmitted.
//
// Print relies on the register-select invariant: every prior operation
// leaves the controller in character mode.
func (d *Dev) Print(p []byte) (int, error) {
	if d.halted {
		return 0, errors.New("hd44780: halted")
	}
	n := 0
	for _, c := range p {
		if c == 0 || n == Cols {
			break
		}
		if err := d.writeByte(c); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// WriteString prints a string at the current cursor position.
func (d *Dev) WriteString(s string) (int, error) {
	return d.Print([]byte(s))
}

// Halt blanks the display and marks the device stopped. Further calls fail;
// the pins can then be released by their owner.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	err := d.Clear()
	d.halted = true
	return err
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("hd44780.Dev{%dx%d, RS:%s, EN:%s}", Cols, Rows, d.pins.RS.Name(), d.pins.EN.Name())
}
