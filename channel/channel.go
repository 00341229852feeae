// Package channel interprets byte payloads arriving on one of three command
// channels and turns them into display operations.
//
// The channel identity decides the interpretation: channel 0 is raw text,
// channel 1 is a no-payload clear trigger, channel 2 is a decimal cursor
// position encoded as one or two ASCII digits. Payloads are capped at
// MaxPayload bytes; anything longer is dropped whole.
package channel

import (
	"github.com/flavioheleno/hd44780"
)

// ID identifies a command channel. It is supplied with every dispatch and
// never stored.
type ID int

const (
	// Plain prints the payload at the current cursor position.
	Plain ID = 0
	// Clear clears the display; the payload is discarded.
	Clear ID = 1
	// Position moves the cursor to the decimal position in the payload.
	Position ID = 2
)

func (id ID) String() string {
	switch id {
	case Plain:
		return "plain"
	case Clear:
		return "clear"
	case Position:
		return "position"
	}
	return "unknown"
}

// MaxPayload is the largest payload accepted per dispatch. A line holds 16
// visible cells, so longer inputs are never meaningful.
const MaxPayload = 30

// Status reports what a dispatch did with its payload, so the boundary can
// log ignores and rejections without the dispatcher logging anything itself.
type Status int

const (
	// Accepted means the payload produced at least one display operation.
	Accepted Status = iota
	// Ignored means the payload was understood but deliberately produced
	// nothing on the display: an empty or out-of-range position, a print
	// that transmitted zero characters, or an unknown channel.
	Ignored
	// Rejected means the payload exceeded MaxPayload and was dropped whole.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Ignored:
		return "ignored"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Display is the set of display operations a dispatcher drives. *hd44780.Dev
// implements it.
type Display interface {
	Print(p []byte) (int, error)
	Clear() error
	MoveTo(pos int) error
}

// Dispatcher routes channel payloads to a display. It performs no
// serialization of its own: the caller must guarantee at most one dispatch
// in flight, since all channels share the display's pins and register state.
type Dispatcher struct {
	dev Display
}

// New returns a dispatcher driving dev.
func New(dev Display) *Dispatcher {
	return &Dispatcher{dev: dev}
}

// Dispatch interprets p according to the channel identity and returns what
// became of it. The error, if any, is a pin-level failure from the display;
// malformed payloads never error.
func (c *Dispatcher) Dispatch(id ID, p []byte) (Status, error) {
	if len(p) > MaxPayload {
		return Rejected, nil
	}

	switch id {
	case Plain:
		return c.print(p)
	case Clear:
		// The payload carries no information; writing anything at all,
		// including nothing, triggers the clear.
		return Accepted, c.dev.Clear()
	case Position:
		return c.position(p)
	}
	return Ignored, nil
}

// print copies the payload and appends a terminator: writers like echo -n
// do not send one. A terminator already present in the input just yields a
// second one, which Print's early-stop rule renders harmless.
//
// The status comes from the transmitted count: an empty payload, or one
// opening with a terminator, puts nothing on the display and is reported as
// ignored so the boundary's logging stays truthful.
func (c *Dispatcher) print(p []byte) (Status, error) {
	buf := make([]byte, 0, MaxPayload+1)
	buf = append(buf, p...)
	buf = append(buf, 0)
	n, err := c.dev.Print(buf)
	if n == 0 {
		return Ignored, err
	}
	return Accepted, err
}

// position parses a cursor position from the first one or two bytes.
//
// The two lengths take different routes on purpose, preserved from the
// original driver: a single digit is forwarded to MoveTo even when it is 0
// (MoveTo ignores it), while a two-byte value of 0 is filtered here and
// never reaches the display. The outcomes are identical; the status is not
// derived the same way.
func (c *Dispatcher) position(p []byte) (Status, error) {
	switch {
	case len(p) == 0:
		return Ignored, nil
	case len(p) == 1:
		if !isDigit(p[0]) {
			return Ignored, nil
		}
		pos := int(p[0] - '0')
		err := c.dev.MoveTo(pos)
		if pos < hd44780.MinPos {
			return Ignored, err
		}
		return Accepted, err
	default:
		// Only the first two bytes participate; non-digits contribute
		// nothing. Note a non-digit second byte leaves the first digit
		// unscaled: "3x" means 3, not 30.
		pos := 0
		if isDigit(p[0]) {
			pos = int(p[0] - '0')
		}
		if isDigit(p[1]) {
			pos = pos*10 + int(p[1]-'0')
		}
		if pos < hd44780.MinPos || pos > hd44780.MaxPos {
			return Ignored, nil
		}
		return Accepted, c.dev.MoveTo(pos)
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
