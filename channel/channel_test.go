package channel

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyDisplay records every operation as a printable call trace.
type spyDisplay struct {
	calls []string
}

func (s *spyDisplay) Print(p []byte) (int, error) {
	s.calls = append(s.calls, fmt.Sprintf("print(%q)", p))
	n := bytes.IndexByte(p, 0)
	if n < 0 {
		n = len(p)
	}
	if n > 16 {
		n = 16
	}
	return n, nil
}

func (s *spyDisplay) Clear() error {
	s.calls = append(s.calls, "clear()")
	return nil
}

func (s *spyDisplay) MoveTo(pos int) error {
	s.calls = append(s.calls, fmt.Sprintf("moveTo(%d)", pos))
	return nil
}

func TestDispatchPlain(t *testing.T) {
	spy := &spyDisplay{}
	d := New(spy)

	status, err := d.Dispatch(Plain, []byte("HELLO"))
	require.NoError(t, err)
	assert.Equal(t, Accepted, status)
	// A terminator is appended for writers that do not send one.
	assert.Equal(t, []string{`print("HELLO\x00")`}, spy.calls)

	// An embedded terminator just produces a redundant second one.
	spy.calls = nil
	status, err = d.Dispatch(Plain, []byte("HI\x00s"))
	require.NoError(t, err)
	assert.Equal(t, Accepted, status)
	assert.Equal(t, []string{"print(\"HI\\x00s\\x00\")"}, spy.calls)
}

// A print that puts zero characters on the display is reported as ignored,
// even though the transfer was attempted.
func TestDispatchPlainNothingTransmitted(t *testing.T) {
	tests := []struct {
		name      string
		payload   []byte
		wantCalls []string
	}{
		{"empty payload", nil, []string{`print("\x00")`}},
		{"leading terminator", []byte("\x00hidden"), []string{`print("\x00hidden\x00")`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyDisplay{}
			status, err := New(spy).Dispatch(Plain, tt.payload)
			require.NoError(t, err)
			assert.Equal(t, Ignored, status)
			assert.Equal(t, tt.wantCalls, spy.calls)
		})
	}
}

func TestDispatchPlainTooLong(t *testing.T) {
	spy := &spyDisplay{}
	d := New(spy)

	status, err := d.Dispatch(Plain, bytes.Repeat([]byte("x"), MaxPayload+1))
	require.NoError(t, err)
	assert.Equal(t, Rejected, status)
	assert.Empty(t, spy.calls, "rejected input must produce zero transfers")
}

func TestDispatchPlainMaxPayload(t *testing.T) {
	spy := &spyDisplay{}
	d := New(spy)

	status, err := d.Dispatch(Plain, bytes.Repeat([]byte("x"), MaxPayload))
	require.NoError(t, err)
	assert.Equal(t, Accepted, status)
	assert.Len(t, spy.calls, 1)
}

func TestDispatchClear(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty payload", nil},
		{"payload discarded", []byte("ignored")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyDisplay{}
			d := New(spy)
			status, err := d.Dispatch(Clear, tt.payload)
			require.NoError(t, err)
			assert.Equal(t, Accepted, status)
			assert.Equal(t, []string{"clear()"}, spy.calls)
		})
	}
}

func TestDispatchPosition(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantStatus Status
		wantCalls  []string
	}{
		{"empty is a no-op", "", Ignored, nil},
		{"single digit", "5", Accepted, []string{"moveTo(5)"}},
		{"two digits", "05", Accepted, []string{"moveTo(5)"}},
		{"second line", "17", Accepted, []string{"moveTo(17)"}},
		{"last position", "32", Accepted, []string{"moveTo(32)"}},
		// Single-digit zero is delegated: the display ignores it.
		{"single zero reaches display", "0", Ignored, []string{"moveTo(0)"}},
		// Two-digit zero is filtered before the call.
		{"double zero filtered", "00", Ignored, nil},
		{"out of range", "33", Ignored, nil},
		{"way out of range", "99", Ignored, nil},
		{"single non-digit", "x", Ignored, nil},
		// Non-digit first byte contributes nothing.
		{"non-digit then digit", "x7", Accepted, []string{"moveTo(7)"}},
		// A non-digit second byte leaves the first digit unscaled.
		{"digit then non-digit", "3x", Accepted, []string{"moveTo(3)"}},
		{"both non-digits", "xy", Ignored, nil},
		// Bytes past the second are ignored.
		{"extra bytes ignored", "175", Accepted, []string{"moveTo(17)"}},
		{"extra garbage ignored", "08zzz", Accepted, []string{"moveTo(8)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyDisplay{}
			d := New(spy)
			status, err := d.Dispatch(Position, []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCalls, spy.calls)
		})
	}
}

// Payloads "5" and "05" take different code paths but must land on the same
// display call.
func TestPositionPathEquivalence(t *testing.T) {
	short := &spyDisplay{}
	long := &spyDisplay{}

	_, err := New(short).Dispatch(Position, []byte("5"))
	require.NoError(t, err)
	_, err = New(long).Dispatch(Position, []byte("05"))
	require.NoError(t, err)

	assert.Equal(t, short.calls, long.calls)
}

func TestDispatchUnknownChannel(t *testing.T) {
	spy := &spyDisplay{}
	d := New(spy)

	status, err := d.Dispatch(ID(7), []byte("anything"))
	require.NoError(t, err)
	assert.Equal(t, Ignored, status)
	assert.Empty(t, spy.calls)
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "plain", Plain.String())
	assert.Equal(t, "clear", Clear.String())
	assert.Equal(t, "position", Position.String())
	assert.Equal(t, "unknown", ID(9).String())

	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "ignored", Ignored.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "unknown", Status(9).String())
}
