package hardware

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBoard struct {
	writes []uint32
	waits  []int
	resets int
}

func (b *recordingBoard) Reset()                 { b.resets++ }
func (b *recordingBoard) WriteLEDs(value uint32) { b.writes = append(b.writes, value) }
func (b *recordingBoard) BusyWait(ms int)        { b.waits = append(b.waits, ms) }

func Test_EmulatedBoard_truncatesToWidth(t *testing.T) {
	tests := []struct {
		width int
		in    uint32
		want  uint32
	}{
		{width: 8, in: 7, want: 7},
		{width: 8, in: 0x1ff, want: 0xff},
		{width: 6, in: 0xaa, want: 0x2a},
		{width: 32, in: 0xffffffff, want: 0xffffffff},
		{width: 0, in: 0x100, want: 0},
	}
	for _, test := range tests {
		b := NewEmulatedBoard(test.width, 1, nil)
		b.WriteLEDs(test.in)
		assert.Equal(t, test.want, b.LEDs(), "width %d value %#x", test.width, test.in)
	}
}

func Test_EmulatedBoard_status(t *testing.T) {
	var status bytes.Buffer
	b := NewEmulatedBoard(4, 1, &status)
	b.WriteLEDs(0x5)
	require.Equal(t, 1, strings.Count(status.String(), "\n"))
	assert.True(t, strings.HasPrefix(status.String(), "leds: "))
	assert.Equal(t, 2, strings.Count(status.String(), "●"))
	assert.Equal(t, 2, strings.Count(status.String(), "○"))

	b.Reset()
	assert.Equal(t, 1, b.Resets())
	assert.Equal(t, uint32(0), b.LEDs())
}

func Test_EmulatedBoard_BusyWait(t *testing.T) {
	var slept []time.Duration
	b := NewEmulatedBoard(8, 0.5, nil)
	b.sleep = func(d time.Duration) { slept = append(slept, d) }

	b.BusyWait(100)
	b.BusyWait(0)
	require.Len(t, slept, 1)
	assert.Equal(t, 50*time.Millisecond, slept[0])

	b = NewEmulatedBoard(8, 0, nil)
	b.sleep = func(d time.Duration) { t.Fatalf("unexpected sleep of %v", d) }
	b.BusyWait(100)
}
