package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(input string, out io.Writer, board *recordingBoard, opts ...Option) *Console {
	calls := &demoCalls{}
	opts = append([]Option{WithDemos(calls.demos())}, opts...)
	return New(NewStringSource(input), out, board, opts...)
}

func Test_Console_Run(t *testing.T) {
	var out bytes.Buffer
	board := &recordingBoard{}
	c := newTestConsole("*IDN?\nbogus\rTRIG:EDGE:LEV  7\n", &out, board)
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t,
		"*IDN?\nSD,SadOscilloscope,0,0.01-0.0-0.0\n"+
			"bogus\nError!\n"+
			"TRIG:EDGE:LEV  7\nLEVVV\n", out.String())
	assert.Equal(t, []uint32{7}, board.writes)
}

func Test_Console_editing(t *testing.T) {
	var out bytes.Buffer
	c := newTestConsole("*IDX\x7fN?\n", &out, &recordingBoard{})
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, "*IDX\x08 \x08N?\nSD,SadOscilloscope,0,0.01-0.0-0.0\n", out.String())
}

func Test_Console_Step(t *testing.T) {
	var out bytes.Buffer
	src := &scriptSource{}
	c := New(src, &out, &recordingBoard{})

	require.NoError(t, c.Step())
	assert.Zero(t, out.Len())

	src.keys = []byte(":TRIG:MODEQ\n")
	for i := 0; i < len(":TRIG:MODEQ"); i++ {
		require.NoError(t, c.Step())
	}
	assert.Equal(t, ":TRIG:MODEQ", out.String())
	require.NoError(t, c.Step())
	assert.Equal(t, ":TRIG:MODEQ\nEDGE\n", out.String())
	assert.Zero(t, c.Editor().Cursor())
}

func Test_Console_reset(t *testing.T) {
	var out bytes.Buffer
	board := &recordingBoard{}
	c := newTestConsole("reboot\n*IDN?\n", &out, board)
	err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrReset)
	assert.Equal(t, 1, board.resets)
	assert.Equal(t, "reboot\n", out.String())
}

func Test_Console_promptAndBanner(t *testing.T) {
	var out bytes.Buffer
	c := newTestConsole("clear\n", &out, &recordingBoard{}, WithPrompt(true), WithBanner(true), WithBuildDate("today"))
	require.NoError(t, c.Run(context.Background()))
	prompt := "\x1b[92;1mSadScope\x1b[0m> "
	s := out.String()
	assert.Contains(t, s, "LiteX minimal demo app built today")
	assert.Equal(t, "clear\n\x1b[1;1H\x1b[2J"+prompt, s[len(s)-len("clear\n\x1b[1;1H\x1b[2J"+prompt):])
}

func Test_Console_cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(&scriptSource{}, io.Discard, &recordingBoard{}, WithIdle(time.Millisecond))
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx)
	}()
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("console did not stop")
	}
}

func Test_Console_reload(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out syncBuffer
	reload := make(chan Features, 1)
	c := New(NewReaderSource(pr), &out, &recordingBoard{},
		WithDemos((&demoCalls{}).demos()),
		WithReload(reload),
		WithIdle(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx)
	}()

	_, err := io.WriteString(pw, "hellocpp\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return out.Contains("Error!\n") }, 5*time.Second, time.Millisecond)

	reload <- Features{Cxx: true}
	require.Eventually(t, func() bool { return len(reload) == 0 }, 5*time.Second, time.Millisecond)
	_, err = io.WriteString(pw, "hellocpp\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return out.Contains("Hello C++ demo...\n") }, 5*time.Second, time.Millisecond)

	pw.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("console did not stop at end of input")
	}
}

func Test_Console_sourceFailsDuringDonut(t *testing.T) {
	errPort := errors.New("port closed")
	var out bytes.Buffer
	board := &recordingBoard{}
	c := New(&scriptSource{keys: []byte("donut\n"), err: errPort}, &out, board)
	err := c.Run(context.Background())
	assert.ErrorIs(t, err, errPort)
	assert.Contains(t, out.String(), "donut\nDonut demo...\n")
	assert.Equal(t, 0, board.waits)
}
