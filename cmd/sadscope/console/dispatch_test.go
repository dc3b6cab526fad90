package console

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBoard struct {
	writes []uint32
	waits  int
	resets int
}

func (b *recordingBoard) Reset()                 { b.resets++ }
func (b *recordingBoard) WriteLEDs(value uint32) { b.writes = append(b.writes, value) }
func (b *recordingBoard) BusyWait(ms int)        { b.waits++ }

type demoCalls struct {
	names []string
}

func (d *demoCalls) demos() Demos {
	record := func(name string) func(io.Writer) error {
		return func(w io.Writer) error {
			d.names = append(d.names, name)
			return nil
		}
	}
	return Demos{
		LED:      record("led"),
		Donut:    record("donut"),
		HelloC:   record("helloc"),
		HelloCpp: record("hellocpp"),
	}
}

type dispatchFixture struct {
	out   bytes.Buffer
	board recordingBoard
	demos demoCalls
	d     *Dispatcher
}

func newDispatchFixture(f Features) *dispatchFixture {
	fx := &dispatchFixture{}
	fx.d = NewDispatcher(Env{
		Out:       &fx.out,
		Board:     &fx.board,
		Demos:     fx.demos.demos(),
		Features:  f,
		BuildDate: "Oct 18 2026 10:00:00",
	})
	return fx
}

func (fx *dispatchFixture) dispatch(t *testing.T, line string) error {
	t.Helper()
	token, rest := Split(line)
	return fx.d.Dispatch(token, rest)
}

func Test_Dispatch_replies(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{line: "*IDN?", want: "SD,SadOscilloscope,0,0.01-0.0-0.0\n"},
		{line: ":ch3:DISPQ", want: "1\n"},
		{line: ":ch1:DISPQ ignored", want: "1\n"},
		{line: ":ch3:DISPQX", want: "Error!\n"},
		{line: ":chA:DISPQ", want: "Error!\n"},
		{line: "WAV:SOUR CHAN1", want: ""},
		{line: "WAV:SOUR CHAN1 CHAN2", want: "Error!\n"},
		{line: "WAV:SOUR", want: "Error!\n"},
		{line: "WAV:PREQ", want: "0,2,1000,1,1e-6,-3.e-03,0,1.0,0,0"},
		{line: ":TRIG:MODEQ", want: "EDGE\n"},
		{line: ":TRIG:STATQ", want: "RUN\n"},
		{line: ":TRIG:EDGE:SOURQ", want: "CHAN1\n"},
		{line: ":TRIG:EDGE:SLOPEQ", want: "POS\n"},
		{line: ":TRIG:EDGE:LEVQ", want: "0\n"},
		{line: "clear", want: "\x1b[1;1H\x1b[2J"},
		{line: "bogus", want: "Error!\n"},
		{line: "", want: "Error!\n"},
		{line: "*idn?", want: "Error!\n"},
		{line: "help me", want: ""},
	}
	for _, test := range tests {
		t.Run(test.line, func(t *testing.T) {
			fx := newDispatchFixture(Features{LEDs: true})
			require.NoError(t, fx.dispatch(t, test.line))
			if test.line == "help me" {
				assert.Contains(t, fx.out.String(), "Available commands:")
				return
			}
			assert.Equal(t, test.want, fx.out.String())
			assert.Empty(t, fx.board.writes)
			assert.Zero(t, fx.board.resets)
			assert.Empty(t, fx.demos.names)
		})
	}
}

func Test_Dispatch_triggerLevel(t *testing.T) {
	tests := []struct {
		line  string
		value uint32
	}{
		{line: "TRIG:EDGE:LEV  7", value: 7},
		{line: "TRIG:EDGE:LEV  7 extra", value: 7},
		{line: "TRIG:EDGE:LEV 12", value: 12},
		{line: "TRIG:EDGE:LEV  -1", value: 0xffffffff},
	}
	for _, test := range tests {
		t.Run(test.line, func(t *testing.T) {
			fx := newDispatchFixture(Features{})
			require.NoError(t, fx.dispatch(t, test.line))
			assert.Equal(t, "LEVVV\n", fx.out.String())
			assert.Equal(t, []uint32{test.value}, fx.board.writes)
		})
	}

	fx := newDispatchFixture(Features{})
	require.NoError(t, fx.dispatch(t, "TRIG:EDGE:LEV  x"))
	assert.Equal(t, "Error!\n", fx.out.String())
	assert.Empty(t, fx.board.writes)
}

func Test_Dispatch_waveformData(t *testing.T) {
	fx := newDispatchFixture(Features{})
	require.NoError(t, fx.dispatch(t, "WAV:DATAQ"))
	lines := strings.Split(strings.TrimSuffix(fx.out.String(), "\n"), "\n")
	require.Len(t, lines, WaveformSamples)
	assert.Equal(t, "0", lines[0])
	assert.Equal(t, "15", lines[15])
	assert.Equal(t, "0", lines[16])
	assert.Equal(t, "15", lines[WaveformSamples-1])
	assert.Equal(t, WaveformSamples, fx.board.waits)
}

func Test_Dispatch_reboot(t *testing.T) {
	fx := newDispatchFixture(Features{})
	err := fx.dispatch(t, "reboot")
	assert.ErrorIs(t, err, ErrReset)
	assert.Equal(t, 1, fx.board.resets)
	assert.Empty(t, fx.out.String())
}

func Test_Dispatch_demos(t *testing.T) {
	tests := []struct {
		name     string
		features Features
		line     string
		out      string
		demo     string
	}{
		{name: "led", features: Features{LEDs: true}, line: "led", demo: "led"},
		{name: "led without hardware", line: "led", out: "Error!\n"},
		{name: "donut", line: "donut", out: "Donut demo...\n", demo: "donut"},
		{name: "helloc", line: "helloc", out: "Hello C demo...\n", demo: "helloc"},
		{name: "hellocpp", features: Features{Cxx: true}, line: "hellocpp", out: "Hello C++ demo...\n", demo: "hellocpp"},
		{name: "hellocpp disabled", line: "hellocpp", out: "Error!\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fx := newDispatchFixture(test.features)
			require.NoError(t, fx.dispatch(t, test.line))
			assert.Equal(t, test.out, fx.out.String())
			if test.demo == "" {
				assert.Empty(t, fx.demos.names)
			} else {
				assert.Equal(t, []string{test.demo}, fx.demos.names)
			}
		})
	}
}

func Test_Dispatch_help(t *testing.T) {
	fx := newDispatchFixture(Features{})
	require.NoError(t, fx.dispatch(t, "help"))
	assert.Equal(t, "\nLiteX minimal demo app built Oct 18 2026 10:00:00\n\n"+
		"Available commands:\n"+
		"help               - Show this command\n"+
		"clear              - clear the screen\n"+
		"reboot             - Reboot CPU\n"+
		"donut              - Spinning Donut demo\n"+
		"helloc             - Hello C\n", fx.out.String())

	fx = newDispatchFixture(Features{LEDs: true, Cxx: true})
	require.NoError(t, fx.d.Help())
	assert.Contains(t, fx.out.String(), "led                - Led demo\n")
	assert.Contains(t, fx.out.String(), "hellocpp           - Hello C++\n")
}

func Test_Rules_order(t *testing.T) {
	names := func(rules []Rule) []string {
		var res []string
		for _, r := range rules {
			res = append(res, r.Matcher.String())
		}
		return res
	}
	all := names(Rules(Features{LEDs: true, Cxx: true}))
	assert.Equal(t, []string{
		"WAV:DATAQ", "help", "reboot", "*IDN?", ":ch%i:DISPQ", "WAV:SOUR %s", "WAV:PREQ",
		":TRIG:MODEQ", ":TRIG:STATQ", ":TRIG:EDGE:SOURQ", "TRIG:EDGE:LEV  %d",
		":TRIG:EDGE:SLOPEQ", ":TRIG:EDGE:LEVQ", "clear", "led", "donut", "helloc", "hellocpp",
	}, all)

	assert.NotContains(t, names(Rules(Features{})), "led")
	assert.NotContains(t, names(Rules(Features{})), "hellocpp")
}

func Test_DefaultDemos_donutStops(t *testing.T) {
	t.Run("key", func(t *testing.T) {
		src := &scriptSource{keys: []byte("xy")}
		board := &recordingBoard{}
		require.NoError(t, DefaultDemos(board, src).Donut(io.Discard))
		assert.Equal(t, 0, board.waits)
		assert.Equal(t, []byte("y"), src.keys, "only the stopping key is consumed")
	})

	t.Run("failed source", func(t *testing.T) {
		errPort := errors.New("port closed")
		src := &scriptSource{err: errPort}
		require.NoError(t, DefaultDemos(&recordingBoard{}, src).Donut(io.Discard))
		assert.ErrorIs(t, src.Err(), errPort)
		_, err := src.ReadByte()
		assert.ErrorIs(t, err, errPort)
	})
}
