// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package console

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/toitlang/sadscope/cmd/sadscope/hardware"
)

const (
	Identity        = "SD,SadOscilloscope,0,0.01-0.0-0.0"
	Preamble        = "0,2,1000,1,1e-6,-3.e-03,0,1.0,0,0"
	FallbackReply   = "Error!\n"
	ClearScreen     = "\x1b[1;1H\x1b[2J"
	Prompt          = "\x1b[92;1mSadScope\x1b[0m> "
	WaveformSamples = 2000
)

// ErrReset is returned once the board has been told to reset. Nothing
// after a reset runs on real hardware, so the service loop stops.
var ErrReset = errors.New("board reset")

// Features gates the commands that depend on optional hardware or build
// options.
type Features struct {
	LEDs       bool `mapstructure:"leds" yaml:"leds" json:"leds"`
	Cxx        bool `mapstructure:"cxx" yaml:"cxx" json:"cxx"`
	Interrupts bool `mapstructure:"interrupts" yaml:"interrupts" json:"interrupts"`
}

// Demos are the demo programs the console can start.
type Demos struct {
	LED      func(w io.Writer) error
	Donut    func(w io.Writer) error
	HelloC   func(w io.Writer) error
	HelloCpp func(w io.Writer) error
}

// DefaultDemos wires the demo programs to a board. The donut stops when a
// key arrives on src; the key is consumed.
func DefaultDemos(board hardware.Board, src Source) Demos {
	keyPressed := func() bool {
		if src == nil || !src.Available() {
			return false
		}
		// A failed source stops the demo like a key would. Its error is
		// left unread for the editor to report.
		if src.Err() != nil {
			return true
		}
		_, err := src.ReadByte()
		return err == nil
	}
	return Demos{
		LED: func(w io.Writer) error {
			return hardware.LEDDemo(w, board)
		},
		Donut: func(w io.Writer) error {
			return hardware.Donut(w, board, keyPressed, hardware.DonutMaxFrames)
		},
		HelloC:   hardware.HelloC,
		HelloCpp: hardware.HelloCpp,
	}
}

// Env holds the collaborators actions work with.
type Env struct {
	Out       io.Writer
	Board     hardware.Board
	Demos     Demos
	Features  Features
	BuildDate string
}

// Dispatcher maps a split line to the first matching rule.
type Dispatcher struct {
	env   Env
	rules []Rule
}

func NewDispatcher(env Env) *Dispatcher {
	return &Dispatcher{
		env:   env,
		rules: Rules(env.Features),
	}
}

func (d *Dispatcher) Rules() []Rule {
	return d.rules
}

func (d *Dispatcher) Features() Features {
	return d.env.Features
}

// Dispatch runs the first rule matching the line, or writes the fallback
// reply when none does.
func (d *Dispatcher) Dispatch(token, rest string) error {
	line := Line{Token: token, Rest: rest}
	for _, rule := range d.rules {
		fields, ok := rule.Matcher.Match(line)
		if !ok {
			continue
		}
		return rule.Action(&Call{
			Env:    &d.env,
			Line:   line,
			Fields: fields,
		})
	}
	_, err := io.WriteString(d.env.Out, FallbackReply)
	return err
}

// Help writes the command menu.
func (d *Dispatcher) Help() error {
	return help(&Call{Env: &d.env})
}

// Rules returns the command table in match order.
func Rules(f Features) []Rule {
	rules := []Rule{
		{Name: "waveform data", Matcher: Exact("WAV:DATAQ"), Action: waveformData},
		{Name: "help", Matcher: Exact("help"), Action: help},
		{Name: "reboot", Matcher: Exact("reboot"), Action: reboot},
		{Name: "identify", Matcher: Exact("*IDN?"), Action: Reply(Identity + "\n")},
		{
			Name:    "channel display",
			Matcher: PatternMatcher{Format: ":ch%i:DISPQ", Span: SpanToken, Strict: true},
			Action:  Reply("1\n"),
		},
		{
			Name:    "waveform source",
			Matcher: PatternMatcher{Format: "WAV:SOUR %s", Span: SpanLine, Strict: true},
			Action:  selectSource,
		},
		{Name: "waveform preamble", Matcher: Exact("WAV:PREQ"), Action: Reply(Preamble)},
		{Name: "trigger mode", Matcher: Exact(":TRIG:MODEQ"), Action: Reply("EDGE\n")},
		{Name: "trigger status", Matcher: Exact(":TRIG:STATQ"), Action: Reply("RUN\n")},
		{Name: "trigger source", Matcher: Exact(":TRIG:EDGE:SOURQ"), Action: Reply("CHAN1\n")},
		{
			// Trailing text after the level is accepted.
			Name:    "trigger level",
			Matcher: PatternMatcher{Format: "TRIG:EDGE:LEV  %d", Span: SpanLine},
			Action:  setTriggerLevel,
		},
		{Name: "trigger slope", Matcher: Exact(":TRIG:EDGE:SLOPEQ"), Action: Reply("POS\n")},
		{Name: "trigger level query", Matcher: Exact(":TRIG:EDGE:LEVQ"), Action: Reply("0\n")},
		{Name: "clear", Matcher: Exact("clear"), Action: Reply(ClearScreen)},
	}
	if f.LEDs {
		rules = append(rules, Rule{Name: "led", Matcher: Exact("led"), Action: ledDemo})
	}
	rules = append(rules,
		Rule{Name: "donut", Matcher: Exact("donut"), Action: donutDemo},
		Rule{Name: "helloc", Matcher: Exact("helloc"), Action: helloCDemo},
	)
	if f.Cxx {
		rules = append(rules, Rule{Name: "hellocpp", Matcher: Exact("hellocpp"), Action: helloCppDemo})
	}
	return rules
}

func waveformData(c *Call) error {
	for i := 0; i < WaveformSamples; i++ {
		if _, err := fmt.Fprintf(c.Out, "%d", i&0xf); err != nil {
			return err
		}
		c.Board.BusyWait(1)
		if _, err := io.WriteString(c.Out, "\n"); err != nil {
			return err
		}
	}
	return nil
}

type helpEntry struct {
	name string
	desc string
}

func help(c *Call) error {
	entries := []helpEntry{
		{"help", "Show this command"},
		{"clear", "clear the screen"},
		{"reboot", "Reboot CPU"},
	}
	if c.Features.LEDs {
		entries = append(entries, helpEntry{"led", "Led demo"})
	}
	entries = append(entries,
		helpEntry{"donut", "Spinning Donut demo"},
		helpEntry{"helloc", "Hello C"},
	)
	if c.Features.Cxx {
		entries = append(entries, helpEntry{"hellocpp", "Hello C++"})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nLiteX minimal demo app built %s\n\n", c.BuildDate)
	sb.WriteString("Available commands:\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "%-19s- %s\n", e.name, e.desc)
	}
	_, err := io.WriteString(c.Out, sb.String())
	return err
}

func reboot(c *Call) error {
	c.Board.Reset()
	return ErrReset
}

// selectSource accepts a waveform source name. There is only one source
// so the selection has no effect.
func selectSource(c *Call) error {
	return nil
}

func setTriggerLevel(c *Call) error {
	c.Board.WriteLEDs(uint32(c.Fields[0].Int))
	_, err := io.WriteString(c.Out, "LEVVV\n")
	return err
}

func ledDemo(c *Call) error {
	return runDemo(c, "", c.Demos.LED)
}

func donutDemo(c *Call) error {
	return runDemo(c, "Donut demo...\n", c.Demos.Donut)
}

func helloCDemo(c *Call) error {
	return runDemo(c, "Hello C demo...\n", c.Demos.HelloC)
}

func helloCppDemo(c *Call) error {
	return runDemo(c, "Hello C++ demo...\n", c.Demos.HelloCpp)
}

func runDemo(c *Call, banner string, demo func(io.Writer) error) error {
	if banner != "" {
		if _, err := io.WriteString(c.Out, banner); err != nil {
			return err
		}
	}
	if demo == nil {
		return nil
	}
	return demo(c.Out)
}
