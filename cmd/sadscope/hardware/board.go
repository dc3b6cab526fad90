// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package hardware

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Board is the set of hardware side effects the console drives.
type Board interface {
	// Reset triggers a CPU reset. On real hardware it never returns.
	Reset()
	// WriteLEDs writes the LED output register. Values wider than the
	// register are truncated.
	WriteLEDs(value uint32)
	// BusyWait blocks for the given number of milliseconds.
	BusyWait(ms int)
}

const (
	DefaultLEDWidth = 8
	MaxLEDWidth     = 32
)

// EmulatedBoard stands in for the SoC when the console runs on the host.
// LED writes are rendered as a bar on the status writer.
type EmulatedBoard struct {
	width  int
	scale  float64
	status io.Writer

	leds   uint32
	resets int

	sleep func(time.Duration)
	on    *color.Color
	off   *color.Color
}

func NewEmulatedBoard(width int, scale float64, status io.Writer) *EmulatedBoard {
	if width <= 0 || width > MaxLEDWidth {
		width = DefaultLEDWidth
	}
	if scale < 0 {
		scale = 0
	}
	if status == nil {
		status = io.Discard
	}
	return &EmulatedBoard{
		width:  width,
		scale:  scale,
		status: status,
		sleep:  time.Sleep,
		on:     color.New(color.FgHiRed, color.Bold),
		off:    color.New(color.FgHiBlack),
	}
}

func (b *EmulatedBoard) Reset() {
	b.resets++
	b.leds = 0
	fmt.Fprintln(b.status, color.YellowString("board: reset"))
}

func (b *EmulatedBoard) WriteLEDs(value uint32) {
	if b.width < 32 {
		value &= (1 << uint(b.width)) - 1
	}
	b.leds = value
	fmt.Fprintf(b.status, "leds: %s\n", b.render())
}

func (b *EmulatedBoard) BusyWait(ms int) {
	if ms <= 0 || b.scale == 0 {
		return
	}
	b.sleep(time.Duration(float64(ms) * b.scale * float64(time.Millisecond)))
}

// LEDs returns the last value written to the LED register.
func (b *EmulatedBoard) LEDs() uint32 {
	return b.leds
}

// Resets returns how many times the board has been reset.
func (b *EmulatedBoard) Resets() int {
	return b.resets
}

func (b *EmulatedBoard) Width() int {
	return b.width
}

func (b *EmulatedBoard) render() string {
	var sb strings.Builder
	for i := b.width - 1; i >= 0; i-- {
		if b.leds&(1<<uint(i)) != 0 {
			sb.WriteString(b.on.Sprint("●"))
		} else {
			sb.WriteString(b.off.Sprint("○"))
		}
	}
	return sb.String()
}
