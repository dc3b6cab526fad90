// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package hardware

import (
	"bytes"
	"io"
	"math"
)

const (
	donutWidth  = 80
	donutHeight = 22
	donutCells  = donutWidth * donutHeight

	// DonutFrameDelay is the pause between two rendered frames, in milliseconds.
	DonutFrameDelay = 30
	// DonutMaxFrames bounds the donut demo when no key is pressed.
	DonutMaxFrames = 1000
)

var donutShades = []byte(".,-~:;=!*#$@")

// LEDDemo runs the counter, shift and dance patterns on the LED register.
func LEDDemo(w io.Writer, b Board) error {
	if _, err := io.WriteString(w, "Led demo...\n"); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "Counter mode...\n"); err != nil {
		return err
	}
	for i := 0; i < 32; i++ {
		b.WriteLEDs(uint32(i))
		b.BusyWait(100)
	}

	if _, err := io.WriteString(w, "Shift mode...\n"); err != nil {
		return err
	}
	for i := 0; i < 4; i++ {
		b.WriteLEDs(1 << uint(i))
		b.BusyWait(200)
	}
	for i := 0; i < 4; i++ {
		b.WriteLEDs(1 << uint(3-i))
		b.BusyWait(200)
	}

	if _, err := io.WriteString(w, "Dance mode...\n"); err != nil {
		return err
	}
	for i := 0; i < 4; i++ {
		b.WriteLEDs(0x55)
		b.BusyWait(200)
		b.WriteLEDs(0xaa)
		b.BusyWait(200)
	}
	return nil
}

// Donut renders a spinning torus until stop reports true or maxFrames
// frames have been drawn. A maxFrames of zero or less means no limit.
func Donut(w io.Writer, b Board, stop func() bool, maxFrames int) error {
	if _, err := io.WriteString(w, "\x1b[2J"); err != nil {
		return err
	}

	var (
		a, bAngle float64
		zbuf      [donutCells]float64
		screen    [donutCells]byte
		frame     bytes.Buffer
	)
	for n := 0; maxFrames <= 0 || n < maxFrames; n++ {
		for k := range screen {
			screen[k] = ' '
			zbuf[k] = 0
		}
		sinA, cosA := math.Sincos(a)
		sinB, cosB := math.Sincos(bAngle)
		for j := 0.0; j < 2*math.Pi; j += 0.07 {
			sinJ, cosJ := math.Sincos(j)
			h := cosJ + 2
			for i := 0.0; i < 2*math.Pi; i += 0.02 {
				sinI, cosI := math.Sincos(i)
				depth := 1 / (sinI*h*sinA + sinJ*cosA + 5)
				t := sinI*h*cosA - sinJ*sinA
				x := int(40 + 30*depth*(cosI*h*cosB-t*sinB))
				y := int(12 + 15*depth*(cosI*h*sinB+t*cosB))
				if y < 0 || y >= donutHeight || x < 0 || x >= donutWidth {
					continue
				}
				o := x + donutWidth*y
				if depth <= zbuf[o] {
					continue
				}
				zbuf[o] = depth
				shade := int(8 * ((sinJ*sinA-sinI*cosJ*cosA)*cosB - sinI*cosJ*sinA - sinJ*cosA - cosI*cosJ*sinB))
				if shade < 0 {
					shade = 0
				}
				if shade >= len(donutShades) {
					shade = len(donutShades) - 1
				}
				screen[o] = donutShades[shade]
			}
		}

		frame.Reset()
		frame.WriteString("\x1b[H")
		for k, c := range screen {
			if k%donutWidth == donutWidth-1 {
				frame.WriteByte('\n')
			} else {
				frame.WriteByte(c)
			}
		}
		if _, err := w.Write(frame.Bytes()); err != nil {
			return err
		}

		a += 0.04
		bAngle += 0.02
		if stop != nil && stop() {
			return nil
		}
		b.BusyWait(DonutFrameDelay)
	}
	return nil
}

func HelloC(w io.Writer) error {
	_, err := io.WriteString(w, "C: Hello, world!\n")
	return err
}

func HelloCpp(w io.Writer) error {
	_, err := io.WriteString(w, "C++: Hello, world!\n")
	return err
}
