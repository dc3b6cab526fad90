// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package console

import (
	"bytes"
	"io"
)

const (
	// LineCapacity is the size of the line buffer. The last slot is kept
	// for the terminator, so a line holds at most LineCapacity-1 characters.
	LineCapacity = 64

	keyBell      = 0x07
	keyBackspace = 0x08
	keyDelete    = 0x7f
)

var eraseSequence = []byte("\x08 \x08")

// LineEditor accumulates characters from a Source into a line, echoing
// accepted keystrokes to the output.
type LineEditor struct {
	src    Source
	out    io.Writer
	buf    [LineCapacity]byte
	cursor int
}

func NewLineEditor(src Source, out io.Writer) *LineEditor {
	return &LineEditor{
		src: src,
		out: out,
	}
}

// Cursor returns the number of characters currently held.
func (e *LineEditor) Cursor() int {
	return e.cursor
}

// Poll consumes at most one character. It returns the completed line and
// true when that character terminated a line.
func (e *LineEditor) Poll() (string, bool, error) {
	if !e.src.Available() {
		return "", false, nil
	}
	c, err := e.src.ReadByte()
	if err != nil {
		return "", false, err
	}

	switch c {
	case keyDelete, keyBackspace:
		if e.cursor > 0 {
			e.cursor--
			_, err = e.out.Write(eraseSequence)
		}
	case keyBell:
	case '\r', '\n':
		line := e.buf[:e.cursor]
		// A NUL typed into the line ends it, as it would for a C string.
		if i := bytes.IndexByte(line, 0); i >= 0 {
			line = line[:i]
		}
		completed := string(line)
		e.cursor = 0
		if _, err := io.WriteString(e.out, "\n"); err != nil {
			return "", false, err
		}
		return completed, true, nil
	default:
		// Full lines silently drop further input.
		if e.cursor >= LineCapacity-1 {
			break
		}
		if _, err = e.out.Write([]byte{c}); err != nil {
			return "", false, err
		}
		e.buf[e.cursor] = c
		e.cursor++
	}
	return "", false, err
}
