// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	keyInterrupt = 0x03
	keyEOF       = 0x04
)

// makeRaw puts f into raw mode so keystrokes reach the console one at a
// time. It returns a no-op restore function if f isn't a terminal.
func makeRaw(f *os.File) (restore func(), raw bool, err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, false, nil
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, false, err
	}
	return func() { term.Restore(fd, oldState) }, true, nil
}

// interruptReader ends the input at Ctrl-C or Ctrl-D, since raw mode no
// longer turns them into signals.
type interruptReader struct {
	r    io.Reader
	done bool
}

func (r *interruptReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	n, err := r.r.Read(p)
	if i := bytes.IndexAny(p[:n], string([]byte{keyInterrupt, keyEOF})); i >= 0 {
		r.done = true
		if i == 0 {
			return 0, io.EOF
		}
		return i, nil
	}
	return n, err
}

// crlfWriter expands "\n" to "\r\n" for terminals in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (w crlfWriter) Write(p []byte) (int, error) {
	if _, err := w.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
