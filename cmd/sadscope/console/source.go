// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package console

import (
	"errors"
	"io"
	"strings"
	"sync"
)

// Source produces input characters one at a time.
// Available never blocks. ReadByte may block, but is only called after
// Available reported true. Once ReadByte fails it keeps failing with the
// same error.
type Source interface {
	Available() bool
	ReadByte() (byte, error)
	// Err returns the error the next ReadByte fails with, if it is already
	// known, without consuming anything.
	Err() error
}

// ErrSourceClosed is reported by a ReaderSource after Close.
var ErrSourceClosed = errors.New("source closed")

const readerSourceBuffer = 4096

// ReaderSource turns a blocking io.Reader into a pollable Source by pumping
// it through a buffered channel.
type ReaderSource struct {
	ch        chan byte
	errc      chan error
	err       error
	done      chan struct{}
	closeOnce sync.Once
}

// NewReaderSource starts reading from r in the background. Once r fails,
// the remaining buffered bytes are delivered first, then the error.
// The pump stops at Close; a Read already in progress returns first.
func NewReaderSource(r io.Reader) *ReaderSource {
	s := &ReaderSource{
		ch:   make(chan byte, readerSourceBuffer),
		errc: make(chan error, 1),
		done: make(chan struct{}),
	}
	go s.pump(r)
	return s
}

func (s *ReaderSource) pump(r io.Reader) {
	defer close(s.ch)
	chunk := make([]byte, 256)
	for {
		count, err := r.Read(chunk)
		for _, b := range chunk[:count] {
			select {
			case s.ch <- b:
			case <-s.done:
				s.errc <- ErrSourceClosed
				return
			}
		}
		if err != nil {
			s.errc <- err
			return
		}
		select {
		case <-s.done:
			s.errc <- ErrSourceClosed
			return
		default:
		}
	}
}

// Close stops the background reader. It doesn't close the underlying
// reader.
func (s *ReaderSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}

func (s *ReaderSource) Available() bool {
	return len(s.ch) > 0 || s.Err() != nil
}

func (s *ReaderSource) Err() error {
	if len(s.ch) > 0 {
		return nil
	}
	if s.err == nil {
		select {
		case s.err = <-s.errc:
		default:
		}
	}
	return s.err
}

func (s *ReaderSource) ReadByte() (byte, error) {
	if b, ok := <-s.ch; ok {
		return b, nil
	}
	if s.err == nil {
		s.err = <-s.errc
	}
	return 0, s.err
}

// stringSource replays a fixed input. It reports itself available at the
// end of its input so the caller observes io.EOF instead of polling forever.
type stringSource struct {
	r *strings.Reader
}

func NewStringSource(s string) Source {
	return &stringSource{r: strings.NewReader(s)}
}

func (s *stringSource) Available() bool {
	return true
}

func (s *stringSource) Err() error {
	if s.r.Len() == 0 {
		return io.EOF
	}
	return nil
}

func (s *stringSource) ReadByte() (byte, error) {
	return s.r.ReadByte()
}
