// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package console

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/toitlang/sadscope/cmd/sadscope/hardware"
)

// Config holds the console settings.
type Config struct {
	Features  Features
	Demos     *Demos
	BuildDate string

	// Prompt prints the SadScope prompt after every dispatched line.
	Prompt bool
	// Banner prints the help menu when the loop starts.
	Banner bool
	// Idle is how long Run waits when no input is pending. Zero polls
	// without pausing.
	Idle time.Duration
	// Reload delivers new feature sets. They take effect between lines.
	Reload <-chan Features
}

// Option is a functional option for configuring the Console.
type Option func(*Config)

func WithFeatures(f Features) Option {
	return func(c *Config) {
		c.Features = f
	}
}

// WithDemos replaces the demo programs wired to the board.
func WithDemos(d Demos) Option {
	return func(c *Config) {
		c.Demos = &d
	}
}

func WithBuildDate(date string) Option {
	return func(c *Config) {
		c.BuildDate = date
	}
}

func WithPrompt(enabled bool) Option {
	return func(c *Config) {
		c.Prompt = enabled
	}
}

func WithBanner(enabled bool) Option {
	return func(c *Config) {
		c.Banner = enabled
	}
}

func WithIdle(d time.Duration) Option {
	return func(c *Config) {
		c.Idle = d
	}
}

func WithReload(ch <-chan Features) Option {
	return func(c *Config) {
		c.Reload = ch
	}
}

// Console is the service loop: it feeds polled lines through the
// tokenizer into the dispatcher.
type Console struct {
	config     Config
	src        Source
	out        io.Writer
	board      hardware.Board
	editor     *LineEditor
	dispatcher *Dispatcher
}

func New(src Source, out io.Writer, board hardware.Board, opts ...Option) *Console {
	config := Config{
		BuildDate: "unknown",
	}
	for _, opt := range opts {
		opt(&config)
	}
	c := &Console{
		config: config,
		src:    src,
		out:    out,
		board:  board,
		editor: NewLineEditor(src, out),
	}
	c.dispatcher = c.newDispatcher(config.Features)
	return c
}

func (c *Console) newDispatcher(f Features) *Dispatcher {
	demos := DefaultDemos(c.board, c.src)
	if c.config.Demos != nil {
		demos = *c.config.Demos
	}
	return NewDispatcher(Env{
		Out:       c.out,
		Board:     c.board,
		Demos:     demos,
		Features:  f,
		BuildDate: c.config.BuildDate,
	})
}

func (c *Console) Dispatcher() *Dispatcher {
	return c.dispatcher
}

func (c *Console) Editor() *LineEditor {
	return c.editor
}

// Step runs one iteration of the service loop: one poll and, if that
// completed a line, its dispatch.
func (c *Console) Step() error {
	line, ok, err := c.editor.Poll()
	if err != nil || !ok {
		return err
	}
	token, rest := Split(line)
	if err := c.dispatcher.Dispatch(token, rest); err != nil {
		return err
	}
	if c.config.Prompt {
		_, err = io.WriteString(c.out, Prompt)
	}
	return err
}

// Run polls until ctx is done, the source fails or the board is reset.
// The end of the input is a clean exit.
func (c *Console) Run(ctx context.Context) error {
	if c.config.Banner {
		if err := c.dispatcher.Help(); err != nil {
			return err
		}
	}
	if c.config.Prompt {
		if _, err := io.WriteString(c.out, Prompt); err != nil {
			return err
		}
	}

	var idle *time.Timer
	if c.config.Idle > 0 {
		idle = time.NewTimer(c.config.Idle)
		if !idle.Stop() {
			<-idle.C
		}
		defer idle.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-c.config.Reload:
			c.dispatcher = c.newDispatcher(f)
			continue
		default:
		}

		if idle != nil && !c.src.Available() {
			idle.Reset(c.config.Idle)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-idle.C:
			}
			continue
		}

		if err := c.Step(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
