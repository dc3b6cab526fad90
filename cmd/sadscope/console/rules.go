// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package console

import (
	"fmt"
	"io"
)

// Line is a split input line handed to matchers.
type Line struct {
	Token string
	Rest  string
}

// Text rebuilds the line the token and rest were split from.
func (l Line) Text() string {
	if l.Rest == "" {
		return l.Token
	}
	return l.Token + " " + l.Rest
}

// Matcher decides whether a rule applies to a line and extracts its fields.
type Matcher interface {
	Match(l Line) ([]Field, bool)
	fmt.Stringer
}

type exactMatcher string

// Exact matches a token equal to s.
func Exact(s string) Matcher {
	return exactMatcher(s)
}

func (m exactMatcher) Match(l Line) ([]Field, bool) {
	return nil, l.Token == string(m)
}

func (m exactMatcher) String() string {
	return string(m)
}

// Span selects the part of a line a pattern is scanned against.
type Span int

const (
	SpanToken Span = iota
	SpanLine
)

// PatternMatcher scans a span of the line with a scanf-style pattern.
// The match requires every conversion of the pattern to succeed. Strict
// matchers also require the pattern to consume the whole span.
type PatternMatcher struct {
	Format string
	Span   Span
	Strict bool
}

func (m PatternMatcher) Match(l Line) ([]Field, bool) {
	input := l.Token
	if m.Span == SpanLine {
		input = l.Text()
	}
	res := Scan(m.Format, input)
	if len(res.Fields) != Conversions(m.Format) {
		return nil, false
	}
	if m.Strict && (!res.Complete || res.Consumed != len(input)) {
		return nil, false
	}
	return res.Fields, true
}

func (m PatternMatcher) String() string {
	return m.Format
}

// Call is what an action sees when its rule matched.
type Call struct {
	*Env
	Line   Line
	Fields []Field
}

// Action performs a matched command.
type Action func(c *Call) error

// Rule binds a matcher to an action. Rules are tried in order and the
// first match wins.
type Rule struct {
	Name    string
	Matcher Matcher
	Action  Action
}

// Reply returns an action that writes a fixed response.
func Reply(text string) Action {
	return func(c *Call) error {
		_, err := io.WriteString(c.Out, text)
		return err
	}
}
