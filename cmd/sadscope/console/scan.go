// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package console

// Field is one value converted by Scan.
type Field struct {
	Verb byte
	Int  int64
	Str  string
}

// Scanned is the outcome of Scan.
type Scanned struct {
	Fields []Field
	// Consumed is the number of input bytes matched before the scan stopped.
	Consumed int
	// Complete is set when every directive of the pattern matched.
	Complete bool
}

// Scan matches input against a scanf-style pattern.
//
// Supported directives are literal bytes, whitespace (matching any run of
// whitespace, including none), %d, %i, %s and %%. Conversions skip leading
// whitespace. Scanning stops at the first directive that fails.
func Scan(pattern, input string) Scanned {
	var res Scanned
	pos := 0
	for p := 0; p < len(pattern); p++ {
		c := pattern[p]
		switch {
		case isSpace(c):
			pos = skipSpace(input, pos)

		case c == '%' && p+1 < len(pattern) && pattern[p+1] != '%':
			p++
			verb := pattern[p]
			pos = skipSpace(input, pos)
			field, n, ok := convert(verb, input[pos:])
			if !ok {
				res.Consumed = pos
				return res
			}
			pos += n
			res.Fields = append(res.Fields, field)

		default:
			if c == '%' {
				p++
			}
			if pos >= len(input) || input[pos] != c {
				res.Consumed = pos
				return res
			}
			pos++
		}
	}
	res.Consumed = pos
	res.Complete = true
	return res
}

// Conversions counts the conversion directives in pattern.
func Conversions(pattern string) int {
	count := 0
	for p := 0; p+1 < len(pattern); p++ {
		if pattern[p] != '%' {
			continue
		}
		p++
		if pattern[p] != '%' {
			count++
		}
	}
	return count
}

func convert(verb byte, s string) (Field, int, bool) {
	switch verb {
	case 'd':
		v, n := scanInt(s, 10)
		return Field{Verb: verb, Int: v}, n, n > 0
	case 'i':
		v, n := scanInt(s, 0)
		return Field{Verb: verb, Int: v}, n, n > 0
	case 's':
		n := 0
		for n < len(s) && !isSpace(s[n]) {
			n++
		}
		return Field{Verb: verb, Str: s[:n]}, n, n > 0
	default:
		return Field{}, 0, false
	}
}

// scanInt parses an optionally signed integer prefix of s. A base of zero
// selects hexadecimal for a 0x prefix, octal for a leading 0 and decimal
// otherwise. It returns the value and the number of bytes used, zero when
// no digits were found. Overflow wraps.
func scanInt(s string, base int) (int64, int) {
	pos := 0
	negative := false
	if pos < len(s) && (s[pos] == '+' || s[pos] == '-') {
		negative = s[pos] == '-'
		pos++
	}

	if base == 0 {
		switch {
		case pos+2 < len(s) && s[pos] == '0' && (s[pos+1] == 'x' || s[pos+1] == 'X') && digitValue(s[pos+2]) < 16:
			base = 16
			pos += 2
		case pos < len(s) && s[pos] == '0':
			base = 8
		default:
			base = 10
		}
	}

	start := pos
	var v uint64
	for pos < len(s) {
		d := digitValue(s[pos])
		if d >= base {
			break
		}
		v = v*uint64(base) + uint64(d)
		pos++
	}
	if pos == start {
		return 0, 0
	}
	if negative {
		v = -v
	}
	return int64(v), pos
}

func digitValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	default:
		return 99
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

func skipSpace(s string, pos int) int {
	for pos < len(s) && isSpace(s[pos]) {
		pos++
	}
	return pos
}
