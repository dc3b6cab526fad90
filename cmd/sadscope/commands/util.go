// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/toitware/ubjson"
	"gopkg.in/yaml.v2"
)

func printStatus(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.CyanString(format, args...))
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.YellowString(format, args...))
}

type encoder interface {
	Encode(interface{}) error
}

func addOutputFlag(cmd *cobra.Command, def string, formats ...string) {
	cmd.Flags().StringP("output", "o", def, "output format, one of: "+strings.Join(formats, ", "))
}

func parseOutputFlag(cmd *cobra.Command, w io.Writer) (encoder, error) {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	return newEncoder(output, w)
}

func newEncoder(format string, w io.Writer) (encoder, error) {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc, nil
	case "yaml":
		return yaml.NewEncoder(w), nil
	case "ubjson":
		return &ubjsonEncoder{w: w}, nil
	case "short":
		return newShortEncoder(w), nil
	default:
		return nil, fmt.Errorf("--output flag '%s' was not recognized. Must be either json, yaml, ubjson or short", format)
	}
}

type ubjsonEncoder struct {
	w io.Writer
}

// Encode writes v as UBJSON. Values that know their UBJSON shape are
// converted first.
func (e *ubjsonEncoder) Encode(v interface{}) error {
	if u, ok := v.(interface{ UBJSON() interface{} }); ok {
		v = u.UBJSON()
	}
	b, err := ubjson.Marshal(v)
	if err != nil {
		return err
	}
	_, err = e.w.Write(b)
	return err
}

type shortEncoder struct {
	w io.Writer
}

func newShortEncoder(w io.Writer) *shortEncoder {
	return &shortEncoder{
		w: w,
	}
}

type Elements interface {
	Elements() []Short
}

type Short interface {
	Short() string
}

func (s *shortEncoder) Encode(v interface{}) error {
	es, ok := v.(Elements)
	if !ok {
		return fmt.Errorf("value type %T was not compatible with the Elements interface", v)
	}
	for _, e := range es.Elements() {
		fmt.Fprintln(s.w, e.Short())
	}
	return nil
}
