// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"context"

	"github.com/spf13/cobra"
)

type ctxKey string

const (
	ctxKeyInfo ctxKey = "info"
)

type Info struct {
	Version string `mapstructure:"version" yaml:"version" json:"version"`
	Date    string `mapstructure:"date" yaml:"date" json:"date"`
}

func SetInfo(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, ctxKeyInfo, info)
}

func GetInfo(ctx context.Context) Info {
	info, ok := ctx.Value(ctxKeyInfo).(Info)
	if !ok {
		return Info{Version: "development", Date: "unknown"}
	}
	return info
}

func SadscopeCmd(info Info, isReleaseBuild bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sadscope",
		Short: "Console and instrument emulator for the SadScope oscilloscope",
		Long: "SadScope runs the oscilloscope's line console on your machine and talks to\n" +
			"the real device over a serial port.\n\n" +
			"The console understands the operator commands of the firmware (help, reboot,\n" +
			"demos) and the subset of SCPI queries used by scope front-ends such as\n" +
			"'*IDN?', ':TRIG:EDGE:LEVQ' and 'WAV:DATAQ'.",
	}

	cmd.AddCommand(
		ServeCmd(),
		RunCmd(),
		QueryCmd(),
		CaptureCmd(),
		PortCmd(),
		ConfigCmd(),
		VersionCmd(info, isReleaseBuild),
	)
	return cmd
}
