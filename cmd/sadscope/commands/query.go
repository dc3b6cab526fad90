// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/toitlang/sadscope/cmd/sadscope/console"
)

func QueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <command>...",
		Short: "Send a command to a SadScope and print the reply",
		Long: "Send a single console line to a SadScope and print what it answers.\n" +
			"The arguments are joined with spaces, for example:\n\n" +
			"  $ sadscope query '*IDN?'\n" +
			"  $ sadscope query TRIG:EDGE:LEV ' 7'",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			idle, err := cmd.Flags().GetDuration("idle")
			if err != nil {
				return err
			}

			dev, err := dialDevice(cmd)
			if err != nil {
				return err
			}
			defer dev.Close()

			reply, err := query(dev, strings.Join(args, " "), idle)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(reply)
			return err
		},
	}
	addDeviceFlags(cmd)
	return cmd
}

// query sends line and returns what the device writes back until it goes
// quiet, without the echo of the line.
func query(dev deviceConn, line string, idle time.Duration) ([]byte, error) {
	if len(line) >= console.LineCapacity {
		return nil, fmt.Errorf("command is %d characters long, the console accepts at most %d", len(line), console.LineCapacity-1)
	}
	if _, err := io.WriteString(dev, line+"\n"); err != nil {
		return nil, err
	}
	r, err := dev.IdleReader(idle)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return stripEcho(data, line), nil
}

func stripEcho(data []byte, line string) []byte {
	echo := []byte(line + "\n")
	if bytes.HasPrefix(data, echo) {
		return data[len(echo):]
	}
	if echo := []byte(line + "\r\n"); bytes.HasPrefix(data, echo) {
		return data[len(echo):]
	}
	return data
}
