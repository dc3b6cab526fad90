// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/toitlang/sadscope/cmd/sadscope/console"
)

func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Feed a file of console input through a SadScope console",
		Long: "Feed the contents of <script> through a SadScope console as if it had been\n" +
			"typed, and print everything the console writes back. Use '-' to read the\n" +
			"script from stdin.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, settings, err := GetSettings()
			if err != nil {
				return err
			}
			// Scripts run without the pauses of the real board unless asked.
			settings.Board.DelayScale = 0
			settings.Console.Idle = 0
			if err := applyConsoleFlags(cmd.Flags(), &settings); err != nil {
				return err
			}

			script, err := readScript(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			sess := newSession(settings, GetInfo(cmd.Context()).Date, nil, cmd.ErrOrStderr())
			return sess.serve(cmd.Context(), console.NewStringSource(script), cmd.OutOrStdout())
		},
	}
	addConsoleFlags(cmd)
	return cmd
}

func readScript(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("no such file: '%s'", path)
	}
	if err != nil {
		return "", fmt.Errorf("can't read script '%s', reason: %w", path, err)
	}
	return string(b), nil
}
