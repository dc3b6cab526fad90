// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toitlang/sadscope/cmd/sadscope/console"
)

func VersionCmd(info Info, isReleaseBuild bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "version",
		Short:        "Print the version of SadScope",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			version := "development"
			if isReleaseBuild {
				version = info.Version
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "SadScope version:\t%s\n", version)
			fmt.Fprintf(out, "Instrument:\t%s\n", console.Identity)
			fmt.Fprintf(out, "Build date:\t%s\n", info.Date)
			if !isReleaseBuild {
				fmt.Fprintln(out, "Build type:\tdevelopment")
			}
		},
	}
	return cmd
}
