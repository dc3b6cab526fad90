// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toitlang/sadscope/cmd/sadscope/directory"
	"github.com/toitlang/sadscope/cmd/sadscope/hardware"
)

var featureKeys = map[string]string{
	"leds":       directory.FeatureLEDsKey,
	"cxx":        directory.FeatureCxxKey,
	"interrupts": directory.FeatureInterruptsKey,
}

func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configure SadScope",
		Long:  "Configure the SadScope command line tool and the console it serves.",
	}

	cmd.AddCommand(
		ConfigShowCmd(),
		ConfigFeatureCmd(),
		ConfigBoardCmd(),
		ConfigConsoleCmd(),
	)
	return cmd
}

func ConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "show",
		Short:        "Show the effective configuration",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc, err := parseOutputFlag(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, settings, err := GetSettings()
			if err != nil {
				return err
			}
			return enc.Encode(settings)
		},
	}
	addOutputFlag(cmd, "yaml", "yaml", "json")
	return cmd
}

func ConfigFeatureCmd() *cobra.Command {
	names := []string{"leds", "cxx", "interrupts"}
	cmd := &cobra.Command{
		Use:   "feature",
		Short: "Enable or disable optional hardware and build features",
		Long: `Enables or disables the optional features of the emulated board.

  leds        the board has LEDs; enables the 'led' command
  cxx         the C++ demo is built in; enables the 'hellocpp' command
  interrupts  the CPU has interrupts (informational)

A console started with 'sadscope serve --watch-config' picks up changes
without a restart.`,
		Args: cobra.NoArgs,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:       "enable <" + strings.Join(names, "|") + ">",
			Short:     "Enable a feature",
			Args:      cobra.ExactArgs(1),
			ValidArgs: names,
			RunE:      configFeature(true),
		},
		&cobra.Command{
			Use:       "disable <" + strings.Join(names, "|") + ">",
			Short:     "Disable a feature",
			Args:      cobra.ExactArgs(1),
			ValidArgs: names,
			RunE:      configFeature(false),
		},
	)
	return cmd
}

func configFeature(enable bool) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		key, ok := featureKeys[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("unknown feature '%s'", args[0])
		}
		cfg, err := directory.GetUserConfig()
		if err != nil {
			return err
		}
		cfg.Set(key, enable)
		return directory.WriteConfig(cfg)
	}
}

func ConfigBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "board",
		Short:        "Configure the emulated board",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := directory.GetUserConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("led-width") {
				width, err := cmd.Flags().GetInt("led-width")
				if err != nil {
					return err
				}
				if width <= 0 || width > hardware.MaxLEDWidth {
					return fmt.Errorf("--led-width must be between 1 and %d", hardware.MaxLEDWidth)
				}
				cfg.Set(directory.BoardLEDWidthKey, width)
			}
			if cmd.Flags().Changed("delay-scale") {
				scale, err := cmd.Flags().GetFloat64("delay-scale")
				if err != nil {
					return err
				}
				if scale < 0 {
					return fmt.Errorf("--delay-scale can't be negative")
				}
				cfg.Set(directory.BoardDelayScaleKey, scale)
			}
			if cmd.Flags().Changed("baud") {
				baud, err := cmd.Flags().GetUint("baud")
				if err != nil {
					return err
				}
				cfg.Set(directory.BaudKey, baud)
			}
			return directory.WriteConfig(cfg)
		},
	}
	cmd.Flags().Int("led-width", hardware.DefaultLEDWidth, "width of the LED register in bits")
	cmd.Flags().Float64("delay-scale", 1, "multiplier for busy waits, 0 disables them")
	cmd.Flags().Uint("baud", 115200, "default baud rate of the serial port")
	return cmd
}

func ConfigConsoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "console",
		Short:        "Configure the console",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := directory.GetUserConfig()
			if err != nil {
				return err
			}
			for flag, key := range map[string]string{
				"prompt": directory.ConsolePromptKey,
				"banner": directory.ConsoleBannerKey,
			} {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				v, err := cmd.Flags().GetBool(flag)
				if err != nil {
					return err
				}
				cfg.Set(key, v)
			}
			if cmd.Flags().Changed("idle") {
				idle, err := cmd.Flags().GetDuration("idle")
				if err != nil {
					return err
				}
				cfg.Set(directory.ConsoleIdleKey, idle.String())
			}
			return directory.WriteConfig(cfg)
		},
	}
	cmd.Flags().Bool("prompt", false, "print a prompt after every command")
	cmd.Flags().Bool("banner", false, "print the help menu on start")
	cmd.Flags().Duration("idle", 0, "pause between polls while no input is pending, 0 polls continuously")
	return cmd
}
