// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toitlang/sadscope/cmd/sadscope/directory"
	"go.bug.st/serial"
)

func PortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "port",
		Short: "List and select serial ports",
		Args:  cobra.NoArgs,
	}

	listCmd := &cobra.Command{
		Use:          "list",
		Short:        "List the serial ports that may hold a SadScope",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := cmd.Flags().GetBool("all")
			if err != nil {
				return err
			}
			ports, err := listPorts(all)
			if err != nil {
				return err
			}
			configured := ConfiguredPort()
			for _, p := range ports {
				marker := " "
				if p == configured {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, p)
			}
			return nil
		},
	}
	listCmd.Flags().Bool("all", false, "if set, will show all available ports")

	setCmd := &cobra.Command{
		Use:          "set [port]",
		Short:        "Select the serial port you want to use",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := cmd.Flags().GetBool("all")
			if err != nil {
				return err
			}

			cfg, err := directory.GetUserConfig()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				cfg.Set(directory.PortKey, args[0])
				return directory.WriteConfig(cfg)
			}
			_, err = GetPort(cfg, all, true)
			return err
		},
	}
	setCmd.Flags().Bool("all", false, "if set, will show all available ports")

	cmd.AddCommand(listCmd, setCmd)
	return cmd
}

func PortExists(port string) (bool, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return false, err
	}
	for _, p := range ports {
		if p == port {
			return true, nil
		}
	}
	return false, nil
}

func ConfiguredPort() string {
	cfg, err := directory.GetUserConfig()
	if err != nil {
		return ""
	}
	return cfg.GetString(directory.PortKey)
}

// CheckPort returns port if it exists, and otherwise asks the user to pick
// one.
func CheckPort(port string) (string, error) {
	exists, err := PortExists(port)
	if err != nil {
		return "", err
	}
	if exists {
		return port, nil
	}

	cfg, err := directory.GetUserConfig()
	if err != nil {
		return "", err
	}

	return GetPort(cfg, false, true)
}

// GetPort lets the user pick a port, and stores the choice if save is set.
func GetPort(cfg *viper.Viper, all bool, save bool) (string, error) {
	port, err := pickPort(all)
	if err != nil {
		return "", err
	}
	if save {
		cfg.Set(directory.PortKey, port)
		if err := directory.WriteConfig(cfg); err != nil {
			return "", err
		}
	}
	return port, nil
}

func listPorts(all bool) ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	if !all {
		ports = filterPorts(runtime.GOOS, ports)
	}
	return ports, nil
}

func pickPort(all bool) (string, error) {
	ports, err := listPorts(all)
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", fmt.Errorf("no serial ports detected. Is the SadScope connected and powered?")
	}

	prompt := promptui.Select{
		Label:     "Choose what serial port you want to use",
		Items:     ports,
		Templates: &promptui.SelectTemplates{},
	}

	i, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("you didn't select anything")
	}

	return ports[i], nil
}

func filterPorts(goos string, ports []string) []string {
	switch goos {
	case "darwin":
		return darwinFilterPaths(ports)
	case "linux":
		return linuxFilterPaths(ports)
	default:
		return ports
	}
}

func darwinFilterPaths(paths []string) []string {
	existing := map[string]struct{}{}
	for _, p := range paths {
		existing[p] = struct{}{}
	}
	var res []string
	for _, path := range paths {
		if strings.HasPrefix(path, "/dev/cu") && !strings.Contains(path, "Bluetooth") {
			res = append(res, path)
		} else if strings.HasPrefix(path, "/dev/tty") && !strings.Contains(path, "Bluetooth") {
			candidate := "/dev/cu" + strings.TrimPrefix(path, "/dev/tty")
			if _, exists := existing[candidate]; !exists {
				res = append(res, path)
			}
		}
	}
	return res
}

// linuxFilterPaths keeps USB serial adapters and CDC-ACM devices, which is
// how the FPGA board's UART shows up.
func linuxFilterPaths(paths []string) []string {
	res := []string(nil)
	for _, path := range paths {
		if strings.Contains(path, "tty") {
			if strings.Contains(path, "USB") || strings.Contains(path, "ACM") {
				res = append(res, path)
			}
		}
	}
	return res
}
