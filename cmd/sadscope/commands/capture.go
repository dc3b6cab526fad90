// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"github.com/toitlang/sadscope/cmd/sadscope/console"
)

// Waveform is a capture of the sample stream of a SadScope.
type Waveform struct {
	Identity string  `yaml:"identity" json:"identity"`
	Preamble string  `yaml:"preamble" json:"preamble"`
	Samples  []int64 `yaml:"samples" json:"samples"`
}

func (w *Waveform) Elements() []Short {
	res := make([]Short, len(w.Samples))
	for i, s := range w.Samples {
		res[i] = sample(s)
	}
	return res
}

func (w *Waveform) UBJSON() interface{} {
	samples := make([]interface{}, len(w.Samples))
	for i, s := range w.Samples {
		samples[i] = s
	}
	return map[string]interface{}{
		"identity": w.Identity,
		"preamble": w.Preamble,
		"samples":  samples,
	}
}

type sample int64

func (s sample) Short() string {
	return strconv.FormatInt(int64(s), 10)
}

func CaptureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "capture",
		Short:        "Capture the waveform data of a SadScope",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			idle, err := cmd.Flags().GetDuration("idle")
			if err != nil {
				return err
			}
			quiet, err := cmd.Flags().GetBool("quiet")
			if err != nil {
				return err
			}
			enc, err := parseOutputFlag(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			dev, err := dialDevice(cmd)
			if err != nil {
				return err
			}
			defer dev.Close()

			var progress io.Writer
			if !quiet {
				progress = cmd.ErrOrStderr()
			}
			waveform, err := capture(dev, idle, progress)
			if err != nil {
				return err
			}
			return enc.Encode(waveform)
		},
	}
	addDeviceFlags(cmd)
	addOutputFlag(cmd, "short", "json", "yaml", "ubjson", "short")
	cmd.Flags().BoolP("quiet", "q", false, "don't show a progress bar")
	return cmd
}

func capture(dev deviceConn, idle time.Duration, progress io.Writer) (*Waveform, error) {
	identity, err := query(dev, "*IDN?", idle)
	if err != nil {
		return nil, err
	}
	preamble, err := query(dev, "WAV:PREQ", idle)
	if err != nil {
		return nil, err
	}

	if _, err := io.WriteString(dev, "WAV:DATAQ\n"); err != nil {
		return nil, err
	}
	r, err := dev.IdleReader(idle)
	if err != nil {
		return nil, err
	}

	var bar *pb.ProgressBar
	if progress != nil {
		bar = pb.New(console.WaveformSamples)
		bar.SetWriter(progress)
		bar.Start()
		defer bar.Finish()
	}

	res := &Waveform{
		Identity: strings.TrimSpace(string(identity)),
		Preamble: strings.TrimSpace(string(preamble)),
	}
	scanner := bufio.NewScanner(r)
	echoed := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !echoed && line == "WAV:DATAQ" {
			echoed = true
			continue
		}
		if line == "" {
			continue
		}
		v, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected sample '%s'", line)
		}
		res.Samples = append(res.Samples, v)
		if bar != nil {
			bar.Increment()
		}
		if len(res.Samples) == console.WaveformSamples {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(res.Samples) != console.WaveformSamples {
		return res, fmt.Errorf("expected %d samples, got %d", console.WaveformSamples, len(res.Samples))
	}
	return res, nil
}
