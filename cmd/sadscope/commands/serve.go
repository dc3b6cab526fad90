// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/toitlang/sadscope/cmd/sadscope/console"
	"github.com/toitlang/sadscope/cmd/sadscope/hardware"
	"go.bug.st/serial"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the SadScope console",
		Long: "Run the SadScope console on this machine.\n\n" +
			"By default the console reads from the keyboard. With --serial or --port it\n" +
			"answers on a serial port instead, so a host on the other end of the line sees\n" +
			"a SadScope. With --listen it accepts SCPI sessions over TCP, one at a time.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, settings, err := GetSettings()
			if err != nil {
				return err
			}
			if err := applyConsoleFlags(cmd.Flags(), &settings); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			status := cmd.ErrOrStderr()
			watch, err := cmd.Flags().GetBool("watch-config")
			if err != nil {
				return err
			}
			var reload <-chan console.Features
			if watch {
				if reload, err = watchFeatures(ctx, cfg.ConfigFileUsed(), status); err != nil {
					return err
				}
			}

			listen, err := cmd.Flags().GetString("listen")
			if err != nil {
				return err
			}
			port, err := cmd.Flags().GetString("port")
			if err != nil {
				return err
			}
			useSerial, err := cmd.Flags().GetBool("serial")
			if err != nil {
				return err
			}
			if useSerial && port == "" {
				port = settings.Port
			}

			sess := newSession(settings, GetInfo(ctx).Date, reload, status)
			switch {
			case listen != "":
				listener, err := net.Listen("tcp", listen)
				if err != nil {
					return err
				}
				printStatus(status, "Serving SadScope console on '%s' ...", listener.Addr())
				return serveListener(ctx, listener, sess)

			case port != "":
				if port, err = CheckPort(port); err != nil {
					return err
				}
				baud, err := resolveBaud(cmd)
				if err != nil {
					return err
				}
				dev, err := serialOpen(port, &serial.Mode{
					BaudRate: int(baud),
				})
				if err != nil {
					return err
				}
				defer dev.Close()
				src := console.NewReaderSource(dev)
				defer src.Close()
				printStatus(status, "Serving SadScope console on port '%s' ...", port)
				return ignoreCanceled(sess.serve(ctx, src, dev))

			default:
				return serveTerminal(ctx, sess, cmd.OutOrStdout())
			}
		},
	}

	addConsoleFlags(cmd)
	cmd.Flags().StringP("port", "p", "", "serve on this serial port")
	cmd.Flags().Bool("serial", false, "serve on the configured serial port")
	cmd.Flags().Uint("baud", 0, "the baud rate of the serial port (defaults to the configured rate)")
	cmd.Flags().StringP("listen", "l", "", "serve SCPI sessions over TCP on this address, for example ':5025'")
	cmd.Flags().Bool("watch-config", false, "reload the feature flags when the config file changes")
	return cmd
}

func addConsoleFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("leds", false, "the board has LEDs (enables the 'led' command)")
	cmd.Flags().Bool("cxx", false, "the C++ demo is built in (enables the 'hellocpp' command)")
	cmd.Flags().Bool("prompt", false, "print a prompt after every command")
	cmd.Flags().Bool("banner", false, "print the help menu on start")
	cmd.Flags().Duration("idle", 0, "pause between polls while no input is pending")
	cmd.Flags().Float64("delay-scale", 1, "multiplier for the board's busy waits, 0 disables them")
}

// applyConsoleFlags overrides settings with the flags given on the command
// line.
func applyConsoleFlags(flags *pflag.FlagSet, settings *Settings) error {
	var err error
	if flags.Changed("leds") {
		if settings.Features.LEDs, err = flags.GetBool("leds"); err != nil {
			return err
		}
	}
	if flags.Changed("cxx") {
		if settings.Features.Cxx, err = flags.GetBool("cxx"); err != nil {
			return err
		}
	}
	if flags.Changed("prompt") {
		if settings.Console.Prompt, err = flags.GetBool("prompt"); err != nil {
			return err
		}
	}
	if flags.Changed("banner") {
		if settings.Console.Banner, err = flags.GetBool("banner"); err != nil {
			return err
		}
	}
	if flags.Changed("idle") {
		if settings.Console.Idle, err = flags.GetDuration("idle"); err != nil {
			return err
		}
	}
	if flags.Changed("delay-scale") {
		if settings.Board.DelayScale, err = flags.GetFloat64("delay-scale"); err != nil {
			return err
		}
	}
	return nil
}

// session serves consoles on one input, starting a fresh console after
// every board reset.
type session struct {
	settings  Settings
	features  console.Features
	board     *hardware.EmulatedBoard
	buildDate string
	reload    <-chan console.Features
	status    io.Writer
}

func newSession(settings Settings, buildDate string, reload <-chan console.Features, status io.Writer) *session {
	return &session{
		settings:  settings,
		features:  settings.Features,
		board:     hardware.NewEmulatedBoard(settings.Board.LEDWidth, settings.Board.DelayScale, status),
		buildDate: buildDate,
		reload:    reload,
		status:    status,
	}
}

func (s *session) serve(ctx context.Context, src console.Source, out io.Writer) error {
	for {
		c := console.New(src, out, s.board,
			console.WithFeatures(s.features),
			console.WithBuildDate(s.buildDate),
			console.WithPrompt(s.settings.Console.Prompt),
			console.WithBanner(s.settings.Console.Banner),
			console.WithIdle(s.settings.Console.Idle),
			console.WithReload(s.reload),
		)
		err := c.Run(ctx)
		s.features = c.Dispatcher().Features()
		if errors.Is(err, console.ErrReset) {
			printStatus(s.status, "Console rebooted")
			continue
		}
		return err
	}
}

func serveListener(ctx context.Context, listener net.Listener, sess *session) error {
	defer listener.Close()
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		id := uuid.New()
		printStatus(sess.status, "Session %s: connected from %s", id, conn.RemoteAddr())
		src := console.NewReaderSource(conn)
		err = sess.serve(ctx, src, conn)
		src.Close()
		conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			printWarning(sess.status, "Session %s: %v", id, err)
		} else {
			printStatus(sess.status, "Session %s: closed", id)
		}
	}
}

func serveTerminal(ctx context.Context, sess *session, stdout io.Writer) error {
	restore, raw, err := makeRaw(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to put the terminal in raw mode: %w", err)
	}
	defer restore()

	var in io.Reader = os.Stdin
	out := stdout
	if raw {
		in = &interruptReader{r: os.Stdin}
		out = crlfWriter{stdout}
		sess.status = crlfWriter{sess.status}
		sess.board = hardware.NewEmulatedBoard(sess.settings.Board.LEDWidth, sess.settings.Board.DelayScale, sess.status)
		printStatus(sess.status, "SadScope console. Press Ctrl-C to quit.")
	}
	src := console.NewReaderSource(in)
	defer src.Close()
	return ignoreCanceled(sess.serve(ctx, src, out))
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
