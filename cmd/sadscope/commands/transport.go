// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"
)

func serialOpen(port string, mode *serial.Mode) (*serialPort, error) {
	dev, err := serial.Open(port, mode)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("the port '%s' was not found", port)
	}
	if err != nil {
		return nil, err
	}

	return &serialPort{dev}, err
}

type serialPort struct {
	serial.Port
}

// IdleReader returns a reader that ends with io.EOF once the port has
// been quiet for d.
func (s *serialPort) IdleReader(d time.Duration) (io.Reader, error) {
	if err := s.SetReadTimeout(d); err != nil {
		return nil, err
	}
	return idleSerialReader{s.Port}, nil
}

type idleSerialReader struct {
	serial.Port
}

func (r idleSerialReader) Read(buf []byte) (int, error) {
	n, err := r.Port.Read(buf)
	if err == nil && n == 0 {
		return 0, io.EOF
	}
	return n, err
}

type tcpConn struct {
	net.Conn
}

func (c *tcpConn) IdleReader(d time.Duration) (io.Reader, error) {
	return idleTCPReader{conn: c.Conn, idle: d}, nil
}

type idleTCPReader struct {
	conn net.Conn
	idle time.Duration
}

func (r idleTCPReader) Read(buf []byte) (int, error) {
	if err := r.conn.SetReadDeadline(time.Now().Add(r.idle)); err != nil {
		return 0, err
	}
	n, err := r.conn.Read(buf)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return n, io.EOF
	}
	return n, err
}

// deviceConn is a connection to a SadScope console.
type deviceConn interface {
	io.ReadWriteCloser
	IdleReader(d time.Duration) (io.Reader, error)
}

func addDeviceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("port", "p", ConfiguredPort(), "serial port of the device")
	cmd.Flags().Uint("baud", 0, "the baud rate of the serial port (defaults to the configured rate)")
	cmd.Flags().String("addr", "", "talk to a console served over TCP at this address instead of a serial port")
	cmd.Flags().Duration("idle", 200*time.Millisecond, "how long the device must be quiet before a reply is considered complete")
}

func dialDevice(cmd *cobra.Command) (deviceConn, error) {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return nil, err
	}
	if addr != "" {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return nil, err
		}
		return &tcpConn{conn}, nil
	}

	port, err := cmd.Flags().GetString("port")
	if err != nil {
		return nil, err
	}
	if port, err = CheckPort(port); err != nil {
		return nil, err
	}

	baud, err := resolveBaud(cmd)
	if err != nil {
		return nil, err
	}
	dev, err := serialOpen(port, &serial.Mode{
		BaudRate: int(baud),
	})
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func resolveBaud(cmd *cobra.Command) (uint, error) {
	baud, err := cmd.Flags().GetUint("baud")
	if err != nil {
		return 0, err
	}
	if baud != 0 {
		return baud, nil
	}
	_, settings, err := GetSettings()
	if err != nil {
		return 0, err
	}
	return settings.Baud, nil
}
