// Package serial opens the meter's Teleinfo port and splits its byte stream
// into raw lines.
package serial

import (
	"fmt"
	"io"
	"strings"
	"time"

	bugst "go.bug.st/serial"
)

// Config describes the serial link. Teleinfo runs at 1200 baud, 7 data bits,
// no parity, one stop bit.
type Config struct {
	Device      string
	BaudRate    int
	DataBits    int
	ReadTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Device:      "/dev/ttyS0",
		BaudRate:    1200,
		DataBits:    7,
		ReadTimeout: time.Second,
	}
}

// Open configures and opens the device. A read that hits ReadTimeout returns
// zero bytes and no error.
func Open(cfg Config) (io.ReadCloser, error) {
	if strings.TrimSpace(cfg.Device) == "" {
		return nil, fmt.Errorf("serial: device required")
	}
	def := DefaultConfig()
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = def.BaudRate
	}
	if cfg.DataBits <= 0 {
		cfg.DataBits = def.DataBits
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}

	port, err := bugst.Open(cfg.Device, &bugst.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.Device, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("serial: set read timeout on %s: %w", cfg.Device, err)
	}
	return port, nil
}
