package printer

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"
)

// Kind selects how a receipt printer is reached
type Kind string

const (
	KindNone    Kind = "none"
	KindUSB     Kind = "usb"
	KindNetwork Kind = "network"
)

// Printer sends ESC/POS bytes to a receipt printer
type Printer interface {
	Print(ctx context.Context, data []byte) error
	IsConnected(ctx context.Context) bool
	// Describe names the transport and target, e.g. "network 10.0.0.5:9100"
	Describe() string
}

// Config describes the printer attached to the front desk
type Config struct {
	Kind    Kind
	USBPath string
	Address string
	// DialTimeout bounds connecting to a network printer. Zero means 5s.
	DialTimeout time.Duration
}

// Discard accepts every job and prints nothing
var Discard Printer = discard{}

// New returns the printer described by cfg
func New(cfg Config) (Printer, error) {
	switch cfg.Kind {
	case KindNone, "":
		return Discard, nil
	case KindUSB:
		if cfg.USBPath == "" {
			return nil, fmt.Errorf("printer: usb printer needs a device path")
		}
		return &devicePrinter{path: cfg.USBPath}, nil
	case KindNetwork:
		if cfg.Address == "" {
			return nil, fmt.Errorf("printer: network printer needs an address")
		}
		timeout := cfg.DialTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		return &networkPrinter{address: cfg.Address, dialer: net.Dialer{Timeout: timeout}}, nil
	}
	return nil, fmt.Errorf("printer: unknown kind %q (use usb, network or none)", cfg.Kind)
}

// devicePrinter writes to a character device such as /dev/usb/lp0,
// opening it for each job
type devicePrinter struct {
	path string
}

func (p *devicePrinter) Print(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return nil
}

func (p *devicePrinter) IsConnected(context.Context) bool {
	_, err := os.Stat(p.path)
	return err == nil
}

func (p *devicePrinter) Describe() string {
	return "usb " + p.path
}

// networkPrinter speaks raw TCP, usually on port 9100
type networkPrinter struct {
	address string
	dialer  net.Dialer
}

const writeTimeout = 10 * time.Second

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("printer: connect %s: %w", p.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) IsConnected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (p *networkPrinter) Describe() string {
	return "network " + p.address
}

type discard struct{}

func (discard) Print(context.Context, []byte) error { return nil }
func (discard) IsConnected(context.Context) bool    { return false }
func (discard) Describe() string                    { return "none" }
