// Package serial adapts a termios-raw-mode TTY to slcanx.Transport, using
// github.com/daedaluz/goserial for the device and golang.org/x/sys/unix to
// poll for read readiness so the receive loop can be cancelled.
package serial

import (
	"context"
	"fmt"
	"sync"

	goserial "github.com/daedaluz/goserial"
	"golang.org/x/sys/unix"

	"github.com/weifengdq/slcanx-go"
)

// Device is a slcanx.Transport backed by an open serial port.
type Device struct {
	raw *goserial.Port

	mu   sync.Mutex
	wake bool
	port *slcanx.Port
}

// Open opens path in raw mode at the given baud rate (via the termios2
// BOTHER custom-speed path, so any integer baud rate is accepted).
func Open(path string, baud uint32) (*Device, error) {
	p, err := goserial.Open(path, goserial.NewOptions())
	if err != nil {
		return nil, fmt.Errorf("slcanx/serial: open %s: %w", path, err)
	}

	attrs, err := p.GetAttr2()
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("slcanx/serial: get attrs: %w", err)
	}
	attrs.MakeRaw()
	attrs.SetCustomSpeed(baud)
	attrs.Cflag |= goserial.CREAD | goserial.CLOCAL
	if err := p.SetAttr2(goserial.TCSANOW, attrs); err != nil {
		p.Close()
		return nil, fmt.Errorf("slcanx/serial: set attrs: %w", err)
	}

	return &Device{raw: p}, nil
}

// BindPort associates the Device with the Port it backs, so Write can
// deliver the write-wakeup callback. Call before Port.Attach.
func (d *Device) BindPort(p *slcanx.Port) {
	d.mu.Lock()
	d.port = p
	d.mu.Unlock()
}

// Write implements slcanx.Transport.
func (d *Device) Write(p []byte) (int, error) {
	n, err := d.raw.Write(p)
	if err != nil {
		return n, err
	}
	d.mu.Lock()
	wake := d.wake
	port := d.port
	d.mu.Unlock()
	if wake && port != nil {
		go port.Writable()
	}
	return n, nil
}

// SetWriteWakeup implements slcanx.Transport.
func (d *Device) SetWriteWakeup(wake bool) {
	d.mu.Lock()
	d.wake = wake
	d.mu.Unlock()
}

// Close closes the underlying device.
func (d *Device) Close() error {
	return d.raw.Close()
}

// ReceiveLoop reads bytes from the device and feeds them to the bound
// port's ReceiveBytes until ctx is cancelled or a read error occurs. It
// polls the file descriptor with a short timeout so ctx cancellation is
// observed promptly instead of blocking in Read indefinitely.
func (d *Device) ReceiveLoop(ctx context.Context) error {
	d.mu.Lock()
	port := d.port
	d.mu.Unlock()
	if port == nil {
		return fmt.Errorf("slcanx/serial: ReceiveLoop called before BindPort")
	}

	buf := make([]byte, 4096)
	fds := []unix.PollFd{{Fd: int32(d.raw.Fd()), Events: unix.POLLIN}}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := unix.Poll(fds, 200)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("slcanx/serial: poll: %w", err)
		}
		if n == 0 || fds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		rn, err := d.raw.Read(buf)
		if err != nil {
			return fmt.Errorf("slcanx/serial: read: %w", err)
		}
		if rn > 0 {
			port.ReceiveBytes(buf[:rn], nil)
		}
	}
}
