// Package tinygo implements the BLE central on top of tinygo.org/x/bluetooth
// (BlueZ on Linux, WinRT on Windows, CoreBluetooth on macOS).
package tinygo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brickble/gospike"
	"github.com/brickble/gospike/pkg/ble"
	"tinygo.org/x/bluetooth"
)

func init() {
	ble.RegisterAdapter("tinygo", NewCentral)
}

var ErrNoDevice = errors.New("no matching device found during scan")

type Central struct {
	adapter *bluetooth.Adapter
	logger  *slog.Logger
}

func NewCentral(logger *slog.Logger) (gospike.Central, error) {
	if logger == nil {
		logger = slog.Default()
	}
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enabling BLE adapter: %w", err)
	}
	return &Central{adapter: adapter, logger: logger}, nil
}

// "Dial" implementation of Central interface
func (c *Central) Dial(ctx context.Context, filter gospike.Filter) (gospike.Peripheral, error) {
	result, err := c.scan(ctx, filter)
	if err != nil {
		return nil, err
	}
	c.logger.Info("connecting", "address", result.Address.String(), "name", result.LocalName())
	device, err := c.adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("gatt connect: %w", err)
	}
	return &peripheral{device: device, logger: c.logger}, nil
}

// "Close" implementation of Central interface
func (c *Central) Close() error {
	return nil
}

// scan runs discovery until a device matches the filter or ctx expires.
// Matching order : explicit address, advertised service UUID, name hints.
func (c *Central) scan(ctx context.Context, filter gospike.Filter) (bluetooth.ScanResult, error) {
	var service bluetooth.UUID
	haveService := false
	if filter.ServiceUUID != "" {
		parsed, err := bluetooth.ParseUUID(filter.ServiceUUID)
		if err != nil {
			return bluetooth.ScanResult{}, fmt.Errorf("parsing service uuid: %w", err)
		}
		service = parsed
		haveService = true
	}
	match := func(r bluetooth.ScanResult) bool {
		if filter.Address != "" {
			return strings.EqualFold(r.Address.String(), filter.Address)
		}
		if haveService && r.HasServiceUUID(service) {
			return true
		}
		name := r.LocalName()
		if name == "" {
			return false
		}
		for _, hint := range filter.NameHints {
			if strings.Contains(name, hint) {
				return true
			}
		}
		return false
	}

	found := make(chan bluetooth.ScanResult, 1)
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = c.adapter.StopScan()
	}()
	err := c.adapter.Scan(func(adapter *bluetooth.Adapter, r bluetooth.ScanResult) {
		if !match(r) {
			return
		}
		select {
		case found <- r:
			close(stop)
		default:
		}
	})
	if err != nil {
		return bluetooth.ScanResult{}, fmt.Errorf("scan: %w", err)
	}
	select {
	case r := <-found:
		return r, nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return bluetooth.ScanResult{}, err
	}
	return bluetooth.ScanResult{}, ErrNoDevice
}

type peripheral struct {
	device bluetooth.Device
	logger *slog.Logger
}

func (p *peripheral) Services(ctx context.Context) ([]gospike.Service, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	discovered, err := p.device.DiscoverServices(nil)
	if err != nil {
		return nil, fmt.Errorf("discovering services: %w", err)
	}
	services := make([]gospike.Service, 0, len(discovered))
	for _, svc := range discovered {
		chars, err := svc.DiscoverCharacteristics(nil)
		if err != nil {
			return nil, fmt.Errorf("discovering characteristics of %v: %w", svc.UUID().String(), err)
		}
		wrapped := make([]gospike.Characteristic, 0, len(chars))
		for _, char := range chars {
			wrapped = append(wrapped, &characteristic{char: char})
		}
		services = append(services, &service{uuid: svc.UUID().String(), chars: wrapped})
	}
	return services, nil
}

func (p *peripheral) Close() error {
	return p.device.Disconnect()
}

type service struct {
	uuid  string
	chars []gospike.Characteristic
}

func (s *service) UUID() string { return s.uuid }
func (s *service) Characteristics() []gospike.Characteristic { return s.chars }

type characteristic struct {
	char bluetooth.DeviceCharacteristic
}

func (c *characteristic) UUID() string {
	return strings.ToLower(c.char.UUID().String())
}

// Properties synthesizes the flag set : the backend does not expose raw GATT
// properties, so the known SPIKE pair is mapped exactly and anything else is
// assumed capable of unacknowledged writes and notifications.
func (c *characteristic) Properties() gospike.Properties {
	switch c.UUID() {
	case gospike.RxUUID:
		return gospike.PropertyWriteWithoutResponse
	case gospike.TxUUID:
		return gospike.PropertyNotify
	}
	return gospike.PropertyWriteWithoutResponse | gospike.PropertyNotify
}

func (c *characteristic) Write(p []byte, withResponse bool) error {
	// The backend only offers unacknowledged writes
	_, err := c.char.WriteWithoutResponse(p)
	return err
}

func (c *characteristic) Subscribe(callback func(data []byte)) error {
	return c.char.EnableNotifications(callback)
}

func (c *characteristic) Unsubscribe() error {
	return c.char.EnableNotifications(nil)
}
