// Package hub implements the SPIKE App 3 client : connection management,
// message dispatch, typed requests and the program upload workflow.
package hub

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brickble/gospike"
	"github.com/brickble/gospike/internal/cobs"
	"github.com/brickble/gospike/pkg/messages"
)

// Client talks to one SPIKE hub over a BLE central.
type Client struct {
	central gospike.Central
	config  Config
	logger  *slog.Logger

	// mu guards the connection state and the pending request slot. The
	// notification path takes it only for the short dispatch step.
	mu         sync.Mutex
	connected  bool
	peripheral gospike.Peripheral
	rx         gospike.Characteristic
	tx         gospike.Characteristic
	info       *messages.InfoResponse
	closed     chan struct{}
	pending    *pendingRequest

	// reqMu serializes all outbound traffic. Request holds it for the whole
	// exchange, so at most one typed request is outstanding.
	reqMu sync.Mutex

	// deframer is touched only by the notification callback between
	// subscribe and unsubscribe
	deframer cobs.Deframer
	inbox    chan messages.Message

	malformedFrames atomic.Uint64
	unknownMessages atomic.Uint64
	droppedMessages atomic.Uint64
}

type pendingRequest struct {
	id   uint8
	done chan messages.Message
}

// Counters of the notification path. Frames and messages counted here were
// dropped silently, never surfaced as errors.
type Stats struct {
	MalformedFrames uint64
	UnknownMessages uint64
	DroppedMessages uint64
}

// NewClient creates a client on the given central. config and logger may be
// nil for defaults.
func NewClient(central gospike.Central, config *Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := config.withDefaults()
	return &Client{
		central: central,
		config:  cfg,
		logger:  logger,
		inbox:   make(chan messages.Message, cfg.InboxSize),
	}
}

// Connect finds the hub, opens the GATT connection, resolves the service and
// its RX/TX characteristics and subscribes to notifications. It is a no-op
// when already connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}
	peripheral, err := c.central.Dial(ctx, gospike.Filter{
		Address:     c.config.Address,
		ServiceUUID: c.config.ServiceUUID,
		NameHints:   c.config.NameHints,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}
	services, err := peripheral.Services(ctx)
	if err != nil {
		_ = peripheral.Close()
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}
	rx, tx, err := c.resolve(services)
	if err != nil {
		_ = peripheral.Close()
		return err
	}
	c.logger.Debug("resolved characteristics", "rx", rx.UUID(), "tx", tx.UUID())
	if err := tx.Subscribe(c.onNotify); err != nil {
		_ = peripheral.Close()
		return fmt.Errorf("%w: subscribing: %v", ErrConnectFailed, err)
	}
	if delay := c.config.SettleDelay; delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			_ = tx.Unsubscribe()
			_ = peripheral.Close()
			return fmt.Errorf("%w: %v", ErrConnectFailed, ctx.Err())
		}
	}

	c.mu.Lock()
	c.peripheral = peripheral
	c.rx = rx
	c.tx = tx
	c.closed = make(chan struct{})
	c.connected = true
	c.mu.Unlock()
	c.logger.Info("connected")
	return nil
}

// resolve picks the RX (writable) and TX (notify) characteristics. A strict
// match on the configured UUIDs wins, otherwise any service exposing one
// writable and one distinct notify-capable characteristic is accepted.
func (c *Client) resolve(services []gospike.Service) (rx, tx gospike.Characteristic, err error) {
	for _, svc := range services {
		if !strings.EqualFold(svc.UUID(), c.config.ServiceUUID) {
			continue
		}
		for _, char := range svc.Characteristics() {
			if strings.EqualFold(char.UUID(), c.config.RxUUID) {
				rx = char
			} else if strings.EqualFold(char.UUID(), c.config.TxUUID) {
				tx = char
			}
		}
		if rx == nil || tx == nil {
			rx, tx = pickByProperties(svc)
		}
		if rx == nil || tx == nil {
			return nil, nil, ErrServiceNotFound
		}
		if !rx.Properties().Writable() || !tx.Properties().Notifiable() {
			return nil, nil, ErrCharacteristicUnusable
		}
		return rx, tx, nil
	}
	// No strict service match, fall back on properties alone
	for _, svc := range services {
		if rx, tx = pickByProperties(svc); rx != nil && tx != nil {
			return rx, tx, nil
		}
	}
	return nil, nil, ErrServiceNotFound
}

func pickByProperties(svc gospike.Service) (rx, tx gospike.Characteristic) {
	for _, char := range svc.Characteristics() {
		if tx == nil && char.Properties().Notifiable() {
			tx = char
			continue
		}
		if rx == nil && char.Properties().Writable() {
			rx = char
		}
	}
	if rx == tx {
		return nil, nil
	}
	return rx, tx
}

// Disconnect unsubscribes, closes the GATT connection, clears the deframing
// buffer, drains the inbox and cancels a pending request waiter. It is
// idempotent and never fails.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	peripheral, tx, closed := c.peripheral, c.tx, c.closed
	c.peripheral, c.rx, c.tx = nil, nil, nil
	c.mu.Unlock()

	if err := tx.Unsubscribe(); err != nil {
		c.logger.Debug("unsubscribe failed", "error", err)
	}
	if err := peripheral.Close(); err != nil {
		c.logger.Debug("gatt close failed", "error", err)
	}
	// No notifications can arrive past this point
	c.deframer.Reset()
	for {
		select {
		case <-c.inbox:
			continue
		default:
		}
		break
	}
	close(closed)
	c.logger.Info("disconnected")
}

// Connected reports whether a GATT connection is active.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Info returns the cached InfoResponse, nil before the first GetInfo.
func (c *Client) Info() *messages.InfoResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// Stats returns the drop counters of the notification path.
func (c *Client) Stats() Stats {
	return Stats{
		MalformedFrames: c.malformedFrames.Load(),
		UnknownMessages: c.unknownMessages.Load(),
		DroppedMessages: c.droppedMessages.Load(),
	}
}

// Recv returns the next message from the inbox : every decoded message not
// claimed by a pending request, in arrival order.
func (c *Client) Recv(ctx context.Context) (messages.Message, error) {
	select {
	case msg := <-c.inbox:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// onNotify runs on the central's notification goroutine. It must not block :
// buffer, split, decode and dispatch only.
func (c *Client) onNotify(data []byte) {
	for _, frame := range c.deframer.Push(data) {
		payload, err := cobs.Unpack(frame)
		if err != nil {
			c.malformedFrames.Add(1)
			continue
		}
		msg, err := messages.Deserialize(payload)
		if err != nil {
			c.unknownMessages.Add(1)
			continue
		}
		c.dispatch(msg)
	}
}

// dispatch completes the pending request when the ID matches, otherwise the
// message goes to the inbox, dropping the oldest entry when full.
func (c *Client) dispatch(msg messages.Message) {
	c.mu.Lock()
	if p := c.pending; p != nil && p.id == msg.MessageID() {
		c.pending = nil
		c.mu.Unlock()
		p.done <- msg
		return
	}
	c.mu.Unlock()

	select {
	case c.inbox <- msg:
		return
	default:
	}
	select {
	case <-c.inbox:
		c.droppedMessages.Add(1)
	default:
	}
	select {
	case c.inbox <- msg:
	default:
		c.droppedMessages.Add(1)
	}
}
