package hub

import (
	"context"
	"time"

	"github.com/brickble/gospike"
	"github.com/brickble/gospike/internal/cobs"
	"github.com/brickble/gospike/pkg/messages"
)

// Send serializes, packs and writes one message without expecting a
// response. It shares the request lock, so it never interleaves with a
// pending exchange.
func (c *Client) Send(msg messages.Message) error {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()
	return c.writeFrame(cobs.Pack(msg.Serialize()))
}

// Request sends a message and waits for the response carrying responseID.
// At most one request is outstanding : a concurrent call fails fast with
// ErrBusy. A timeout of zero means the configured default. A disconnect
// while waiting returns ErrCancelled; a response arriving after the
// deadline falls into the inbox instead.
func (c *Client) Request(ctx context.Context, msg messages.Message, responseID uint8, timeout time.Duration) (messages.Message, error) {
	if !c.reqMu.TryLock() {
		return nil, ErrBusy
	}
	defer c.reqMu.Unlock()
	if timeout <= 0 {
		timeout = c.config.RequestTimeout
	}

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	closed := c.closed
	p := &pendingRequest{id: responseID, done: make(chan messages.Message, 1)}
	c.pending = p
	c.mu.Unlock()

	if err := c.writeFrame(cobs.Pack(msg.Serialize())); err != nil {
		c.clearPending(p)
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case response := <-p.done:
		return response, nil
	case <-timer.C:
		// The response may have raced the deadline
		if response, ok := c.takeCompleted(p); ok {
			return response, nil
		}
		return nil, ErrTimeout
	case <-closed:
		c.clearPending(p)
		return nil, ErrCancelled
	case <-ctx.Done():
		c.clearPending(p)
		return nil, ctx.Err()
	}
}

func (c *Client) clearPending(p *pendingRequest) {
	c.mu.Lock()
	if c.pending == p {
		c.pending = nil
	}
	c.mu.Unlock()
}

func (c *Client) takeCompleted(p *pendingRequest) (messages.Message, bool) {
	c.clearPending(p)
	select {
	case response := <-p.done:
		return response, true
	default:
		return nil, false
	}
}

// writeFrame chunks one frame into GATT writes of at most the hub's
// max_packet_size. Without a cached InfoResponse the frame goes out whole.
func (c *Client) writeFrame(frame []byte) error {
	c.mu.Lock()
	connected, rx, info := c.connected, c.rx, c.info
	c.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}
	packetSize := len(frame)
	if info != nil && info.MaxPacketSize > 0 {
		packetSize = int(info.MaxPacketSize)
	}
	withResponse := rx.Properties()&gospike.PropertyWrite != 0
	for off := 0; off < len(frame); off += packetSize {
		segment := frame[off:min(off+packetSize, len(frame))]
		if err := rx.Write(segment, withResponse); err != nil {
			return err
		}
	}
	return nil
}
