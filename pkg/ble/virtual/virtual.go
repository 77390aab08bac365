// Package virtual provides an in-memory BLE central primarily used for
// testing. A scripted hub peer deframes host writes, runs a responder and
// pushes notifications back, so the full client stack can run without
// hardware.
package virtual

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/brickble/gospike"
	"github.com/brickble/gospike/internal/cobs"
	"github.com/brickble/gospike/pkg/ble"
)

func init() {
	ble.RegisterAdapter("virtual", func(logger *slog.Logger) (gospike.Central, error) {
		return NewCentral(NewHub()), nil
	})
}

var ErrNoHub = errors.New("virtual central has no hub attached")

// Hub is the scripted SPIKE peer behind a virtual central.
type Hub struct {
	mu       sync.Mutex
	deframer cobs.Deframer
	requests [][]byte
	notify   func([]byte)

	// Respond maps one decoded request payload to zero or more response
	// payloads, delivered as notifications. Nil leaves requests unanswered.
	Respond func(payload []byte) [][]byte

	// SegmentSize splits outgoing notifications into pieces of at most this
	// many bytes. Zero delivers each frame whole.
	SegmentSize int
}

func NewHub() *Hub {
	return &Hub{}
}

// Requests returns every decoded payload written by the host, in order.
func (h *Hub) Requests() [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([][]byte, len(h.requests))
	copy(out, h.requests)
	return out
}

// Notify packs one payload and delivers it to the subscribed host.
func (h *Hub) Notify(payload []byte) {
	h.NotifyRaw(cobs.Pack(payload))
}

// NotifyRaw delivers raw bytes to the subscribed host without packing,
// split according to SegmentSize. No-op when nothing is subscribed.
func (h *Hub) NotifyRaw(data []byte) {
	h.mu.Lock()
	notify := h.notify
	segment := h.SegmentSize
	h.mu.Unlock()
	if notify == nil {
		return
	}
	if segment <= 0 {
		segment = len(data)
	}
	for off := 0; off < len(data); off += segment {
		notify(data[off:min(off+segment, len(data))])
	}
}

// hostWrite receives one GATT write segment from the host side.
func (h *Hub) hostWrite(data []byte) {
	h.mu.Lock()
	frames := h.deframer.Push(data)
	var payloads [][]byte
	for _, frame := range frames {
		payload, err := cobs.Unpack(frame)
		if err != nil {
			continue
		}
		h.requests = append(h.requests, payload)
		payloads = append(payloads, payload)
	}
	respond := h.Respond
	h.mu.Unlock()
	if respond == nil {
		return
	}
	for _, payload := range payloads {
		for _, response := range respond(payload) {
			h.Notify(response)
		}
	}
}

func (h *Hub) subscribe(fn func([]byte)) {
	h.mu.Lock()
	h.notify = fn
	h.mu.Unlock()
}

// Central is the host-side entry point.
type Central struct {
	hub    *Hub
	closed bool
	mu     sync.Mutex
}

func NewCentral(hub *Hub) *Central {
	return &Central{hub: hub}
}

func (c *Central) Hub() *Hub { return c.hub }

// "Dial" implementation of Central interface
func (c *Central) Dial(ctx context.Context, filter gospike.Filter) (gospike.Peripheral, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hub == nil || c.closed {
		return nil, ErrNoHub
	}
	return &peripheral{hub: c.hub}, nil
}

// "Close" implementation of Central interface
func (c *Central) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

type peripheral struct {
	hub *Hub
}

func (p *peripheral) Services(ctx context.Context) ([]gospike.Service, error) {
	return []gospike.Service{&service{
		uuid: gospike.ServiceUUID,
		chars: []gospike.Characteristic{
			&characteristic{
				uuid:  gospike.RxUUID,
				props: gospike.PropertyWriteWithoutResponse,
				hub:   p.hub,
			},
			&characteristic{
				uuid:   gospike.TxUUID,
				props:  gospike.PropertyNotify,
				hub:    p.hub,
				notify: true,
			},
		},
	}}, nil
}

func (p *peripheral) Close() error {
	p.hub.subscribe(nil)
	return nil
}

type service struct {
	uuid  string
	chars []gospike.Characteristic
}

func (s *service) UUID() string { return s.uuid }
func (s *service) Characteristics() []gospike.Characteristic { return s.chars }

type characteristic struct {
	uuid   string
	props  gospike.Properties
	hub    *Hub
	notify bool
}

func (c *characteristic) UUID() string { return c.uuid }
func (c *characteristic) Properties() gospike.Properties { return c.props }

func (c *characteristic) Write(p []byte, withResponse bool) error {
	if !c.props.Writable() {
		return errors.New("characteristic is not writable")
	}
	// Copy : the client may reuse the segment buffer
	data := make([]byte, len(p))
	copy(data, p)
	c.hub.hostWrite(data)
	return nil
}

func (c *characteristic) Subscribe(callback func(data []byte)) error {
	if !c.notify {
		return errors.New("characteristic does not notify")
	}
	c.hub.subscribe(callback)
	return nil
}

func (c *characteristic) Unsubscribe() error {
	c.hub.subscribe(nil)
	return nil
}
