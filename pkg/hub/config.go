package hub

import (
	"time"

	"github.com/brickble/gospike"
)

const (
	DefaultConnectTimeout = 15 * time.Second
	DefaultRequestTimeout = 5 * time.Second
	DefaultUploadTimeout  = 10 * time.Second

	// Pause between subscribing and the first write, so the peer's CCCD
	// write can settle.
	DefaultSettleDelay = 300 * time.Millisecond

	// Unsolicited notifications at ~20 Hz can outpace a slow consumer, so
	// the inbox is bounded and drops oldest rather than stalling the
	// notification path.
	DefaultInboxSize = 128
)

type Config struct {
	// Explicit device address. When set, the scan matches only the device
	// with this address
	Address string
	// Advertised name fragments tried when the advertisement lacks the
	// service UUID. Defaults to gospike.DefaultNameHints.
	NameHints []string
	// UUID overrides, defaulting to the SPIKE App 3 identifiers
	ServiceUUID string
	RxUUID      string
	TxUUID      string

	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	// SettleDelay pauses between subscribe and the first write. Zero means
	// DefaultSettleDelay, negative disables the pause.
	SettleDelay time.Duration
	InboxSize   int
}

func (c *Config) withDefaults() Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.NameHints == nil {
		out.NameHints = gospike.DefaultNameHints
	}
	if out.ServiceUUID == "" {
		out.ServiceUUID = gospike.ServiceUUID
	}
	if out.RxUUID == "" {
		out.RxUUID = gospike.RxUUID
	}
	if out.TxUUID == "" {
		out.TxUUID = gospike.TxUUID
	}
	if out.ConnectTimeout == 0 {
		out.ConnectTimeout = DefaultConnectTimeout
	}
	if out.RequestTimeout == 0 {
		out.RequestTimeout = DefaultRequestTimeout
	}
	if out.SettleDelay == 0 {
		out.SettleDelay = DefaultSettleDelay
	}
	if out.InboxSize <= 0 {
		out.InboxSize = DefaultInboxSize
	}
	return out
}
