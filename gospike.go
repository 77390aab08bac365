// Package gospike is a host-side client for LEGO SPIKE hubs speaking the
// SPIKE App 3 protocol over a BLE GATT service.
package gospike

import "context"

// SPIKE App 3 GATT identifiers. The hub exposes a single service with two
// characteristics named from the hub's point of view : RX receives host
// writes, TX notifies the host.
const (
	ServiceUUID = "0000fd02-0000-1000-8000-00805f9b34fb"
	RxUUID      = "0000fd02-0001-1000-8000-00805f9b34fb"
	TxUUID      = "0000fd02-0002-1000-8000-00805f9b34fb"
)

// Advertised name fragments tried when scanning without an explicit address
// and the advertisement does not carry the service UUID.
var DefaultNameHints = []string{"SPIKE", "Spike", "Prime", "Hub", "Lego"}

// GATT characteristic property flags
type Properties uint8

const (
	PropertyWrite Properties = 1 << iota
	PropertyWriteWithoutResponse
	PropertyNotify
)

// Writable returns true if either write mode is supported.
func (p Properties) Writable() bool {
	return p&(PropertyWrite|PropertyWriteWithoutResponse) != 0
}

// Notifiable returns true if the characteristic supports notifications.
func (p Properties) Notifiable() bool {
	return p&PropertyNotify != 0
}

// Filter narrows device discovery. Fields are tried in order : explicit
// address, advertised service UUID, advertised name hints.
type Filter struct {
	Address     string
	ServiceUUID string
	NameHints   []string
}

// A single GATT characteristic on a connected peripheral
type Characteristic interface {
	UUID() string
	Properties() Properties
	Write(p []byte, withResponse bool) error          // Write one packet segment
	Subscribe(callback func(data []byte)) error       // Install the notification callback
	Unsubscribe() error                               // Remove it again
}

// A GATT service with its characteristics, discovered on connect
type Service interface {
	UUID() string
	Characteristics() []Characteristic
}

// A connected GATT peripheral
type Peripheral interface {
	Services(ctx context.Context) ([]Service, error) // Discover services and characteristics
	Close() error                                    // Drop the GATT connection
}

// A BLE central interface
// Currently supported : tinygo, virtual
type Central interface {
	Dial(ctx context.Context, filter Filter) (Peripheral, error) // Find a device and open the GATT connection
	Close() error                                                // Release the adapter
}
