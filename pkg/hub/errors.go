package hub

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected           = errors.New("not connected")
	ErrConnectFailed          = errors.New("connect failed")
	ErrServiceNotFound        = errors.New("service or characteristics not found")
	ErrCharacteristicUnusable = errors.New("characteristic lacks required property")
	ErrBusy                   = errors.New("another request is pending")
	ErrTimeout                = errors.New("request timed out")
	ErrCancelled              = errors.New("request cancelled")
	ErrNameTooLong            = errors.New("program name exceeds 31 bytes")
)

// StatusError is returned when the hub answers with a non-zero status byte,
// e.g. a CRC mismatch or an out of range slot.
type StatusError struct {
	MessageID uint8
	Status    uint8
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hub returned status 0x%02X for message 0x%02X", e.Status, e.MessageID)
}
