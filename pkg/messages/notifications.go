package messages

import (
	"bytes"
	"encoding/binary"
)

func init() {
	register(IDDeviceNotification, decodeDeviceNotification)
	register(IDProgramFlowNotification, func(body []byte) (Message, error) {
		if len(body) < 1 {
			return nil, ErrTruncated
		}
		return &ProgramFlowNotification{Stop: body[0] != 0}, nil
	})
	register(IDConsoleNotification, func(body []byte) (Message, error) {
		return &ConsoleNotification{Text: string(bytes.TrimRight(body, "\x00"))}, nil
	})
}

// DeviceNotification is the unsolicited periodic sensor payload, streamed
// after a DeviceNotificationRequest with a non-zero period.
type DeviceNotification struct {
	Payload []byte
}

func (*DeviceNotification) MessageID() uint8 { return IDDeviceNotification }

func (n *DeviceNotification) Serialize() []byte {
	out := make([]byte, 0, len(n.Payload)+3)
	out = append(out, IDDeviceNotification)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(n.Payload)))
	return append(out, n.Payload...)
}

func decodeDeviceNotification(body []byte) (Message, error) {
	if len(body) < 2 {
		return nil, ErrTruncated
	}
	size := int(binary.LittleEndian.Uint16(body))
	if len(body) < 2+size {
		return nil, ErrTruncated
	}
	payload := make([]byte, size)
	copy(payload, body[2:])
	return &DeviceNotification{Payload: payload}, nil
}

// ProgramFlowNotification reports a program starting or stopping on its own.
type ProgramFlowNotification struct {
	Stop bool
}

func (*ProgramFlowNotification) MessageID() uint8 { return IDProgramFlowNotification }

func (n *ProgramFlowNotification) Serialize() []byte {
	stop := byte(0)
	if n.Stop {
		stop = 1
	}
	return []byte{IDProgramFlowNotification, stop}
}

// ConsoleNotification carries print output from the running program.
type ConsoleNotification struct {
	Text string
}

func (*ConsoleNotification) MessageID() uint8 { return IDConsoleNotification }

func (n *ConsoleNotification) Serialize() []byte {
	return append([]byte{IDConsoleNotification}, n.Text...)
}
