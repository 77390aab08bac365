package messages

import "encoding/binary"

func init() {
	register(IDInfoRequest, func(body []byte) (Message, error) {
		return &InfoRequest{}, nil
	})
	register(IDStartFileUploadRequest, decodeStartFileUploadRequest)
	register(IDTransferChunkRequest, decodeTransferChunkRequest)
	register(IDProgramFlowRequest, func(body []byte) (Message, error) {
		if len(body) < 2 {
			return nil, ErrTruncated
		}
		return &ProgramFlowRequest{Stop: body[0] != 0, Slot: body[1]}, nil
	})
	register(IDDeviceNotificationRequest, func(body []byte) (Message, error) {
		if len(body) < 2 {
			return nil, ErrTruncated
		}
		return &DeviceNotificationRequest{PeriodMs: binary.LittleEndian.Uint16(body)}, nil
	})
	register(IDClearSlotRequest, func(body []byte) (Message, error) {
		if len(body) < 1 {
			return nil, ErrTruncated
		}
		return &ClearSlotRequest{Slot: body[0]}, nil
	})
}

// InfoRequest asks the hub for its protocol and sizing parameters.
type InfoRequest struct{}

func (*InfoRequest) MessageID() uint8 { return IDInfoRequest }

func (*InfoRequest) Serialize() []byte { return []byte{IDInfoRequest} }

// StartFileUploadRequest opens the upload of a named program into a slot.
// CRC is the checksum of the whole file.
type StartFileUploadRequest struct {
	Name string
	Slot uint8
	CRC  uint32
}

func (*StartFileUploadRequest) MessageID() uint8 { return IDStartFileUploadRequest }

func (r *StartFileUploadRequest) Serialize() []byte {
	out := make([]byte, 0, len(r.Name)+7)
	out = append(out, IDStartFileUploadRequest)
	out = append(out, r.Name...)
	out = append(out, 0x00)
	out = append(out, r.Slot)
	return binary.LittleEndian.AppendUint32(out, r.CRC)
}

func decodeStartFileUploadRequest(body []byte) (Message, error) {
	for i, b := range body {
		if b != 0x00 {
			continue
		}
		if len(body) < i+6 {
			return nil, ErrTruncated
		}
		return &StartFileUploadRequest{
			Name: string(body[:i]),
			Slot: body[i+1],
			CRC:  binary.LittleEndian.Uint32(body[i+2:]),
		}, nil
	}
	return nil, ErrTruncated
}

// TransferChunkRequest carries one chunk of the file plus the running CRC of
// everything sent so far, chunk included.
type TransferChunkRequest struct {
	RunningCRC uint32
	Payload    []byte
}

func (*TransferChunkRequest) MessageID() uint8 { return IDTransferChunkRequest }

func (r *TransferChunkRequest) Serialize() []byte {
	out := make([]byte, 0, len(r.Payload)+7)
	out = append(out, IDTransferChunkRequest)
	out = binary.LittleEndian.AppendUint32(out, r.RunningCRC)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(r.Payload)))
	return append(out, r.Payload...)
}

func decodeTransferChunkRequest(body []byte) (Message, error) {
	if len(body) < 6 {
		return nil, ErrTruncated
	}
	size := int(binary.LittleEndian.Uint16(body[4:]))
	if len(body) < 6+size {
		return nil, ErrTruncated
	}
	payload := make([]byte, size)
	copy(payload, body[6:])
	return &TransferChunkRequest{
		RunningCRC: binary.LittleEndian.Uint32(body),
		Payload:    payload,
	}, nil
}

// ProgramFlowRequest starts (Stop false) or stops (Stop true) the program in
// a slot.
type ProgramFlowRequest struct {
	Stop bool
	Slot uint8
}

func (*ProgramFlowRequest) MessageID() uint8 { return IDProgramFlowRequest }

func (r *ProgramFlowRequest) Serialize() []byte {
	stop := byte(0)
	if r.Stop {
		stop = 1
	}
	return []byte{IDProgramFlowRequest, stop, r.Slot}
}

// DeviceNotificationRequest enables periodic device notifications.
// A period of 0 disables them.
type DeviceNotificationRequest struct {
	PeriodMs uint16
}

func (*DeviceNotificationRequest) MessageID() uint8 { return IDDeviceNotificationRequest }

func (r *DeviceNotificationRequest) Serialize() []byte {
	return binary.LittleEndian.AppendUint16([]byte{IDDeviceNotificationRequest}, r.PeriodMs)
}

// ClearSlotRequest erases the program stored in a slot.
type ClearSlotRequest struct {
	Slot uint8
}

func (*ClearSlotRequest) MessageID() uint8 { return IDClearSlotRequest }

func (r *ClearSlotRequest) Serialize() []byte {
	return []byte{IDClearSlotRequest, r.Slot}
}
