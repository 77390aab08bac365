package messages

import "encoding/binary"

func init() {
	register(IDInfoResponse, decodeInfoResponse)
	register(IDStartFileUploadResponse, func(body []byte) (Message, error) {
		s, err := statusByte(body)
		return &StartFileUploadResponse{Status: s}, err
	})
	register(IDTransferChunkResponse, func(body []byte) (Message, error) {
		s, err := statusByte(body)
		return &TransferChunkResponse{Status: s}, err
	})
	register(IDProgramFlowResponse, func(body []byte) (Message, error) {
		s, err := statusByte(body)
		return &ProgramFlowResponse{Status: s}, err
	})
	register(IDDeviceNotificationResponse, func(body []byte) (Message, error) {
		s, err := statusByte(body)
		return &DeviceNotificationResponse{Status: s}, err
	})
	register(IDClearSlotResponse, func(body []byte) (Message, error) {
		s, err := statusByte(body)
		return &ClearSlotResponse{Status: s}, err
	})
}

func statusByte(body []byte) (uint8, error) {
	if len(body) < 1 {
		return 0, ErrTruncated
	}
	return body[0], nil
}

// InfoResponse reports the hub's protocol version and sizing parameters.
// MaxPacketSize caps a single GATT write, MaxChunkSize caps the payload of
// one TransferChunkRequest.
type InfoResponse struct {
	RPCMajor       uint8
	RPCMinor       uint8
	RPCBuild       uint16
	FirmwareMajor  uint8
	FirmwareMinor  uint8
	MaxPacketSize  uint16
	MaxMessageSize uint16
	MaxChunkSize   uint16
	ProductGroup   uint16
}

func (*InfoResponse) MessageID() uint8 { return IDInfoResponse }

func (r *InfoResponse) Serialize() []byte {
	out := make([]byte, 0, 15)
	out = append(out, IDInfoResponse, r.RPCMajor, r.RPCMinor)
	out = binary.LittleEndian.AppendUint16(out, r.RPCBuild)
	out = append(out, r.FirmwareMajor, r.FirmwareMinor)
	out = binary.LittleEndian.AppendUint16(out, r.MaxPacketSize)
	out = binary.LittleEndian.AppendUint16(out, r.MaxMessageSize)
	out = binary.LittleEndian.AppendUint16(out, r.MaxChunkSize)
	return binary.LittleEndian.AppendUint16(out, r.ProductGroup)
}

func decodeInfoResponse(body []byte) (Message, error) {
	if len(body) < 14 {
		return nil, ErrTruncated
	}
	return &InfoResponse{
		RPCMajor:       body[0],
		RPCMinor:       body[1],
		RPCBuild:       binary.LittleEndian.Uint16(body[2:]),
		FirmwareMajor:  body[4],
		FirmwareMinor:  body[5],
		MaxPacketSize:  binary.LittleEndian.Uint16(body[6:]),
		MaxMessageSize: binary.LittleEndian.Uint16(body[8:]),
		MaxChunkSize:   binary.LittleEndian.Uint16(body[10:]),
		ProductGroup:   binary.LittleEndian.Uint16(body[12:]),
	}, nil
}

// StartFileUploadResponse acknowledges a StartFileUploadRequest.
type StartFileUploadResponse struct {
	Status uint8
}

func (*StartFileUploadResponse) MessageID() uint8 { return IDStartFileUploadResponse }

func (r *StartFileUploadResponse) Serialize() []byte {
	return []byte{IDStartFileUploadResponse, r.Status}
}

func (r *StartFileUploadResponse) Ack() uint8 { return r.Status }

// TransferChunkResponse acknowledges one chunk, after the hub verified the
// running CRC.
type TransferChunkResponse struct {
	Status uint8
}

func (*TransferChunkResponse) MessageID() uint8 { return IDTransferChunkResponse }

func (r *TransferChunkResponse) Serialize() []byte {
	return []byte{IDTransferChunkResponse, r.Status}
}

func (r *TransferChunkResponse) Ack() uint8 { return r.Status }

// ProgramFlowResponse acknowledges a ProgramFlowRequest.
type ProgramFlowResponse struct {
	Status uint8
}

func (*ProgramFlowResponse) MessageID() uint8 { return IDProgramFlowResponse }

func (r *ProgramFlowResponse) Serialize() []byte {
	return []byte{IDProgramFlowResponse, r.Status}
}

func (r *ProgramFlowResponse) Ack() uint8 { return r.Status }

// DeviceNotificationResponse acknowledges a DeviceNotificationRequest.
type DeviceNotificationResponse struct {
	Status uint8
}

func (*DeviceNotificationResponse) MessageID() uint8 { return IDDeviceNotificationResponse }

func (r *DeviceNotificationResponse) Serialize() []byte {
	return []byte{IDDeviceNotificationResponse, r.Status}
}

func (r *DeviceNotificationResponse) Ack() uint8 { return r.Status }

// ClearSlotResponse acknowledges a ClearSlotRequest.
type ClearSlotResponse struct {
	Status uint8
}

func (*ClearSlotResponse) MessageID() uint8 { return IDClearSlotResponse }

func (r *ClearSlotResponse) Serialize() []byte {
	return []byte{IDClearSlotResponse, r.Status}
}

func (r *ClearSlotResponse) Ack() uint8 { return r.Status }
