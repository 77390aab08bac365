package messages

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeserializeInfoResponse(t *testing.T) {
	// Layout as observed on the wire : sizes at fixed little-endian offsets
	payload := make([]byte, 15)
	payload[0] = IDInfoResponse
	payload[1] = 1 // rpc major
	payload[2] = 4 // rpc minor
	binary.LittleEndian.PutUint16(payload[3:], 512)
	payload[5] = 3 // firmware major
	payload[6] = 9 // firmware minor
	binary.LittleEndian.PutUint16(payload[7:], 20)
	binary.LittleEndian.PutUint16(payload[9:], 8192)
	binary.LittleEndian.PutUint16(payload[11:], 512)
	binary.LittleEndian.PutUint16(payload[13:], 0xFFFF)

	msg, err := Deserialize(payload)
	assert.Nil(t, err)
	info, ok := msg.(*InfoResponse)
	assert.True(t, ok)
	assert.EqualValues(t, 1, info.RPCMajor)
	assert.EqualValues(t, 4, info.RPCMinor)
	assert.EqualValues(t, 512, info.RPCBuild)
	assert.EqualValues(t, 20, info.MaxPacketSize)
	assert.EqualValues(t, 8192, info.MaxMessageSize)
	assert.EqualValues(t, 512, info.MaxChunkSize)
	assert.Equal(t, payload, info.Serialize())
}

func TestDeserializeUnknownID(t *testing.T) {
	_, err := Deserialize([]byte{0x7F})
	assert.ErrorIs(t, err, ErrUnknownMessageID)
}

func TestDeserializeEmptyAndTruncated(t *testing.T) {
	_, err := Deserialize(nil)
	assert.ErrorIs(t, err, ErrTruncated)
	_, err = Deserialize([]byte{IDInfoResponse, 0x01})
	assert.ErrorIs(t, err, ErrTruncated)
	_, err = Deserialize([]byte{IDClearSlotResponse})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestStartFileUploadRequestWire(t *testing.T) {
	request := &StartFileUploadRequest{Name: "program.py", Slot: 3, CRC: 0xCAFEBABE}
	payload := request.Serialize()
	assert.EqualValues(t, IDStartFileUploadRequest, payload[0])

	msg, err := Deserialize(payload)
	assert.Nil(t, err)
	decoded := msg.(*StartFileUploadRequest)
	assert.Equal(t, "program.py", decoded.Name)
	assert.EqualValues(t, 3, decoded.Slot)
	assert.EqualValues(t, 0xCAFEBABE, decoded.CRC)
}

func TestTransferChunkRequestWire(t *testing.T) {
	request := &TransferChunkRequest{RunningCRC: 0x12345678, Payload: []byte{9, 8, 7}}
	payload := request.Serialize()
	assert.EqualValues(t, IDTransferChunkRequest, payload[0])
	assert.EqualValues(t, 3, binary.LittleEndian.Uint16(payload[5:]))

	msg, err := Deserialize(payload)
	assert.Nil(t, err)
	decoded := msg.(*TransferChunkRequest)
	assert.EqualValues(t, 0x12345678, decoded.RunningCRC)
	assert.Equal(t, []byte{9, 8, 7}, decoded.Payload)
}

func TestResponsesCarryStatus(t *testing.T) {
	responses := []Acknowledgement{
		&StartFileUploadResponse{Status: 5},
		&TransferChunkResponse{Status: 5},
		&ProgramFlowResponse{Status: 5},
		&DeviceNotificationResponse{Status: 5},
		&ClearSlotResponse{Status: 5},
	}
	for _, response := range responses {
		msg, err := Deserialize(response.Serialize())
		assert.Nil(t, err)
		ack, ok := msg.(Acknowledgement)
		assert.True(t, ok)
		assert.EqualValues(t, 5, ack.Ack())
		assert.Equal(t, response.MessageID(), msg.MessageID())
	}
}

func TestDeviceNotificationWire(t *testing.T) {
	notification := &DeviceNotification{Payload: []byte{1, 2, 3, 4}}
	msg, err := Deserialize(notification.Serialize())
	assert.Nil(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, msg.(*DeviceNotification).Payload)

	// Declared size larger than the body
	_, err = Deserialize([]byte{IDDeviceNotification, 0x10, 0x00, 0x01})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestConsoleNotificationTrimsPadding(t *testing.T) {
	msg, err := Deserialize(append([]byte{IDConsoleNotification}, "hello\x00\x00"...))
	assert.Nil(t, err)
	assert.Equal(t, "hello", msg.(*ConsoleNotification).Text)
}

func TestProgramFlowRequestWire(t *testing.T) {
	start := &ProgramFlowRequest{Stop: false, Slot: 2}
	assert.Equal(t, []byte{IDProgramFlowRequest, 0x00, 0x02}, start.Serialize())
	stop := &ProgramFlowRequest{Stop: true, Slot: 2}
	assert.Equal(t, []byte{IDProgramFlowRequest, 0x01, 0x02}, stop.Serialize())
}
