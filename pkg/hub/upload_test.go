package hub

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brickble/gospike/internal/crc"
	"github.com/brickble/gospike/pkg/ble/virtual"
	"github.com/brickble/gospike/pkg/messages"
	"github.com/stretchr/testify/assert"
)

func TestUploadSequence(t *testing.T) {
	peer := virtual.NewHub()
	info := testInfo
	info.MaxChunkSize = 256
	peer.Respond = ackResponder(info)
	client := newTestClient(t, peer, nil)

	data := bytes.Repeat([]byte{0x00}, 1024)
	assert.Nil(t, client.UploadProgram(context.Background(), 3, "program.py", data))

	var sent []messages.Message
	for _, payload := range peer.Requests() {
		msg, err := messages.Deserialize(payload)
		assert.Nil(t, err)
		sent = append(sent, msg)
	}
	// Info is fetched first because nothing was cached
	assert.Len(t, sent, 7)
	assert.IsType(t, &messages.InfoRequest{}, sent[0])

	start := sent[1].(*messages.StartFileUploadRequest)
	assert.Equal(t, "program.py", start.Name)
	assert.EqualValues(t, 3, start.Slot)
	assert.Equal(t, crc.Checksum(data, 0), start.CRC)

	for i := 0; i < 4; i++ {
		chunk := sent[2+i].(*messages.TransferChunkRequest)
		assert.Len(t, chunk.Payload, 256)
		assert.Equal(t, crc.Checksum(data[:(i+1)*256], 0), chunk.RunningCRC,
			"running crc of chunk %d", i)
	}

	flow := sent[6].(*messages.ProgramFlowRequest)
	assert.False(t, flow.Stop)
	assert.EqualValues(t, 3, flow.Slot)
}

func TestUploadShortLastChunk(t *testing.T) {
	peer := virtual.NewHub()
	info := testInfo
	info.MaxChunkSize = 256
	peer.Respond = ackResponder(info)
	client := newTestClient(t, peer, nil)

	data := bytes.Repeat([]byte{0xAB}, 300)
	assert.Nil(t, client.UploadProgram(context.Background(), 0, "p.py", data))

	requests := peer.Requests()
	// info, start, 2 chunks, program flow
	assert.Len(t, requests, 5)
	last, _ := messages.Deserialize(requests[3])
	assert.Len(t, last.(*messages.TransferChunkRequest).Payload, 44)
	assert.Equal(t, crc.Checksum(data, 0), last.(*messages.TransferChunkRequest).RunningCRC)
}

func TestUploadUsesCachedInfo(t *testing.T) {
	peer := virtual.NewHub()
	info := testInfo
	info.MaxChunkSize = 128
	peer.Respond = ackResponder(info)
	client := newTestClient(t, peer, nil)

	_, err := client.GetInfo(context.Background())
	assert.Nil(t, err)
	assert.Nil(t, client.UploadProgram(context.Background(), 0, "p.py", make([]byte, 128)))

	var infoRequests int
	for _, payload := range peer.Requests() {
		if payload[0] == messages.IDInfoRequest {
			infoRequests++
		}
	}
	assert.Equal(t, 1, infoRequests)
}

func TestUploadHubError(t *testing.T) {
	peer := virtual.NewHub()
	peer.Respond = func(payload []byte) [][]byte {
		msg, err := messages.Deserialize(payload)
		if err != nil {
			return nil
		}
		switch msg.(type) {
		case *messages.InfoRequest:
			return [][]byte{testInfo.Serialize()}
		case *messages.StartFileUploadRequest:
			return [][]byte{(&messages.StartFileUploadResponse{}).Serialize()}
		case *messages.TransferChunkRequest:
			// Pretend the running CRC did not match
			return [][]byte{(&messages.TransferChunkResponse{Status: 2}).Serialize()}
		}
		return nil
	}
	client := newTestClient(t, peer, nil)

	err := client.UploadProgram(context.Background(), 0, "p.py", make([]byte, 16))
	var statusErr *StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.EqualValues(t, messages.IDTransferChunkResponse, statusErr.MessageID)
	assert.EqualValues(t, 2, statusErr.Status)
}

func TestUploadNameTooLong(t *testing.T) {
	peer := virtual.NewHub()
	client := newTestClient(t, peer, nil)
	err := client.UploadProgram(context.Background(), 0, strings.Repeat("x", 32), nil)
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestUploadEmptyProgram(t *testing.T) {
	peer := virtual.NewHub()
	peer.Respond = ackResponder(testInfo)
	client := newTestClient(t, peer, nil)

	assert.Nil(t, client.UploadProgram(context.Background(), 1, "empty.py", nil))
	requests := peer.Requests()
	// info, start, no chunks, program flow
	assert.Len(t, requests, 3)
}
