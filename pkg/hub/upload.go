package hub

import (
	"context"
	"fmt"

	"github.com/brickble/gospike/internal/crc"
	"github.com/brickble/gospike/pkg/messages"
)

// MaxProgramNameLen is the longest program name the hub accepts.
const MaxProgramNameLen = 31

// UploadProgram transfers a program into a slot and starts it : start the
// upload with the whole-file CRC, stream max_chunk_size chunks each carrying
// the running CRC, then start the program. The hub verifies every running
// CRC independently; a non-zero status aborts with a StatusError. Slots are
// not cleared implicitly, call ClearSlot first.
func (c *Client) UploadProgram(ctx context.Context, slot uint8, name string, data []byte) error {
	if len(name) > MaxProgramNameLen {
		return ErrNameTooLong
	}
	info := c.Info()
	if info == nil {
		fetched, err := c.GetInfo(ctx)
		if err != nil {
			return fmt.Errorf("fetching hub info: %w", err)
		}
		info = fetched
	}
	chunkSize := int(info.MaxChunkSize)
	if chunkSize <= 0 {
		return fmt.Errorf("hub reported unusable max chunk size %d", info.MaxChunkSize)
	}

	totalCRC := crc.Checksum(data, 0)
	c.logger.Info("starting upload", "name", name, "slot", slot, "size", len(data), "crc", totalCRC)
	start := &messages.StartFileUploadRequest{Name: name, Slot: slot, CRC: totalCRC}
	response, err := c.Request(ctx, start, messages.IDStartFileUploadResponse, DefaultUploadTimeout)
	if err != nil {
		return fmt.Errorf("starting upload: %w", err)
	}
	if err := ackStatus(response); err != nil {
		return err
	}

	running := uint32(0)
	for off := 0; off < len(data); off += chunkSize {
		chunk := data[off:min(off+chunkSize, len(data))]
		running = crc.Checksum(chunk, running)
		request := &messages.TransferChunkRequest{RunningCRC: running, Payload: chunk}
		response, err := c.Request(ctx, request, messages.IDTransferChunkResponse, DefaultUploadTimeout)
		if err != nil {
			return fmt.Errorf("transferring chunk at %d: %w", off, err)
		}
		if err := ackStatus(response); err != nil {
			return err
		}
		c.logger.Debug("chunk acknowledged", "offset", off, "len", len(chunk), "crc", running)
	}

	return c.StartProgram(ctx, slot)
}
