package hub

import (
	"context"
	"time"

	"github.com/brickble/gospike/pkg/messages"
)

// GetInfo requests the hub's protocol parameters and caches the response.
// The cached max_packet_size governs write chunking from then on.
func (c *Client) GetInfo(ctx context.Context) (*messages.InfoResponse, error) {
	response, err := c.Request(ctx, &messages.InfoRequest{}, messages.IDInfoResponse, 0)
	if err != nil {
		return nil, err
	}
	info := response.(*messages.InfoResponse)
	c.mu.Lock()
	c.info = info
	c.mu.Unlock()
	return info, nil
}

// EnableNotifications asks the hub to stream device notifications with the
// given period. They arrive through Recv.
func (c *Client) EnableNotifications(ctx context.Context, period time.Duration) error {
	request := &messages.DeviceNotificationRequest{PeriodMs: uint16(period.Milliseconds())}
	response, err := c.Request(ctx, request, messages.IDDeviceNotificationResponse, 0)
	if err != nil {
		return err
	}
	return ackStatus(response)
}

// DisableNotifications stops the periodic stream.
func (c *Client) DisableNotifications(ctx context.Context) error {
	return c.EnableNotifications(ctx, 0)
}

// ClearSlot erases the program stored in a slot.
func (c *Client) ClearSlot(ctx context.Context, slot uint8) error {
	response, err := c.Request(ctx, &messages.ClearSlotRequest{Slot: slot}, messages.IDClearSlotResponse, 0)
	if err != nil {
		return err
	}
	return ackStatus(response)
}

// StartProgram runs the program stored in a slot.
func (c *Client) StartProgram(ctx context.Context, slot uint8) error {
	return c.programFlow(ctx, false, slot)
}

// StopProgram stops the program running in a slot.
func (c *Client) StopProgram(ctx context.Context, slot uint8) error {
	return c.programFlow(ctx, true, slot)
}

func (c *Client) programFlow(ctx context.Context, stop bool, slot uint8) error {
	request := &messages.ProgramFlowRequest{Stop: stop, Slot: slot}
	response, err := c.Request(ctx, request, messages.IDProgramFlowResponse, 0)
	if err != nil {
		return err
	}
	return ackStatus(response)
}

func ackStatus(msg messages.Message) error {
	if ack, ok := msg.(messages.Acknowledgement); ok && ack.Ack() != messages.StatusOk {
		return &StatusError{MessageID: msg.MessageID(), Status: ack.Ack()}
	}
	return nil
}
