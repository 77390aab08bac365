package hub

import (
	"context"
	"testing"
	"time"

	"github.com/brickble/gospike/pkg/ble/virtual"
	"github.com/brickble/gospike/pkg/messages"
	"github.com/stretchr/testify/assert"
)

// waitForRequests polls until the peer saw n requests.
func waitForRequests(t *testing.T, peer *virtual.Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(peer.Requests()) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("peer never saw %d requests", n)
}

func TestRequestTimeout(t *testing.T) {
	peer := virtual.NewHub() // never answers
	client := newTestClient(t, peer, nil)

	_, err := client.Request(context.Background(), &messages.InfoRequest{}, messages.IDInfoResponse, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestStaleResponseFallsIntoInbox(t *testing.T) {
	peer := virtual.NewHub()
	client := newTestClient(t, peer, nil)

	_, err := client.Request(context.Background(), &messages.InfoRequest{}, messages.IDInfoResponse, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)

	// The hub answers after the waiter gave up : the slot is empty, so the
	// response is queued like any unsolicited message
	peer.Notify(testInfo.Serialize())
	msg, err := client.Recv(context.Background())
	assert.Nil(t, err)
	assert.IsType(t, &messages.InfoResponse{}, msg)
}

func TestConcurrentRequestIsBusy(t *testing.T) {
	peer := virtual.NewHub()
	client := newTestClient(t, peer, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := client.Request(context.Background(), &messages.InfoRequest{}, messages.IDInfoResponse, 2*time.Second)
		firstDone <- err
	}()
	waitForRequests(t, peer, 1)

	_, err := client.Request(context.Background(), &messages.InfoRequest{}, messages.IDInfoResponse, time.Second)
	assert.ErrorIs(t, err, ErrBusy)

	peer.Notify(testInfo.Serialize())
	assert.Nil(t, <-firstDone)
}

func TestDisconnectCancelsPendingRequest(t *testing.T) {
	peer := virtual.NewHub()
	client := newTestClient(t, peer, nil)

	done := make(chan error, 1)
	go func() {
		_, err := client.Request(context.Background(), &messages.InfoRequest{}, messages.IDInfoResponse, 5*time.Second)
		done <- err
	}()
	waitForRequests(t, peer, 1)
	time.Sleep(100 * time.Millisecond)
	client.Disconnect()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("request did not return after disconnect")
	}
}

func TestRequestContextCancel(t *testing.T) {
	peer := virtual.NewHub()
	client := newTestClient(t, peer, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.Request(ctx, &messages.InfoRequest{}, messages.IDInfoResponse, 5*time.Second)
		done <- err
	}()
	waitForRequests(t, peer, 1)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRequestDefaultTimeout(t *testing.T) {
	peer := virtual.NewHub()
	client := newTestClient(t, peer, &Config{RequestTimeout: 30 * time.Millisecond})

	start := time.Now()
	_, err := client.Request(context.Background(), &messages.InfoRequest{}, messages.IDInfoResponse, 0)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}
