package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadBytesFullProfile(t *testing.T) {
	profile, err := LoadBytes([]byte(`
[hub]
adapter         = virtual
address         = 3C:E4:B0:AB:D3:3A
name_hints      = SPIKE,Prime
service_uuid    = 0000fd02-0000-1000-8000-00805f9b34fb
connect_timeout = 20s
request_timeout = 2s
settle_delay    = 100ms
inbox_size      = 64
`))
	assert.Nil(t, err)
	assert.Equal(t, "virtual", profile.Adapter)
	assert.Equal(t, "3C:E4:B0:AB:D3:3A", profile.Client.Address)
	assert.Equal(t, []string{"SPIKE", "Prime"}, profile.Client.NameHints)
	assert.Equal(t, 20*time.Second, profile.Client.ConnectTimeout)
	assert.Equal(t, 2*time.Second, profile.Client.RequestTimeout)
	assert.Equal(t, 100*time.Millisecond, profile.Client.SettleDelay)
	assert.Equal(t, 64, profile.Client.InboxSize)
}

func TestLoadBytesDefaults(t *testing.T) {
	profile, err := LoadBytes([]byte("[hub]\n"))
	assert.Nil(t, err)
	assert.Equal(t, "tinygo", profile.Adapter)
	assert.Empty(t, profile.Client.Address)
	assert.Nil(t, profile.Client.NameHints)
	assert.Zero(t, profile.Client.ConnectTimeout)
}

func TestLoadBytesBadValue(t *testing.T) {
	_, err := LoadBytes([]byte("[hub]\ninbox_size = lots\n"))
	assert.NotNil(t, err)
}
