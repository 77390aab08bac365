// Package config loads hub connection profiles from INI files.
//
// Example profile :
//
//	[hub]
//	adapter         = tinygo
//	address         = 3C:E4:B0:AB:D3:3A
//	name_hints      = SPIKE,Prime
//	connect_timeout = 15s
//	request_timeout = 5s
package config

import (
	"fmt"

	"github.com/brickble/gospike/pkg/hub"
	"gopkg.in/ini.v1"
)

// Profile describes how to reach one hub.
type Profile struct {
	// BLE central adapter name, see pkg/ble
	Adapter string
	Client  hub.Config
}

// Load reads a profile from an INI file path.
func Load(path string) (*Profile, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return fromFile(file)
}

// LoadBytes reads a profile from INI source.
func LoadBytes(data []byte) (*Profile, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return fromFile(file)
}

func fromFile(file *ini.File) (*Profile, error) {
	section := file.Section("hub")
	profile := &Profile{
		Adapter: section.Key("adapter").MustString("tinygo"),
		Client: hub.Config{
			Address:        section.Key("address").String(),
			ServiceUUID:    section.Key("service_uuid").String(),
			RxUUID:         section.Key("rx_uuid").String(),
			TxUUID:         section.Key("tx_uuid").String(),
			ConnectTimeout: section.Key("connect_timeout").MustDuration(0),
			RequestTimeout: section.Key("request_timeout").MustDuration(0),
		},
	}
	if section.HasKey("name_hints") {
		profile.Client.NameHints = section.Key("name_hints").Strings(",")
	}
	if section.HasKey("inbox_size") {
		size, err := section.Key("inbox_size").Int()
		if err != nil {
			return nil, fmt.Errorf("parsing inbox_size: %w", err)
		}
		profile.Client.InboxSize = size
	}
	if section.HasKey("settle_delay") {
		delay, err := section.Key("settle_delay").Duration()
		if err != nil {
			return nil, fmt.Errorf("parsing settle_delay: %w", err)
		}
		profile.Client.SettleDelay = delay
	}
	return profile, nil
}
