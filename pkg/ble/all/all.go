// Package all registers every available BLE central adapter.
package all

import (
	_ "github.com/brickble/gospike/pkg/ble/tinygo"
	_ "github.com/brickble/gospike/pkg/ble/virtual"
)
