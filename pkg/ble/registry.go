// Package ble holds the registry of BLE central adapters.
package ble

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/brickble/gospike"
)

type NewCentralFunc func(logger *slog.Logger) (gospike.Central, error)

var AvailableAdapters = make(map[string]NewCentralFunc)
var ImplementedAdapters = []string{
	"tinygo",
	"virtual",
}

// Register a new BLE central adapter type
// This should be called inside an init() function of plugin
func RegisterAdapter(adapterType string, newCentral NewCentralFunc) {
	AvailableAdapters[adapterType] = newCentral
}

// Create a new central with given adapter
// Currently supported : tinygo, virtual
func NewCentral(adapterType string, logger *slog.Logger) (gospike.Central, error) {
	newCentral, ok := AvailableAdapters[adapterType]
	if !ok {
		if slices.Contains(ImplementedAdapters, adapterType) {
			return nil, fmt.Errorf("not enabled : %v, check build imports for project", adapterType)
		}
		return nil, fmt.Errorf("not supported : %v", adapterType)
	}
	return newCentral(logger)
}
