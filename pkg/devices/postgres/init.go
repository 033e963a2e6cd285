// Package postgres provides the PostgreSQL device.
//
// This file registers the device with the dialect registry.
// Import this package with a blank identifier to register it:
//
//	import _ "github.com/leapstack-labs/sqldevice/pkg/devices/postgres"
package postgres

import "github.com/leapstack-labs/sqldevice/pkg/device"

func init() {
	device.Register(New())
}
