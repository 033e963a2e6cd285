// Package commands implements the sqldevice subcommands.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqldevice/internal/cli/config"
	"github.com/leapstack-labs/sqldevice/pkg/device"

	// registered device dialects
	_ "github.com/leapstack-labs/sqldevice/pkg/devices/mssql"
	_ "github.com/leapstack-labs/sqldevice/pkg/devices/postgres"
)

type optionsKey struct{}

// WithDeviceOptions adds device options to ctx. Commands apply them after
// their own, so a test can swap the connector.
func WithDeviceOptions(ctx context.Context, opts ...device.Option) context.Context {
	return context.WithValue(ctx, optionsKey{}, append(deviceOptions(ctx), opts...))
}

func deviceOptions(ctx context.Context) []device.Option {
	opts, _ := ctx.Value(optionsKey{}).([]device.Option)
	return opts
}

// newDevice builds the configured device. It is not started.
func newDevice(cmd *cobra.Command) (*device.Device, *config.Config, error) {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, nil, fmt.Errorf("configuration not loaded")
	}
	opts := append([]device.Option{device.WithLogger(config.GetLogger(ctx))}, deviceOptions(ctx)...)
	d, err := device.New(cfg.Device, opts...)
	if err != nil {
		return nil, nil, err
	}
	return d, cfg, nil
}

// render writes v as json or yaml. It reports false for any other format.
func render(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}
