package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStartCommand creates the start command.
func NewStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the device start-up pipeline",
		Long: `Connect to the configured server and run the start-up pipeline:
probe the server version, ensure the database exists and install the
support operators, as enabled in the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, _, err := newDevice(cmd)
			if err != nil {
				return err
			}
			if err := d.Start(cmd.Context()); err != nil {
				return err
			}
			ops, err := d.Operators()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s device started: server major version %d, %d operators\n",
				d.Dialect().Name(), d.MajorVersion(), len(ops.Operators()))
			return nil
		},
	}
}
