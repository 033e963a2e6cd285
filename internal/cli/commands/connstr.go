package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewConnStrCommand creates the connstr command.
func NewConnStrCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connstr",
		Short: "Print the connection string",
		Long: `Print the connection string built by the configured connection class,
with the password masked. Nothing is connected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, _, err := newDevice(cmd)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.ConnectionString())
			return nil
		},
	}
}
