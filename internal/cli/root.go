// Package cli provides the command-line interface for sqldevice.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldevice/internal/cli/commands"
	"github.com/leapstack-labs/sqldevice/internal/cli/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var cfgFile string

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqldevice",
		Short: "sqldevice - SQL device translation layer",
		Long: `sqldevice bridges an engine's scalar types and operators onto a SQL
Server or PostgreSQL backend.

It starts a device against a live server, translates plans into the
backend dialect, and harvests the database catalog.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case cmd.Name() == "help", cmd.Name() == "version", cmd.Name() == "__complete":
				return nil
			case cmd.HasParent() && cmd.Parent().Name() == "completion":
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if cfg.ConfigFile != "" {
				logger.Debug("using config file", slog.String("path", cfg.ConfigFile))
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./sqldevice.yaml)")
	flags.String("dialect", "", "device dialect (mssql|postgres)")
	flags.String("server", "", "server name or host")
	flags.String("database", "", "database name")
	flags.String("user", "", "user name")
	flags.String("password", "", "password; ${VAR} is expanded")
	flags.String("application", "", "application name reported to the server")
	flags.Bool("integrated-security", false, "use integrated security instead of credentials")
	flags.String("connection-class", "", "connection string legend (e.g. mssql, ado, odbc)")
	flags.Bool("probe-version", true, "probe the server version at start-up")
	flags.Bool("ensure-database", false, "create the database at start-up when missing")
	flags.Bool("install-operators", false, "install the support operators at start-up")
	flags.Int("major-version", 0, "server major version used when the probe is disabled")
	flags.String("snapshot-db", "", "path to the snapshot database")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.StringP("output", "o", "", "output format (table|json|yaml)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"mssql", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewStartCommand())
	rootCmd.AddCommand(commands.NewHarvestCommand())
	rootCmd.AddCommand(commands.NewTypesCommand())
	rootCmd.AddCommand(commands.NewConnStrCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
