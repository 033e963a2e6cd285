package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldevice/internal/cli/config"
	"github.com/leapstack-labs/sqldevice/internal/snapshot"
	"github.com/leapstack-labs/sqldevice/pkg/device"
	"github.com/leapstack-labs/sqldevice/pkg/reconcile"
)

// HarvestOptions holds options for the harvest command.
type HarvestOptions struct {
	Snapshot bool
}

// NewHarvestCommand creates the harvest command.
func NewHarvestCommand() *cobra.Command {
	opts := &HarvestOptions{}

	cmd := &cobra.Command{
		Use:   "harvest [schema.table]",
		Short: "Harvest the database catalog",
		Long: `Start the device and read the catalog of the configured database:
tables, columns, index keys and foreign keys. A table name limits the
harvest to that table.

With --snapshot the harvest is recorded in the snapshot database and
compared with the previous harvest of the same table.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f reconcile.Filter
			if len(args) == 1 {
				f = reconcile.ParseFilter(args[0])
			}
			return runHarvest(cmd, f, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Snapshot, "snapshot", false, "record the harvest and compare it with the previous one")
	return cmd
}

func runHarvest(cmd *cobra.Command, f reconcile.Filter, opts *HarvestOptions) error {
	ctx := cmd.Context()
	d, cfg, err := newDevice(cmd)
	if err != nil {
		return err
	}
	if err := d.Start(ctx); err != nil {
		return err
	}

	var catalog *reconcile.Catalog
	err = d.WithSession(ctx, func(s *device.Session) error {
		var err error
		catalog, err = s.Harvest(ctx, f)
		return err
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if ok, err := render(w, cfg.OutputFormat, catalog); ok {
		if err != nil {
			return err
		}
	} else {
		renderCatalog(w, catalog)
	}

	if !opts.Snapshot {
		return nil
	}
	return recordSnapshot(cmd, cfg, f, catalog)
}

func recordSnapshot(cmd *cobra.Command, cfg *config.Config, f reconcile.Filter, catalog *reconcile.Catalog) error {
	if dir := filepath.Dir(cfg.SnapshotPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	store := snapshot.NewStore(config.GetLogger(cmd.Context()))
	if err := store.Open(cfg.SnapshotPath); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	if err := store.Migrate(); err != nil {
		return err
	}

	snap, identical, err := store.Record(cmd.Context(), cfg.Device.Dialect, f, catalog)
	if err != nil {
		return err
	}
	verdict := "changed since the previous harvest"
	if identical {
		verdict = "identical to the previous harvest"
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "snapshot %s (%s): %s\n", snap.ID, snap.Digest[:12], verdict)
	return nil
}

func renderCatalog(w io.Writer, c *reconcile.Catalog) {
	if len(c.Tables) == 0 {
		_, _ = fmt.Fprintln(w, "(0 tables)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Schema", "Table", "#", "Column", "Domain", "Length", "Nullable", "Deferred"})
	for _, col := range c.Columns {
		t.AppendRow(table.Row{
			col.TableSchema, col.TableName, col.OrdinalPosition, col.ColumnName,
			col.NativeDomainName, col.Length, col.IsNullable, col.IsDeferred,
		})
	}
	t.Render()

	if len(c.Indexes) > 0 {
		ix := table.NewWriter()
		ix.SetOutputMirror(w)
		ix.SetStyle(table.StyleLight)
		ix.AppendHeader(table.Row{"Table", "Index", "#", "Column", "Unique", "Descending"})
		for _, i := range c.Indexes {
			ix.AppendRow(table.Row{i.TableSchema + "." + i.TableName, i.IndexName, i.OrdinalPosition, i.ColumnName, i.IsUnique, i.IsDescending})
		}
		ix.Render()
	}

	if len(c.ForeignKeys) > 0 {
		fk := table.NewWriter()
		fk.SetOutputMirror(w)
		fk.SetStyle(table.StyleLight)
		fk.AppendHeader(table.Row{"Constraint", "#", "Source", "Target"})
		for _, k := range c.ForeignKeys {
			fk.AppendRow(table.Row{
				k.ConstraintName, k.OrdinalPosition,
				k.SourceTableSchema + "." + k.SourceTableName + "." + k.SourceColumnName,
				k.TargetTableSchema + "." + k.TargetTableName + "." + k.TargetColumnName,
			})
		}
		fk.Render()
	}
	_, _ = fmt.Fprintf(w, "(%d tables, %d columns)\n", len(c.Tables), len(c.Columns))
}
