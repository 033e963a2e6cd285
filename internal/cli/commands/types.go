package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldevice/pkg/core"
)

// typeRow is one mapping in the types listing.
type typeRow struct {
	ScalarType string `json:"scalar_type" yaml:"scalar_type"`
	Domain     string `json:"domain" yaml:"domain"`
	Class      string `json:"class" yaml:"class"`
	Deferred   bool   `json:"deferred" yaml:"deferred"`
}

// NewTypesCommand creates the types command.
func NewTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the type mappings",
		Long: `List every internal scalar type with the native domain it maps to.
The configured major_version selects version-dependent domains; nothing is
connected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, cfg, err := newDevice(cmd)
			if err != nil {
				return err
			}
			types, err := d.Dialect().BuildTypes(d.Environment())
			if err != nil {
				return err
			}

			var rows []typeRow
			for _, st := range types.Types() {
				domain, err := types.NativeDomainName(st, core.MetaData{})
				if err != nil {
					return err
				}
				class, err := types.SQLType(st, core.MetaData{})
				if err != nil {
					return err
				}
				rows = append(rows, typeRow{
					ScalarType: st.String(),
					Domain:     domain,
					Class:      class.Class.String(),
					Deferred:   class.Deferred,
				})
			}

			w := cmd.OutOrStdout()
			if ok, err := render(w, cfg.OutputFormat, rows); ok {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Type", "Domain", "Class", "Deferred"})
			for _, r := range rows {
				t.AppendRow(table.Row{r.ScalarType, r.Domain, r.Class, r.Deferred})
			}
			t.Render()
			return nil
		},
	}
}
