package catalog

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/hdrive/cmd/hdrive/cmdutil"
	"github.com/marmos91/hdrive/internal/cli/output"
	"github.com/marmos91/hdrive/pkg/catalog"
)

var listFilter string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog records",
	Long: `List the records of the catalog with their locators.

Examples:
  hdrive catalog list
  hdrive catalog list --filter plate -o yaml`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "", "Only show records whose name contains this text (case-insensitive)")
}

// recordList renders records as a table or document.
type recordList struct {
	Records []catalog.Record `json:"records" yaml:"records"`
	cat     *catalog.Catalog
}

func (l recordList) Headers() []string {
	return []string{"Recipe", "Product", "Locator", "Input", "Rate"}
}

func (l recordList) Rows() [][]string {
	rows := make([][]string, 0, len(l.Records))
	for _, r := range l.Records {
		in := make([]string, 0, len(r.Input))
		for _, ing := range r.Input {
			in = append(in, strconv.FormatFloat(ing.Nb, 'f', -1, 64)+" x "+string(ing.Name))
		}
		rows = append(rows, []string{
			r.Name,
			string(r.Product),
			l.cat.Locator(r.Product),
			strings.Join(in, ", "),
			strconv.FormatFloat(r.Rate, 'f', -1, 64),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	printer, err := cmdutil.Printer()
	if err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	list := recordList{cat: cat}
	needle := strings.ToLower(listFilter)
	for _, r := range cat.Records() {
		if needle == "" || strings.Contains(strings.ToLower(r.Name), needle) {
			list.Records = append(list.Records, r)
		}
	}

	if err := printer.Print(list); err != nil {
		return err
	}
	if printer.Format() == output.FormatTable {
		printer.Printf("\n%d of %d records\n", len(list.Records), cat.Len())
	}
	return nil
}
