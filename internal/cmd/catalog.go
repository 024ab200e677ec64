package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/RoyceAzure/lab/parkeat/internal/catalog"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	var (
		query    string
		category string
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List stores, nearest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load()
			if err != nil {
				return err
			}
			cat := model.StoreCategory(category)
			if cat != "" && !cat.IsValid() {
				return fmt.Errorf("unknown category %q", category)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tDISTANCE\tRATING\tOPEN")
			for _, s := range c.SearchStores(query, cat) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%dm\t%.1f\t%t\n",
					s.ID, s.Name, model.StoreCategoryLabels[s.Category], s.Distance, s.Rating, s.IsOpen)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by name or description")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	return cmd
}
