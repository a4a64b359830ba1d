package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yanizio/propertysite/internal/property"
)

func propertiesCmd() *cobra.Command {
	var (
		category string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:     "properties",
		Aliases: []string{"props"},
		Short:   "List the embedded property catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []property.Property
			switch c := property.Category(strings.ToLower(category)); c {
			case "":
				list = property.All()
			case property.Residential, property.Commercial:
				list = property.ByCategory(c)
			default:
				return fmt.Errorf("unknown category %q", category)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tTYPE\tPRICE")
			for _, p := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category.Label(), p.Label(), p.DisplayPrice())
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Filter by residential or commercial")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
