package main

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourorg/estate-api/internal/app"
	"github.com/yourorg/estate-api/internal/export"
	"github.com/yourorg/estate-api/listing"
)

var exportOpts struct {
	out      string
	query    string
	kind     string
	sort     string
	minPrice string
	maxPrice string
	bedrooms string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write matching listings to an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		v := url.Values{}
		for k, val := range map[string]string{
			"q": exportOpts.query, "type": exportOpts.kind, "sort": exportOpts.sort,
			"min_price": exportOpts.minPrice, "max_price": exportOpts.maxPrice, "bedrooms": exportOpts.bedrooms,
		} {
			if val != "" {
				v.Set(k, val)
			}
		}
		q, err := listing.ParseQuery(v)
		if err != nil {
			return err
		}
		q.Visible = listing.MaxVisible

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Prepare(ctx); err != nil {
				return err
			}
			res, err := a.Source.Search(ctx, q)
			if err != nil {
				return err
			}
			f, err := os.Create(exportOpts.out)
			if err != nil {
				return err
			}
			if err := export.WriteXLSX(f, res.Items); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d of %d listings to %s\n", len(res.Items), res.Total, exportOpts.out)
			return nil
		})
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportOpts.out, "out", "o", "listings.xlsx", "output file")
	f.StringVar(&exportOpts.query, "q", "", "search text")
	f.StringVar(&exportOpts.kind, "type", "", "property type")
	f.StringVar(&exportOpts.sort, "sort", "", "price_desc, price_asc, newest or bedrooms")
	f.StringVar(&exportOpts.minPrice, "min-price", "", "lowest price in ETB")
	f.StringVar(&exportOpts.maxPrice, "max-price", "", "highest price in ETB")
	f.StringVar(&exportOpts.bedrooms, "bedrooms", "", "minimum bedrooms")
}
