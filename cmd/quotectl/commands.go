package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
	"github.com/Haizenx/Enginuity-Alpha/pkg/clients/enginuity"
)

type rootOptions struct {
	server  string
	timeout time.Duration
}

func (o *rootOptions) client() *enginuity.APIClient {
	return enginuity.NewClient(o.server, o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Compare supplier prices and cost quotations against an Enginuity server",
		SilenceUsage: true,
	}

	defaultServer := os.Getenv("ENGINUITY_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&opts.server, "server", defaultServer, "server base URL (env ENGINUITY_URL)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")

	root.AddCommand(
		newCompareCmd(opts),
		newComputeCmd(opts),
		newTiersCmd(opts),
		newSuppliersCmd(opts),
		newSweepCmd(opts),
	)
	return root
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var (
		items     []string
		suppliers []string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Rank suppliers by the total cost of a selection",
		Example: "  quotectl compare --item 64b7...18=2 --item 64b7...19=1\n" +
			"  quotectl compare --item 64b7...18=2 --supplier 64b7...20",
		RunE: func(cmd *cobra.Command, _ []string) error {
			selections, err := parseSelections(items)
			if err != nil {
				return err
			}
			result, err := opts.client().Compare(cmd.Context(), enginuity.CompareRequest{
				Selections:  selections,
				SupplierIDs: suppliers,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringArrayVar(&items, "item", nil, "selected item as ITEM_ID=QUANTITY (repeatable)")
	cmd.Flags().StringSliceVar(&suppliers, "supplier", nil, "restrict the comparison to these supplier ids")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newComputeCmd(opts *rootOptions) *cobra.Command {
	var (
		items    []string
		supplier string
		tier     int
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Cost a selection for one supplier at a client tier",
		RunE: func(cmd *cobra.Command, _ []string) error {
			selections, err := parseSelections(items)
			if err != nil {
				return err
			}
			result, err := opts.client().Compute(cmd.Context(), enginuity.ComputeRequest{
				SupplierID: supplier,
				Tier:       models.Tier(tier),
				Selections: selections,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringArrayVar(&items, "item", nil, "selected item as ITEM_ID=QUANTITY (repeatable)")
	cmd.Flags().StringVar(&supplier, "supplier", "", "supplier id")
	cmd.Flags().IntVar(&tier, "tier", int(models.Tier1), "client tier (1, 2 or 3)")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("supplier")
	return cmd
}

func newTiersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Show the tier markup table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := opts.client().TierMarkups(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, table)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "set TIER=PERCENT...",
		Short:   "Replace the tier markup table",
		Example: "  quotectl tiers set 1=5 2=10 3=15",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := parseTierMarkups(args)
			if err != nil {
				return err
			}
			saved, err := opts.client().UpdateTierMarkups(cmd.Context(), table)
			if err != nil {
				return err
			}
			return printJSON(cmd, saved)
		},
	})
	return cmd
}

func newSuppliersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suppliers",
		Short: "List suppliers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			suppliers, err := opts.client().ListSuppliers(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range suppliers {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.ID, s.Name)
			}
			return nil
		},
	}
}

func newSweepCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete duplicate items and offers of deleted suppliers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := opts.client().Sweep(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report without deleting")
	return cmd
}

// parseSelections turns ITEM_ID=QUANTITY pairs into selections.
func parseSelections(pairs []string) ([]models.Selection, error) {
	selections := make([]models.Selection, 0, len(pairs))
	for _, pair := range pairs {
		id, rawQty, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("item %q must look like ITEM_ID=QUANTITY", pair)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rawQty))
		if err != nil {
			return nil, fmt.Errorf("item %q: quantity must be a whole number", pair)
		}
		selections = append(selections, models.Selection{ItemID: strings.TrimSpace(id), Quantity: qty})
	}
	return selections, nil
}

func parseTierMarkups(pairs []string) (models.TierMarkupTable, error) {
	table := models.TierMarkupTable{}
	for _, pair := range pairs {
		rawTier, rawPct, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("markup %q must look like TIER=PERCENT", pair)
		}
		tier, err := strconv.Atoi(rawTier)
		if err != nil {
			return nil, fmt.Errorf("markup %q: tier must be a number", pair)
		}
		pct, err := decimal.NewFromString(rawPct)
		if err != nil {
			return nil, fmt.Errorf("markup %q: percent must be a number", pair)
		}
		table[models.Tier(tier)] = pct
	}
	return table, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
