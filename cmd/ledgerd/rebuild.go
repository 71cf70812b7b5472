package main

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/dranzd/storebunk-accounting/internal/core/domain"
	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Replay the event store and print every tenant's trial balance",
	Long: `Replays all posted journal entries from the configured event store into a
fresh ledger and prints the balance of every account per tenant. Exits with an
error when a tenant's debits and credits differ.`,
	RunE: runRebuild,
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.close(context.Background()) }()

	replayed, err := app.rebuild(ctx)
	if err != nil {
		return fmt.Errorf("failed to rebuild ledger: %w", err)
	}

	out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(out, "replayed %d posted entries\n", replayed)

	var unbalanced []string
	for _, tenantID := range app.ledger.Tenants() {
		balances, err := app.ledger.GetAllAccountBalances(ctx, tenantID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(balances))
		for id := range balances {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Fprintf(out, "\ntenant %s\n", tenantID)
		total := domain.ZeroMoney
		for _, id := range ids {
			fmt.Fprintf(out, "%s\t%s\t\n", id, balances[id])
			total = total.Add(balances[id])
		}
		if !total.IsZero() {
			unbalanced = append(unbalanced, tenantID)
		}
	}
	if err := out.Flush(); err != nil {
		return err
	}

	if len(unbalanced) > 0 {
		return fmt.Errorf("ledger does not balance for tenants %v", unbalanced)
	}
	return nil
}
