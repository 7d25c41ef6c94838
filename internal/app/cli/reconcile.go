package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fatflowers/ispbill/internal/app/service/billing"
	"github.com/fatflowers/ispbill/pkg/logctx"
)

var operator string

func newReconcileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation cycle",
		Long:  `Prune the deletion ledger, sync package counts, archive payments of deleted packages, reprice open payments and generate the current period. Prints what changed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logctx.WithOperator(cmd.Context(), operator)
			return withBilling(ctx, func(ctx context.Context, svc *billing.Service) error {
				res, err := svc.Reconcile(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "billingctl", "Operator recorded in the billing log")
	return cmd
}

func newLedgerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "List the deletion ledger",
		Long:  `Print deleted payments that reconciliation will not regenerate, with the time each entry expires.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBilling(cmd.Context(), func(ctx context.Context, svc *billing.Service) error {
				entries, err := svc.LedgerEntries(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), entries)
			})
		},
	}
}
