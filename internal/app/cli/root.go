// Package cli implements billingctl, the operator tool that runs billing
// maintenance against the configured database without starting the API.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/fatflowers/ispbill/internal/app"
	"github.com/fatflowers/ispbill/internal/app/service/billing"
	"github.com/fatflowers/ispbill/pkg/config"
	"github.com/fatflowers/ispbill/pkg/metrics"
)

var configPath string

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "billingctl",
		Short:         "ISP billing maintenance tool",
		Long:          `billingctl migrates the billing schema, runs reconciliation cycles and inspects the deletion ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				return os.Setenv("APP_CONFIG_FILE", configPath)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: APP_CONFIG_FILE or ./config.yaml)")

	cmd.AddCommand(
		newMigrateCommand(),
		newReconcileCommand(),
		newLedgerCommand(),
	)
	return cmd
}

// withBilling starts the billing stack without reconciling on start, runs fn
// and stops the stack, which flushes and drains the audit log.
func withBilling(ctx context.Context, fn func(ctx context.Context, svc *billing.Service) error) (err error) {
	var svc *billing.Service
	a := fx.New(
		app.Services,
		fx.Supply(metrics.NopBilling()),
		fx.Decorate(func(c *config.Config) *config.Config {
			c.Billing.ReconcileOnStart = false
			return c
		}),
		fx.Populate(&svc),
		fx.NopLogger,
	)
	if err := a.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.DefaultStopTimeout)
		defer cancel()
		if stopErr := a.Stop(stopCtx); stopErr != nil && err == nil {
			err = fmt.Errorf("failed to stop: %w", stopErr)
		}
	}()
	return fn(ctx, svc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
