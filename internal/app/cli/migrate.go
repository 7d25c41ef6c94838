package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/fatflowers/ispbill/internal/platform/db"
	"github.com/fatflowers/ispbill/pkg/config"
	"github.com/fatflowers/ispbill/pkg/logger"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the billing schema",
		Long:  `Create or update the billing tables and stamp the schema version. Refuses a database written by a newer build.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	var version int
	// db.Module migrates while the graph is built
	a := fx.New(
		logger.Module,
		config.Module,
		db.Module,
		fx.Invoke(func(gdb *gorm.DB) (err error) {
			version, err = db.SchemaVersion(cmd.Context(), gdb)
			return err
		}),
		fx.NopLogger,
	)
	if err := a.Err(); err != nil {
		return err
	}
	if err := a.Start(cmd.Context()); err != nil {
		return err
	}
	defer func() { _ = a.Stop(context.WithoutCancel(cmd.Context())) }()

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
	return err
}
