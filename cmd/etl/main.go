// Command etl runs one reconciliation pass from the terminal, without
// the HTTP front door.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/nimbusbi/timefact/modules/etl"
	"github.com/nimbusbi/timefact/modules/etl/domain/warehouse"
	"github.com/nimbusbi/timefact/pkg/composables"
	"github.com/nimbusbi/timefact/pkg/configuration"
	"github.com/nimbusbi/timefact/pkg/eventbus"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "timefact",
		Short: "Time-tracking warehouse synchronization",
	}
	root.AddCommand(syncCmd())
	return root
}

func syncCmd() *cobra.Command {
	var fromFlag, toFlag string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := time.Parse(warehouse.DateLayout, fromFlag)
			if err != nil {
				return fmt.Errorf("--from must be a YYYY-MM-DD date: %w", err)
			}
			to, err := time.Parse(warehouse.DateLayout, toFlag)
			if err != nil {
				return fmt.Errorf("--to must be a YYYY-MM-DD date: %w", err)
			}

			conf := configuration.Use()
			defer conf.Unload()
			logger := conf.Logger()

			pool, err := pgxpool.New(cmd.Context(), conf.Database.Opts)
			if err != nil {
				return err
			}
			defer pool.Close()

			module := etl.NewModule(conf, logger, eventbus.NewEventPublisher(logger))

			ctx := composables.WithPool(cmd.Context(), pool)
			result, err := module.SyncService.Run(ctx, from, to)
			if err != nil {
				return err
			}

			fmt.Printf(
				"completed in %s: %d imputation rows, %d attendance rows appended\n",
				result.Elapsed, result.ImputationsAdded, result.AttendanceAdded,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "range end (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

