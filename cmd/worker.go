/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cinedex/apiserver/internal/activity"
	"github.com/cinedex/apiserver/internal/logging"
	"github.com/cinedex/apiserver/internal/mq"
	"github.com/cinedex/apiserver/internal/storage"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Archives activity events from the message bus to object storage",
	Long: `Consumes activity events published by the API server and stores each one
as a JSON object. Requires MQ_BACKEND and STORAGE_BACKEND to be set.

	cinedex worker
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bus, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if bus == nil {
			return errors.New("worker requires MQ_BACKEND")
		}
		defer func() {
			_ = bus.Close()
		}()

		store, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("worker requires STORAGE_BACKEND")
		}

		err = activity.NewArchiver(store).Run(ctx, bus)
		if errors.Is(err, context.Canceled) {
			logging.Info().Msg("worker stopped")
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
