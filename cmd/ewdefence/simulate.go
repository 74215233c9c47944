package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/simulator"
)

var simulateRate int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate demo traffic (normal plus cycling attack phases)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := simulator.New(serverURL, simulateRate).Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulateRate, "rate", 100, "normal requests per second")
}
