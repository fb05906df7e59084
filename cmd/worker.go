package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/hostel-management/internal/registration"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that run outside the HTTP server.`,
}

var sweeperWorkerCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Delete expired temporary registrations",
	Long:  `Periodically delete temporary registrations whose payment window has passed.`,
	Run: func(cmd *cobra.Command, args []string) {
		startSweeperWorker()
	},
}

var sweepOnce bool

func startSweeperWorker() {
	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	deps, err := initializeDependencies(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()
	logger := deps.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if sweepOnce {
		n, err := deps.Registration.SweepExpired(ctx)
		if err != nil {
			logger.Error("sweep failed", "error", err)
			os.Exit(1)
		}
		logger.Info("sweep finished", "deleted", n)
		_ = deps.Bus.Drain(ctx)
		return
	}

	logger.Info("sweeper worker is running. Press Ctrl+C to stop.",
		"interval", config.Registration.SweepInterval.String())
	registration.RunSweeper(ctx, deps.Registration, config.Registration.SweepInterval, logger)
	logger.Info("sweeper worker stopped")
}

func init() {
	sweeperWorkerCmd.Flags().BoolVar(&sweepOnce, "once", false, "Run a single sweep and exit")

	workerCmd.AddCommand(sweeperWorkerCmd)
	rootCmd.AddCommand(workerCmd)
}
