package main

import (
	"log"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/config"
)

var (
	cfgPath   string
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:           "ewdefence",
	Short:         "Intrusion detection and countermeasure testbed",
	Long:          "ewdefence watches access traffic for hostile sources and blocks them\nat the host firewall (or an SDN controller) for a bounded time window.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8888", "base URL of a running serve instance")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(unblockCmd)
	rootCmd.AddCommand(blockedCmd)
}

// setupLogging redirects the standard logger into a rotating file when one
// is configured; otherwise output stays on stderr.
func setupLogging(cfg *config.Config) {
	if cfg.Logging.File == "" {
		return
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.Logging.File,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}
