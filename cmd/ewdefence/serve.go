package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/config"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/countermeasure"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/detection"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/registry"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/server"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/storage"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the detection/countermeasure service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		setupLogging(cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := registry.New(cfg.StateFile)
		backend, err := countermeasure.ForName(cfg.Counter.Backend,
			cfg.Counter.SDN.ControllerURL, cfg.Counter.SDN.Dpid, cfg.Counter.SDN.Priority)
		if err != nil {
			return err
		}
		log.Printf("serve: countermeasure backend: %s", backend.Name())

		blocker := countermeasure.New(backend, reg)
		blocker.Restore()
		defer blocker.Stop()

		var store storage.Store
		if rs, rerr := storage.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); rerr != nil {
			log.Printf("serve: %v; continuing without traffic store, detection disabled", rerr)
		} else {
			store = rs
			defer rs.Close()
		}

		detector := detection.New(cfg.Detection)
		srv := server.New(cfg, store, detector, blocker)

		if store != nil && cfg.AccessLog != "" {
			w := watcher.New(cfg.AccessLog, func(entry models.TrafficEntry) {
				if err := store.AddEntry(ctx, entry); err != nil {
					log.Printf("watcher: store entry: %v", err)
				}
			})
			go func() {
				if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("watcher: %v", err)
				}
			}()
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("serve: listening on %s", cfg.Listen)
			errCh <- srv.Run(ctx)
		}()

		select {
		case <-ctx.Done():
			log.Println("serve: shutting down")
			return nil
		case err := <-errCh:
			return err
		}
	},
}
