package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fanlink/internal/node"
	"fanlink/internal/trigger"
)

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log.Level, cfg.Log.Pretty)

	network, _ := cmd.Flags().GetString("network")
	events, _ := cmd.Flags().GetStringSlice("events")
	if network == "" {
		if len(cfg.Networks) != 1 {
			return fmt.Errorf("--network is required when more than one network is configured")
		}
		network = cfg.Networks[0].Name
	}
	if len(events) == 0 {
		events = []string{trigger.EventNewBlock}
	}

	n, err := node.New(cfg, logger)
	if err != nil {
		return err
	}
	defer n.Close()

	tr := trigger.New(n, logger)
	store := trigger.NewCheckpointStore(cfg.Trigger.CheckpointDir)

	state := map[string]string{}
	cursors, found, err := store.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load checkpoint, starting from baseline")
	} else if found {
		state = cursors
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := cfg.GetTriggerIntervalDuration()
	logger.Info().
		Str("network", network).
		Strs("events", events).
		Dur("interval", interval).
		Msg("watching")

	enc := json.NewEncoder(os.Stdout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		resp := tr.Poll(ctx, trigger.Request{
			Credentials: node.Credentials{Network: network},
			Events:      events,
			State:       state,
		})
		for _, note := range resp.Notes {
			logger.Warn().Msg(note)
		}
		for _, evt := range resp.Events {
			if err := enc.Encode(evt); err != nil {
				return err
			}
		}
		state = resp.State
		if err := store.Save(state); err != nil {
			logger.Warn().Err(err).Msg("failed to save checkpoint")
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("stopping watch")
			return nil
		case <-ticker.C:
		}
	}
}
