// Package server exposes the node over the host plugin contract: a
// descriptor endpoint, the execute and poll entry points, and a health
// probe.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"fanlink/internal/config"
	"fanlink/internal/node"
	"fanlink/internal/trigger"
)

const statsInterval = 60 * time.Second

// Server owns the node and the HTTP listener in front of it
type Server struct {
	cfg        *config.Config
	node       *node.Node
	trigger    *trigger.Trigger
	httpServer *http.Server
	logger     zerolog.Logger
	started    time.Time
	stopStats  chan struct{}
}

// New creates a new Server
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	n, err := node.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create node: %w", err)
	}

	if cfg.Cache.Enabled {
		logger.Info().
			Int("size", cfg.Cache.Size).
			Int("ttl", cfg.Cache.TTL).
			Msg("cache enabled")
	} else {
		logger.Info().Msg("cache disabled")
	}
	if cfg.Transform.Enabled {
		logger.Info().
			Str("directory", cfg.Transform.Directory).
			Msg("transforms enabled")
	}

	return &Server{
		cfg:       cfg,
		node:      n,
		trigger:   trigger.New(n, logger),
		logger:    logger.With().Str("component", "server").Logger(),
		stopStats: make(chan struct{}),
	}, nil
}

// Node exposes the wired node, used by the CLI commands that bypass HTTP
func (s *Server) Node() *node.Node {
	return s.node
}

// Trigger exposes the poll trigger for standalone watch mode
func (s *Server) Trigger() *trigger.Trigger {
	return s.trigger
}

// Start starts the HTTP listener and the periodic stats log
func (s *Server) Start() error {
	handler := NewHandler(s.node, s.trigger, s.cfg.Server.MaxBodySize, s.logger)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.started = time.Now()

	go func() {
		s.logger.Info().
			Str("addr", addr).
			Msg("starting server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("server error")
		}
	}()

	go s.statsLoop()
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server...")
	close(s.stopStats)

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.node.Close()

	if err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

func (s *Server) statsLoop() {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := s.node.Stats()
			s.logger.Info().
				Uint64("chainRequests", stats.ChainRequests).
				Int("chainClients", stats.ChainClients).
				Uint64("cacheHits", stats.Cache.Hits).
				Uint64("cacheMisses", stats.Cache.Misses).
				Int("cacheSize", stats.Cache.Size).
				Dur("uptime", time.Since(s.started)).
				Msg("stats")
		case <-s.stopStats:
			return
		}
	}
}
