package node

import (
	"sync"

	"github.com/rs/zerolog"

	"fanlink/internal/cache"
	"fanlink/internal/chain"
	"fanlink/internal/config"
	"fanlink/internal/explorer"
	"fanlink/internal/fanapi"
	"fanlink/internal/registry"
	"fanlink/internal/transform"
)

// Node owns every long-lived client the operations run against. Chain
// clients are pooled per endpoint, and explorer and partner clients are
// pooled per base URL so their rate limiters survive across requests.
type Node struct {
	cfg        *config.Config
	registry   *registry.Registry
	pool       *chain.Pool
	cache      cache.Cache
	transforms *transform.Manager
	logger     zerolog.Logger

	mu        sync.Mutex
	explorers map[string]*explorer.Client
	partners  map[string]*fanapi.Client
}

// New builds a node from configuration. The transform directory is
// loaded eagerly so a broken hook fails startup, not the first request.
func New(cfg *config.Config, logger zerolog.Logger) (*Node, error) {
	reg := registry.New(cfg)

	var store cache.Cache = cache.NewNoopCache()
	if cfg.Cache.Enabled {
		memory, err := cache.NewMemoryCache(cfg.Cache.Size, cfg.GetCacheTTLDuration())
		if err != nil {
			return nil, err
		}
		store = memory
	}

	transforms := transform.NewManager(cfg.GetTransformTimeoutDuration(), logger)
	if cfg.Transform.Enabled {
		if err := transforms.LoadFromDirectory(cfg.Transform.Directory); err != nil {
			store.Close()
			return nil, err
		}
	}

	return &Node{
		cfg:        cfg,
		registry:   reg,
		pool:       chain.NewPool(cfg.GetRequestTimeoutDuration(), logger),
		cache:      store,
		transforms: transforms,
		logger:     logger.With().Str("component", "node").Logger(),
		explorers:  make(map[string]*explorer.Client),
		partners:   make(map[string]*fanapi.Client),
	}, nil
}

// Registry exposes the network registry to the trigger and CLI
func (n *Node) Registry() *registry.Registry {
	return n.registry
}

func (n *Node) chainClient(t *target) *chain.Client {
	return n.pool.Get(t.endpoint)
}

func (n *Node) explorerClient(t *target) (*explorer.Client, error) {
	if t.explorerURL == "" {
		return nil, validationErr("network %q has no explorer URL configured", t.network.Name)
	}
	key := t.explorerURL + "\x00" + t.explorerKey

	n.mu.Lock()
	defer n.mu.Unlock()
	if c, ok := n.explorers[key]; ok {
		return c, nil
	}
	c := explorer.NewClient(explorer.Options{
		BaseURL: t.explorerURL,
		APIKey:  t.explorerKey,
		ChainID: t.network.ChainID,
		RPS:     n.cfg.RateLimit.ExplorerRPS,
		Burst:   n.cfg.RateLimit.ExplorerBurst,
		Timeout: n.cfg.GetRequestTimeoutDuration(),
		Cache:   n.cache,
		Logger:  n.logger,
	})
	n.explorers[key] = c
	return c, nil
}

func (n *Node) partnerClient(t *target) (*fanapi.Client, error) {
	if t.partnerURL == "" {
		return nil, validationErr("network %q has no fan API URL configured; set partnerBaseUrl", t.network.Name)
	}
	if t.partnerKey == "" {
		return nil, &OpError{
			Kind:    KindAuth,
			Message: "partnerApiKey credential is required for poll and reward operations",
		}
	}
	key := t.partnerURL + "\x00" + t.partnerKey

	n.mu.Lock()
	defer n.mu.Unlock()
	if c, ok := n.partners[key]; ok {
		return c, nil
	}
	c := fanapi.NewClient(fanapi.Options{
		BaseURL: t.partnerURL,
		Token:   t.partnerKey,
		RPS:     n.cfg.RateLimit.FanAPIRPS,
		Burst:   n.cfg.RateLimit.FanAPIBurst,
		Timeout: n.cfg.GetRequestTimeoutDuration(),
		Logger:  n.logger,
	})
	n.partners[key] = c
	return c, nil
}

// Stats is a point-in-time snapshot for the periodic stats log
type Stats struct {
	ChainRequests uint64      `json:"chainRequests"`
	ChainClients  int         `json:"chainClients"`
	Cache         cache.Stats `json:"cache"`
	Transforms    int         `json:"transforms"`
}

func (n *Node) Stats() Stats {
	return Stats{
		ChainRequests: n.pool.RequestCount(),
		ChainClients:  n.pool.Size(),
		Cache:         n.cache.Stats(),
		Transforms:    len(n.transforms.Operations()),
	}
}

// Close releases the pooled clients and the cache
func (n *Node) Close() {
	n.pool.Close()
	n.cache.Close()
	n.transforms.Close()
}
