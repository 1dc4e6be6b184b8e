package chain

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Endpoint identifies one upstream RPC endpoint
type Endpoint struct {
	RPCURL   string
	WSURL    string
	PreferWS bool
}

func (e Endpoint) key() string {
	k := e.RPCURL + "|" + e.WSURL
	if e.PreferWS {
		k += "|ws"
	}
	return k
}

// Pool hands out one shared Client per endpoint. Credentials from
// different requests frequently point at the same endpoint, so clients
// (and their connection pools) are reused across requests.
type Pool struct {
	timeout time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	clients map[string]*Client
}

// NewPool creates a new client pool
func NewPool(requestTimeout time.Duration, logger zerolog.Logger) *Pool {
	return &Pool{
		timeout: requestTimeout,
		logger:  logger,
		clients: make(map[string]*Client),
	}
}

// Get returns the shared client for an endpoint, creating it on first use
func (p *Pool) Get(endpoint Endpoint) *Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := endpoint.key()
	if client, ok := p.clients[key]; ok {
		return client
	}

	client := NewClient(Options{
		RPCURL:         endpoint.RPCURL,
		WSURL:          endpoint.WSURL,
		PreferWS:       endpoint.PreferWS,
		RequestTimeout: p.timeout,
		Logger:         p.logger,
	})
	p.clients[key] = client
	p.logger.Debug().Str("endpoint", endpoint.RPCURL).Msg("chain client created")
	return client
}

// Size returns the number of live clients
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// RequestCount returns the total requests sent across all clients
func (p *Pool) RequestCount() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var total uint64
	for _, client := range p.clients {
		total += client.RequestCount()
	}
	return total
}

// Close closes all clients
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, client := range p.clients {
		client.Close()
		delete(p.clients, key)
	}
}
