package chain

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"fanlink/internal/jsonrpc"
)

// WSClient owns a single WebSocket connection to an endpoint and
// correlates responses to in-flight requests by ID. The connection is
// redialed with backoff when it drops; requests in flight at that
// moment fail and the caller decides what to do.
type WSClient struct {
	wsURL             string
	messageTimeout    time.Duration
	reconnectInterval time.Duration
	logger            zerolog.Logger

	conn    *websocket.Conn
	connMu  sync.RWMutex
	writeMu sync.Mutex

	pending   map[int64]chan *jsonrpc.Response
	pendingMu sync.Mutex
	reqID     atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWSClient creates a new WebSocket client
func NewWSClient(wsURL string, messageTimeout, reconnectInterval time.Duration, logger zerolog.Logger) *WSClient {
	ctx, cancel := context.WithCancel(context.Background())
	if messageTimeout <= 0 {
		messageTimeout = 60 * time.Second
	}
	if reconnectInterval < 3*time.Second {
		reconnectInterval = 3 * time.Second
	}
	return &WSClient{
		wsURL:             wsURL,
		messageTimeout:    messageTimeout,
		reconnectInterval: reconnectInterval,
		logger:            logger,
		pending:           make(map[int64]chan *jsonrpc.Response),
		ctx:               ctx,
		cancel:            cancel,
	}
}

// Connect establishes the connection and starts the reader goroutine
func (c *WSClient) Connect(ctx context.Context) error {
	c.connMu.Lock()
	if c.conn != nil {
		c.connMu.Unlock()
		return nil
	}
	c.connMu.Unlock()

	c.logger.Info().Str("url", c.wsURL).Msg("WebSocket connecting")
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect WebSocket: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.logger.Info().Str("url", c.wsURL).Msg("WebSocket connected")
	c.wg.Add(1)
	go c.readLoop()
	return nil
}

// Connected returns true if the connection is established
func (c *WSClient) Connected() bool {
	c.connMu.RLock()
	ok := c.conn != nil
	c.connMu.RUnlock()
	return ok
}

// SendRequest sends an RPC request and waits for the matching response
func (c *WSClient) SendRequest(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()
	if conn == nil {
		return nil, fmt.Errorf("WebSocket not connected")
	}

	// Requests get a private ID on the wire so responses can be matched
	// without trusting the caller's ID space
	reqID := c.reqID.Add(1)
	respChan := make(chan *jsonrpc.Response, 1)

	c.pendingMu.Lock()
	c.pending[reqID] = respChan
	c.pendingMu.Unlock()

	wsReq := &jsonrpc.Request{
		JSONRPC: req.JSONRPC,
		Method:  req.Method,
		Params:  req.Params,
		ID:      jsonrpc.NewIDInt(reqID),
	}
	body, err := wsReq.Bytes()
	if err != nil {
		c.dropPending(reqID)
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	c.writeMu.Lock()
	writeErr := conn.WriteMessage(websocket.TextMessage, body)
	c.writeMu.Unlock()
	if writeErr != nil {
		c.dropPending(reqID)
		return nil, fmt.Errorf("failed to send request: %w", writeErr)
	}

	select {
	case resp := <-respChan:
		if resp == nil {
			return nil, fmt.Errorf("connection closed")
		}
		resp.ID = req.ID
		return resp, nil
	case <-ctx.Done():
		c.dropPending(reqID)
		return nil, ctx.Err()
	}
}

func (c *WSClient) dropPending(reqID int64) {
	c.pendingMu.Lock()
	delete(c.pending, reqID)
	c.pendingMu.Unlock()
}

// failPending answers every in-flight request with nil (connection lost)
func (c *WSClient) failPending() {
	c.pendingMu.Lock()
	for _, ch := range c.pending {
		select {
		case ch <- nil:
		default:
		}
	}
	c.pending = make(map[int64]chan *jsonrpc.Response)
	c.pendingMu.Unlock()
}

// Close closes the connection and stops the reader
func (c *WSClient) Close() {
	c.cancel()
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()
	c.failPending()
	c.wg.Wait()
	c.logger.Info().Str("url", c.wsURL).Msg("WebSocket disconnected")
}

func (c *WSClient) readLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(c.messageTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
				return
			default:
			}
			c.logger.Warn().Err(err).Msg("WebSocket connection lost, reconnecting")
			if c.reconnect() {
				continue
			}
			return
		}

		c.dispatch(data)
	}
}

func (c *WSClient) dispatch(data []byte) {
	resp, err := jsonrpc.ParseResponse(data)
	if err != nil {
		c.logger.Warn().Err(err).Int("len", len(data)).Msg("ws message parse error")
		return
	}
	if resp.ID.IsNull() {
		// Unsolicited notification; nothing subscribes on this transport
		return
	}

	var reqID int64
	if _, err := fmt.Sscan(resp.ID.String(), &reqID); err != nil {
		return
	}

	c.pendingMu.Lock()
	ch, exists := c.pending[reqID]
	if exists {
		delete(c.pending, reqID)
	}
	c.pendingMu.Unlock()

	if exists && ch != nil {
		select {
		case ch <- resp:
		default:
		}
	}
}

func (c *WSClient) reconnect() bool {
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()
	c.failPending()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	for {
		select {
		case <-c.ctx.Done():
			return false
		case <-time.After(c.reconnectInterval):
		}

		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
		cancel()
		if err != nil {
			c.logger.Warn().Err(err).Dur("nextRetry", c.reconnectInterval).Msg("WebSocket reconnection failed, will retry")
			continue
		}

		c.connMu.Lock()
		c.conn = conn
		c.connMu.Unlock()
		c.logger.Info().Str("url", c.wsURL).Msg("WebSocket reconnected")
		return true
	}
}
