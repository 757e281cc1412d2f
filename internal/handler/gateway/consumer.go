// Package gateway consumes the platform's event stream over a websocket and
// feeds presence transitions into the orchestrator.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
)

const (
	opVoiceStateUpdate = "voice_state_update"
	reconnectDelay     = 5 * time.Second
)

// frame is the gateway's wire envelope.
type frame struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"d"`
}

// Consumer maintains the gateway connection and dispatches decoded events.
// It reconnects with a fixed delay on any read or connect failure and stops
// only when its context is canceled.
type Consumer struct {
	url      string
	token    string
	dispatch *Dispatcher
}

// NewConsumer creates a gateway consumer delivering events through dispatch.
func NewConsumer(gatewayURL, token string, dispatch *Dispatcher) *Consumer {
	if gatewayURL == "" {
		panic("gateway URL cannot be empty for Consumer")
	}
	if dispatch == nil {
		panic("dispatcher cannot be nil for Consumer")
	}
	return &Consumer{url: gatewayURL, token: token, dispatch: dispatch}
}

// Run connects and reads until ctx is canceled. It should be called in its
// own goroutine.
func (c *Consumer) Run(ctx context.Context) {
	logCtx := logrus.WithField("component", "gateway")
	for {
		if ctx.Err() != nil {
			logCtx.Info("Gateway consumer stopped")
			return
		}

		conn, err := c.connect(ctx)
		if err != nil {
			logCtx.WithError(err).Warnf("Gateway connect failed, retrying in %s", reconnectDelay)
			c.sleep(ctx)
			continue
		}
		logCtx.Info("Gateway connected")

		c.readLoop(ctx, conn, logCtx)
		conn.Close()

		if ctx.Err() == nil {
			logCtx.Warnf("Gateway connection lost, reconnecting in %s", reconnectDelay)
			c.sleep(ctx)
		}
	}
}

func (c *Consumer) connect(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bot "+c.token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	return conn, err
}

func (c *Consumer) readLoop(ctx context.Context, conn *websocket.Conn, logCtx *logrus.Entry) {
	// Unblock ReadJSON when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				logCtx.WithError(err).Warn("Gateway read failed")
			}
			return
		}
		if f.Op != opVoiceStateUpdate {
			continue
		}

		var ev domain.VoiceStateEvent
		if err := json.Unmarshal(f.Data, &ev); err != nil {
			logCtx.WithError(err).Warn("Gateway: Dropping undecodable voice state frame")
			continue
		}
		c.dispatch.Dispatch(ctx, ev)
	}
}

func (c *Consumer) sleep(ctx context.Context) {
	select {
	case <-time.After(reconnectDelay):
	case <-ctx.Done():
	}
}
