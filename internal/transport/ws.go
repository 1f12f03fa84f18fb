package transport

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/watt-broker/internal/config"
	"github.com/rxtech-lab/watt-broker/internal/logger"
	"github.com/rxtech-lab/watt-broker/internal/types"
	"github.com/rxtech-lab/watt-broker/pkg/errors"
	"go.uber.org/zap"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 10 * time.Second
)

// WSClient is a websocket market session client. A single reader
// goroutine decodes inbound frames and feeds the handler, preserving
// wire order; writes are serialized by a mutex.
type WSClient struct {
	brokerName string
	conn       *websocket.Conn
	logger     *logger.Logger

	writeMu sync.Mutex
}

// Dial connects to the market session endpoint.
func Dial(ctx context.Context, cfg config.MarketConfig, log *logger.Logger) (*WSClient, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	conn, _, err := dialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeConnectFailed, err, "failed to connect to market at %q", cfg.URL)
	}

	log.Info("connected to market session",
		zap.String("url", cfg.URL),
		zap.String("broker", cfg.BrokerName),
	)

	return &WSClient{
		brokerName: cfg.BrokerName,
		conn:       conn,
		logger:     log,
	}, nil
}

// Run reads frames until the connection closes or ctx is cancelled,
// handing each decoded event to the handler. Undecodable frames and
// unknown kinds are logged and dropped. Always returns a non-nil error
// describing why the loop ended.
func (c *WSClient) Run(ctx context.Context, handler EventHandler) error {
	// Unblock ReadMessage on cancellation.
	stop := context.AfterFunc(ctx, func() {
		c.conn.Close()
	})
	defer stop()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return errors.Wrap(errors.ErrCodeTransportClosed, "session cancelled", ctx.Err())
			}

			return errors.Wrap(errors.ErrCodeTransportClosed, "market connection closed", err)
		}

		event, err := DecodeEvent(data)
		if err != nil {
			c.logger.Warn("dropping undecodable frame", zap.Error(err))
			continue
		}

		handler.HandleEvent(event)
	}
}

// SubmitOrder writes an order envelope to the session.
func (c *WSClient) SubmitOrder(ctx context.Context, order types.Order) error {
	data, err := EncodeOrder(c.brokerName, order)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return errors.Wrap(errors.ErrCodeOrderSubmitFailed, "failed to set write deadline", err)
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Wrapf(errors.ErrCodeOrderSubmitFailed, err, "failed to submit order %s", order.ID)
	}

	return nil
}

// Close closes the underlying connection.
func (c *WSClient) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))

	return c.conn.Close()
}
