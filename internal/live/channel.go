package live

import (
	"context"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/spec-kit/dealroom-client/internal/domain"
	"github.com/spec-kit/dealroom-client/internal/events"
	"github.com/spec-kit/dealroom-client/pkg/util"
)

type joinFrame struct {
	Event  string `json:"event"`
	DealID string `json:"dealId"`
}

// Channel is the persistent live-message connection. Incoming messages are
// published as chat_message_received events; delivery is best effort with no
// reconnect or ordering guarantees beyond what the socket provides.
type Channel struct {
	conn       *websocket.Conn
	dispatcher events.Dispatcher
	logger     *zap.Logger
	closeOnce  sync.Once
	done       chan struct{}
}

// Dial connects to the live channel at the configured address and starts the
// read loop.
func Dial(ctx context.Context, url string, dispatcher events.Dispatcher, logger *zap.Logger) (*Channel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, util.NewNetworkError(err)
	}

	ch := &Channel{
		conn:       conn,
		dispatcher: dispatcher,
		logger:     logger,
		done:       make(chan struct{}),
	}
	go ch.readLoop()
	return ch, nil
}

// Join subscribes the connection to one deal's message stream.
func (c *Channel) Join(dealID string) error {
	if err := c.conn.WriteJSON(joinFrame{Event: "join", DealID: dealID}); err != nil {
		return util.NewNetworkError(err)
	}
	return nil
}

// Close tears the connection down. Idempotent; frames that race the close
// are dropped silently rather than surfacing errors for a view that is gone.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = c.conn.Close()
	})
}

func (c *Channel) readLoop() {
	for {
		var msg domain.ChatMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.done:
				// closed locally; the error is just the socket going away
			default:
				c.logger.Debug("live channel closed by peer", zap.Error(err))
				c.Close()
			}
			return
		}

		select {
		case <-c.done:
			return
		default:
		}

		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if c.dispatcher != nil {
			c.dispatcher.Publish(context.Background(), events.EventChatMessageReceived,
				events.ChatMessagePayload{Message: msg})
		}
	}
}
