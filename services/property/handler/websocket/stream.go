package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/property"
)

const writeTimeout = 10 * time.Second

// StreamHandler bridges property subscriptions onto websockets. Each
// connection gets an immediate catalogue snapshot, then a fresh snapshot on
// every change, until the client disconnects.
type StreamHandler struct {
	propertyUC property.PropertyUC
	log        *logger.ZapLogger
	upgrader   websocket.Upgrader
}

// NewStreamHandler creates the property stream handler.
func NewStreamHandler(propertyUC property.PropertyUC, log *logger.ZapLogger) *StreamHandler {
	return &StreamHandler{
		propertyUC: propertyUC,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// RegisterRoutes mounts the stream endpoint.
func (h *StreamHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws/properties", h.StreamProperties)
}

// propertiesEvent is the wire shape pushed to stream clients.
type propertiesEvent struct {
	Type       string            `json:"type"`
	Properties []models.Property `json:"properties"`
}

func (h *StreamHandler) StreamProperties(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Serialize writes through a channel; the subscription callback fires
	// from backend goroutines.
	snapshots := make(chan []models.Property, 8)
	unsubscribe, err := h.propertyUC.SubscribeToProperties(c.Request().Context(), func(properties []models.Property) {
		select {
		case snapshots <- properties:
		default:
			// Client is slow; it will catch up on the next snapshot.
		}
	})
	if err != nil {
		h.log.Error("failed to subscribe property stream", logger.Err(err))
		return err
	}
	defer unsubscribe()

	// Reader goroutine: we never expect client messages, but reading is how
	// the close frame is noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return nil
		case properties := <-snapshots:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(propertiesEvent{Type: "properties", Properties: properties}); err != nil {
				return nil
			}
		}
	}
}
