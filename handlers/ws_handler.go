package handlers

import (
	"context"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/config"
	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// WSHandler streams business events (document lifecycle, score updates,
// tier changes) to dashboard clients over WebSocket.
type WSHandler struct {
	events         types.EventPublisher
	authorizer     BusinessAuthorizer
	allowedOrigins []string
	isDevelopment  bool
}

func NewWSHandler(events types.EventPublisher, authorizer BusinessAuthorizer, serverCfg *config.ServerConfig) *WSHandler {
	return &WSHandler{
		events:         events,
		authorizer:     authorizer,
		allowedOrigins: serverCfg.AllowedOrigins,
		isDevelopment:  serverCfg.Environment == config.EnvDevelopment,
	}
}

func (h *WSHandler) acceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	}
	if h.isDevelopment {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = h.allowedOrigins
	}
	return opts
}

// SubscribeHandler upgrades the connection and forwards the business's
// event stream until the client disconnects.
// GET /v1/businesses/:id/events (WebSocket)
func (h *WSHandler) SubscribeHandler(c *gin.Context) {
	log := logger.GetLogger()

	businessID := requireBusinessID(c)
	if businessID == "" {
		return
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	// Ownership check happens before the upgrade so the client gets a
	// proper HTTP error instead of a dropped socket.
	if _, err := h.authorizer.GetBusiness(c.Request.Context(), businessID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, h.acceptOptions())
	if err != nil {
		log.Errorw("WebSocket accept failed",
			"businessID", businessID, "userID", userID, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	eventCh, err := h.events.Subscribe(ctx, businessID, userID)
	if err != nil {
		log.Errorw("Event subscription failed",
			"businessID", businessID, "userID", userID, "error", err)
		_ = conn.Close(websocket.StatusInternalError, "subscription failed")
		return
	}
	defer func() {
		if err := h.events.Unsubscribe(context.Background(), businessID, userID); err != nil {
			log.Warnw("Unsubscribe failed", "businessID", businessID, "error", err)
		}
	}()

	log.Infow("WebSocket connection established",
		"businessID", businessID, "userID", userID)

	// Drain client frames so close and pong frames are processed; clients
	// are not expected to send application messages.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return

		case <-pingTicker.C:
			pingCtx, pingCancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := conn.Ping(pingCtx)
			pingCancel()
			if err != nil {
				log.Debugw("WebSocket ping failed, closing",
					"businessID", businessID, "error", err)
				_ = conn.Close(websocket.StatusGoingAway, "ping timeout")
				return
			}

		case event, ok := <-eventCh:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "event stream closed")
				return
			}
			writeCtx, writeCancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := wsjson.Write(writeCtx, conn, event)
			writeCancel()
			if err != nil {
				log.Debugw("WebSocket write failed, closing",
					"businessID", businessID, "error", err)
				_ = conn.Close(websocket.StatusGoingAway, "write failed")
				return
			}
		}
	}
}
