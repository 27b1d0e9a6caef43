package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"gestionstock/internal/apierror"
	"gestionstock/internal/store"

	"github.com/gin-gonic/gin"
)

const streamHeartbeat = 25 * time.Second

// StreamHandler pushes live snapshots of a collection as server-sent events:
// one "snapshot" event with the full list on connect and after every change.
// Streams end when the client goes away or when appCtx is done.
type StreamHandler struct {
	appCtx context.Context
	st     store.Store
}

func NewStreamHandler(appCtx context.Context, st store.Store) *StreamHandler {
	return &StreamHandler{appCtx: appCtx, st: st}
}

// Stream godoc
// @Summary Flux temps réel d'une collection (SSE)
// @Tags stream
// @Produce text/event-stream
// @Param collection path string true "products | clients | sales"
// @Param access_token query string false "JWT, pour EventSource"
// @Success 200 {string} string "event: snapshot"
// @Failure 404 {object} apierror.APIError
// @Router /v1/stream/{collection} [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	switch store.Collection(c.Param("collection")) {
	case store.Products:
		serveStream(c, h.appCtx, store.WatchProducts(ctx, h.st))
	case store.Clients:
		serveStream(c, h.appCtx, store.WatchClients(ctx, h.st))
	case store.Sales:
		serveStream(c, h.appCtx, store.WatchSales(ctx, h.st))
	default:
		c.JSON(http.StatusNotFound, apierror.New("Collection inconnue"))
	}
}

func serveStream[T any](c *gin.Context, appCtx context.Context, sub *store.Subscription[T]) {
	defer sub.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-sub.Updates():
			if !ok {
				return false
			}
			if snap == nil {
				snap = []T{}
			}
			c.SSEvent("snapshot", snap)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		case <-appCtx.Done():
			return false
		}
	})
}
