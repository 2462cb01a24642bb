package orders

import (
	"fmt"
	"net/http"
	"time"

	"github.com/MonkyMars/gecho"
)

// StreamOrderEvents serves an SSE stream of item and status changes for one
// order, fed by the redis pub/sub channel the order service publishes to.
// The connection stays open until the client goes away.
func (orm *OrderRoutesManager) StreamOrderEvents(w http.ResponseWriter, r *http.Request) {
	claims := orm.requireClaims(w, r)
	if claims == nil {
		return
	}

	orderID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	// Ownership check before tying up a connection
	if _, err := orm.orderService.GetOrderForCustomer(r.Context(), claims.Sub, orderID); err != nil {
		orm.respondOrderError(w, err, "stream_events")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		orm.logger.Error("Response writer does not support streaming")
		gecho.InternalServerError(w,
			gecho.WithMessage("Streaming is not supported"),
			gecho.Send(),
		)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	pubsub := orm.cacheService.SubscribeOrderEvents(ctx, orderID)
	defer pubsub.Close()

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	events := pubsub.Channel()
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-events:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg.Payload)
			flusher.Flush()
		case <-heartbeat.C:
			// Comment frames keep proxies from closing an idle stream
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
