// Access log streaming over SSE and WebSocket.

package control

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coder/websocket"

	"github.com/staticmock/staticmock/pkg/httputil"
)

// handleStreamLogs handles GET /logs/stream - SSE endpoint for live
// access log records.
func (a *API) handleStreamLogs(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteInternalError(w, "sse_error", "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := a.service.SubscribeLogs()
	defer sub.Close()

	_, _ = fmt.Fprintf(w, "event: connected\ndata: {\"message\": \"connected to access log stream\"}\n\n")
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(rec)
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "event: access\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// handleStreamLogsWS handles GET /logs/ws - WebSocket endpoint for live
// access log records. Each record is one text frame of JSON.
func (a *API) handleStreamLogsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // loopback-only API
	})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	sub := a.service.SubscribeLogs()
	defer sub.Close()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(rec)
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}
