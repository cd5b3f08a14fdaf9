package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/cours-de-latin/enumeratio"
	"github.com/cours-de-latin/enumeratio/internal/logging"
	"github.com/cours-de-latin/enumeratio/morph"
)

// writeWait bounds a single websocket write.
const writeWait = 10 * time.Second

// newUpgrader accepts handshakes from origins c allows. Requests without
// an Origin header come from non-browser clients and are accepted.
func newUpgrader(c *cors.Cors) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return r.Header.Get("Origin") == "" || c.OriginAllowed(r)
		},
	}
}

// streamRequest is the single message a client sends after connecting.
type streamRequest struct {
	SectionURL string   `json:"section_url"`
	Lines      []string `json:"lines"`
	Excluded   []string `json:"excluded_parts_of_speech"`
}

// StreamMessage is one server message on /api/stream.
type StreamMessage struct {
	Type       string    `json:"type"` // "line", "complete", "error"
	SectionURL string    `json:"section_url,omitempty"`
	Line       *lineJSON `json:"line,omitempty"`
	Lines      int       `json:"lines,omitempty"`
	Message    string    `json:"message,omitempty"`
	Timestamp  string    `json:"timestamp"`
}

func send(conn *websocket.Conn, msg StreamMessage) error {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// handleStream reconstructs and scores a section line by line, sending
// each line as soon as its tokens are in.
func handleStream(tagger *morph.Tagger, c *cors.Cors) http.HandlerFunc {
	upgrader := newUpgrader(c)
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()
		ctx := r.Context()
		logging.WebSocketEvent(ctx, "client_connected", "remote_addr", r.RemoteAddr)

		var req streamRequest
		if err := conn.ReadJSON(&req); err != nil {
			send(conn, StreamMessage{Type: "error", Message: "invalid section request: " + err.Error()})
			return
		}
		n, err := streamSection(ctx, conn, tagger, req)
		if err != nil {
			logging.WebSocketEvent(ctx, "section_failed", "section_url", req.SectionURL, "lines", n, "error", err.Error())
			send(conn, StreamMessage{Type: "error", SectionURL: req.SectionURL, Lines: n, Message: err.Error()})
			return
		}
		logging.WebSocketEvent(ctx, "section_complete", "section_url", req.SectionURL, "lines", n)
		send(conn, StreamMessage{Type: "complete", SectionURL: req.SectionURL, Lines: n})
	}
}

// streamSection returns the number of lines sent.
func streamSection(ctx context.Context, conn *websocket.Conn, tagger *morph.Tagger, req streamRequest) (int, error) {
	ex, err := enumeratio.NewExclusions(req.Excluded)
	if err != nil {
		return 0, err
	}
	rec := enumeratio.NewReconstructor(req.Lines, enumeratio.NewStream(tagger, req.Lines))
	sent := 0
	for {
		line, err := rec.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sent, err
		}
		lj := lineJSON{LineNumber: sent, Line: line, Result: enumeratio.Score(line.Tokens, ex)}
		if err := send(conn, StreamMessage{Type: "line", SectionURL: req.SectionURL, Line: &lj}); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, rec.Finish(ctx)
}
