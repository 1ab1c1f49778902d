package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/kvcached/cached/store"
)

//go:embed static
var staticFS embed.FS

// Server serves the cached web dashboard: a static single-page viewer
// plus an SSE feed of the storage engine's MONITOR events.
type Server struct {
	httpServer *http.Server
	engine     *store.Engine
}

// New creates a new web Server backed by the given Engine.
func New(engine *store.Engine) *Server {
	s := &Server{engine: engine}

	mux := http.NewServeMux()

	sub, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /", http.FileServer(http.FS(sub)))
	mux.HandleFunc("GET /api/events", s.handleSSE)

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Serve starts the HTTP server on the given listener.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web: serve: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

type eventJSON struct {
	Time    string   `json:"time"`
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

func eventToJSON(ev store.MonitorEvent) eventJSON {
	args := make([]string, len(ev.Args))
	copy(args, ev.Args)
	return eventJSON{
		Time:    time.Now().Format(time.RFC3339Nano),
		Command: ev.Command,
		Args:    args,
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	flusher.Flush() // send headers immediately

	sub := s.engine.SubscribeMonitor()
	defer sub.Close()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-sub.C():
			data, err := json.Marshal(eventToJSON(ev))
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
