// Package preview serves a mounted Mosaic component over HTTP for
// development. Every repaint of the runtime pushes the component's fresh
// HTML to connected browsers over a websocket, and an optional asset
// watcher broadcasts full reloads when static files change.
//
// The server owns all of its locking. The Mosaic engine itself stays
// single-threaded; the preview only ever reads the tree through
// Component.Render, synchronously inside the repaint observer.
package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	mosaic "github.com/atilaykosker/Mosaic"
	"github.com/atilaykosker/Mosaic/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// UpdateMessage is what the server pushes to connected browsers. Type is
// "render" for a fresh component paint (Content carries the HTML) or
// "reload" when an asset changed and the page should refresh itself.
type UpdateMessage struct {
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// client is one connected browser.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// Server previews a single mounted component with live updates.
type Server struct {
	config    *Config
	logger    logging.Logger
	component *mosaic.Component

	httpServer  *http.Server
	serverMutex sync.RWMutex

	clients        map[*websocket.Conn]*client
	clientsMutex   sync.RWMutex
	broadcast      chan []byte
	register       chan *client
	unregister     chan *websocket.Conn
	removeObserver func()

	// lastHTML is the snapshot served to new page loads. Handlers never
	// call Component.Render themselves; rendering happens inside the
	// repaint observer, on the goroutine that mutated the component.
	lastHTML  string
	htmlMutex sync.RWMutex

	watcher      *Watcher
	shutdownOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger routes server logs through the given logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New builds a preview server around an already mounted component. The
// component is rendered once for the initial page snapshot, and the
// runtime's repaint observer is subscribed immediately so pushes work as
// soon as the hub runs; Shutdown removes it again.
func New(cfg *Config, runtime *mosaic.Runtime, component *mosaic.Component, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if component == nil || component.Root() == nil {
		return nil, fmt.Errorf("preview needs a mounted component")
	}

	html, err := component.Render()
	if err != nil {
		return nil, fmt.Errorf("rendering component: %w", err)
	}

	s := &Server{
		config:     cfg,
		logger:     logging.NewNopLogger(),
		component:  component,
		lastHTML:   html,
		clients:    make(map[*websocket.Conn]*client),
		broadcast:  make(chan []byte),
		register:   make(chan *client),
		unregister: make(chan *websocket.Conn),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.AssetDir != "" {
		watcher, err := NewWatcher(cfg.Debounce)
		if err != nil {
			return nil, fmt.Errorf("creating asset watcher: %w", err)
		}
		watcher.Logger = s.logger
		watcher.AddFilter(NoHiddenFilter)
		watcher.AddFilter(AssetFilter)
		watcher.AddHandler(s.handleAssetChange)
		s.watcher = watcher
	}

	s.removeObserver = runtime.AddRepaintObserver(func(*mosaic.Component) {
		s.pushRender()
	})

	return s, nil
}

// Handler builds the route table. Exposed separately from Start so tests
// can drive the server through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	if s.config.AssetDir != "" {
		mux.HandleFunc("/static/", s.handleStatic)
	}
	mux.HandleFunc("/", s.handleIndex)
	return mux
}

// Start runs the hub, the asset watcher, and the HTTP server. It blocks
// until the listener fails or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	go s.runHub(ctx)

	if s.watcher != nil {
		if err := s.watcher.AddRecursive(s.config.AssetDir); err != nil {
			s.logger.Warn(ctx, err, "asset directory not watched", "dir", s.config.AssetDir)
		} else {
			s.watcher.Start(ctx)
		}
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "preview listening", "addr", addr, "component", s.component.TypeID())

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("preview server: %w", err)
	}
	return nil
}

// Shutdown stops pushing, closes every client, and drains the HTTP
// server. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.removeObserver != nil {
			s.removeObserver()
		}
		if s.watcher != nil {
			if werr := s.watcher.Stop(); werr != nil {
				s.logger.Warn(ctx, werr, "stopping asset watcher")
			}
		}

		s.clientsMutex.Lock()
		for conn, c := range s.clients {
			delete(s.clients, conn)
			close(c.send)
			conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		s.clientsMutex.Unlock()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()
		if server != nil {
			err = server.Shutdown(ctx)
		}
	})
	return err
}

// pushRender renders the previewed component, refreshes the page
// snapshot, and broadcasts the HTML. It runs inside the repaint
// observer, so the read is synchronous with the mutation that caused
// it. Dropping the frame when the hub is not draining is fine; the next
// repaint pushes a complete snapshot anyway.
func (s *Server) pushRender() {
	html, err := s.component.Render()
	if err != nil {
		s.logger.Warn(context.Background(), err, "render for push failed")
		return
	}

	s.htmlMutex.Lock()
	s.lastHTML = html
	s.htmlMutex.Unlock()

	data, err := json.Marshal(UpdateMessage{Type: "render", Content: html, Timestamp: time.Now()})
	if err != nil {
		return
	}
	select {
	case s.broadcast <- data:
	default:
	}
}

// handleAssetChange is the watcher callback; any batch of asset events
// becomes one reload broadcast.
func (s *Server) handleAssetChange(events []ChangeEvent) error {
	paths := make([]string, 0, len(events))
	for _, event := range events {
		paths = append(paths, event.Path)
	}
	s.logger.Debug(context.Background(), "assets changed", "paths", strings.Join(paths, ","))

	data, err := json.Marshal(UpdateMessage{Type: "reload", Timestamp: time.Now()})
	if err != nil {
		return err
	}
	select {
	case s.broadcast <- data:
	default:
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.htmlMutex.RLock()
	html := s.lastHTML
	s.htmlMutex.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, renderPage(s.config.Title, html))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.clientsMutex.RLock()
	count := len(s.clients)
	s.clientsMutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"component": s.component.TypeID(),
		"clients":   count,
	})
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	// Reject path traversal before touching the filesystem
	if strings.Contains(r.URL.Path, "..") {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	fs := http.StripPrefix("/static/", http.FileServer(http.Dir(s.config.AssetDir)))
	fs.ServeHTTP(w, r)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Validate origin before accepting connection
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin already checked against the config list
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	go c.writePump()
	go c.readPump()

	s.register <- c
}

// checkOrigin validates the request origin. The server's own host and the
// loopback names are always allowed; anything else must be listed in
// preview.allowed_origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	port := s.config.Port
	allowed := []string{
		fmt.Sprintf("%s:%d", s.config.Host, port),
		fmt.Sprintf("localhost:%d", port),
		fmt.Sprintf("127.0.0.1:%d", port),
	}
	for _, host := range allowed {
		if originURL.Host == host {
			return true
		}
	}
	for _, entry := range s.config.AllowedOrigins {
		if entry == origin || entry == originURL.Host {
			return true
		}
	}
	return false
}

// runHub owns the client table. Registration, removal, and fan-out all
// funnel through here so pump goroutines never touch the map directly.
func (s *Server) runHub(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case c := <-s.register:
			s.clientsMutex.Lock()
			s.clients[c.conn] = c
			count := len(s.clients)
			s.clientsMutex.Unlock()
			s.logger.Debug(ctx, "preview client connected", "total", count)

		case conn := <-s.unregister:
			s.clientsMutex.Lock()
			if c, ok := s.clients[conn]; ok {
				delete(s.clients, conn)
				close(c.send)
				conn.Close(websocket.StatusNormalClosure, "")
			}
			count := len(s.clients)
			s.clientsMutex.Unlock()
			s.logger.Debug(ctx, "preview client disconnected", "total", count)

		case message := <-s.broadcast:
			s.clientsMutex.RLock()
			var stalled []*websocket.Conn
			for conn, c := range s.clients {
				select {
				case c.send <- message:
				default:
					stalled = append(stalled, conn)
				}
			}
			s.clientsMutex.RUnlock()

			// Drop clients whose send buffer filled, outside the read lock
			if len(stalled) > 0 {
				s.clientsMutex.Lock()
				for _, conn := range stalled {
					if c, ok := s.clients[conn]; ok {
						delete(s.clients, conn)
						close(c.send)
						conn.Close(websocket.StatusPolicyViolation, "client too slow")
					}
				}
				s.clientsMutex.Unlock()
			}
		}
	}
}

// readPump drains the connection so pings are answered and closure is
// noticed. The preview protocol is one-way; inbound payloads are ignored.
func (c *client) readPump() {
	defer func() {
		c.server.unregister <- c.conn
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		ctx, cancel := context.WithTimeout(context.Background(), pongWait)
		_, _, err := c.conn.Read(ctx)
		cancel()
		if err != nil {
			return
		}
	}
}

// writePump pushes queued messages and keeps the connection alive with
// pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
