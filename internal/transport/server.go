package transport

import (
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Protocol version advertised in the greeting object.
const (
	Major = 3
	Minor = 0
	Patch = 0
)

// CommandHandler dispatches one decoded request to the command table
// and returns the response object to write back. It is supplied by
// the composition root (internal/bot) so this package never imports
// internal/command, keeping the dependency one-directional.
type CommandHandler func(req map[string]interface{}) map[string]interface{}

// Config is one [transport] listener definition (spec.md §6.1).
type Config struct {
	Type        string // "unix" or "ip"
	Path        string
	Address     string
	Port        uint16
	SSL         bool
	Certificate string
	Key         string
	Password    string
}

// Listen opens the net.Listener a Config describes.
func Listen(cfg Config) (net.Listener, error) {
	switch cfg.Type {
	case "unix":
		os.Remove(cfg.Path)
		return net.Listen("unix", cfg.Path)
	case "ip":
		addr := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
		if !cfg.SSL {
			return net.Listen("tcp", addr)
		}
		cert, err := tls.LoadX509KeyPair(cfg.Certificate, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("load transport certificate: %w", err)
		}
		return tls.Listen("tcp", addr, &tls.Config{Certificates: []tls.Certificate{cert}})
	default:
		return nil, fmt.Errorf("invalid transport type %q", cfg.Type)
	}
}

// Server accepts connections on a listener and runs one Client per
// connection, tracking them for event broadcast (spec.md §4.6, §4.8).
type Server struct {
	listener net.Listener
	password string
	handler  CommandHandler
	log      zerolog.Logger

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewServer wraps an already-open listener.
func NewServer(l net.Listener, password string, handler CommandHandler, log zerolog.Logger) *Server {
	return &Server{listener: l, password: password, handler: handler, log: log, clients: make(map[*Client]struct{})}
}

// Serve accepts connections until the listener is closed.
func (s *Server) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		c := newClient(conn, s.password, s.handler, s.log)
		s.track(c)
		go func() {
			c.run()
			s.untrack(c)
		}()
	}
}

// Close stops accepting and disconnects every tracked client.
func (s *Server) Close() {
	s.listener.Close()
	s.mu.Lock()
	clients := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		c.Close()
	}
}

// Broadcast enqueues obj to every currently tracked client, whether or
// not it has authenticated (spec.md §4.8 step 1).
func (s *Server) Broadcast(obj map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.enqueue(obj)
	}
}

func (s *Server) track(c *Client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(c *Client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}
