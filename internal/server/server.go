// Package server implements the per-server IRC connection state
// machine: connect, handshake, reconnect with backoff, message
// framing and the outbound command queue (spec.md §4.1).
package server

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/irccd/irccd/internal/event"
	"github.com/irccd/irccd/internal/irc"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// EventFunc receives every event this server synthesizes. The bot
// installs one to route events into rules, plugins and hooks.
type EventFunc func(event.Event)

// Server is one named IRC connection and its runtime state.
type Server struct {
	cfg Config
	log zerolog.Logger

	mu          sync.RWMutex
	state       State
	currentNick string
	channels    map[string]*Channel // lower(name) -> channel
	prefixes    irc.PrefixTable
	conn        net.Conn
	writer      *bufio.Writer

	reconnectLeft  int
	reconnectTimer *time.Timer
	dead           bool

	outbound chan string
	limiter  *rate.Limiter

	onEvent EventFunc

	cancel     context.CancelFunc
	lastActive time.Time

	whois map[string]*whoisBuilder
}

// New constructs a Server in the Disconnected state. onEvent is
// called for every synthesized event; it must not block.
func New(cfg Config, log zerolog.Logger, onEvent EventFunc) *Server {
	cfg = cfg.WithDefaults()
	s := &Server{
		cfg:           cfg,
		log:           log,
		state:         Disconnected,
		currentNick:   cfg.Nickname,
		channels:      make(map[string]*Channel),
		prefixes:      irc.DefaultPrefixTable(),
		reconnectLeft: cfg.ReconnectTries,
		outbound:      make(chan string, 256),
		limiter:       rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		onEvent:       onEvent,
		whois:         make(map[string]*whoisBuilder),
	}
	return s
}

// Name returns the server's identifier.
func (s *Server) Name() string { return s.cfg.Name }

// CommandChar returns the server's configured command prefix, used by
// the plugin manager's command-detection pass (spec.md §4.5).
func (s *Server) CommandChar() string { return s.cfg.CommandChar }

// State returns the current connection state.
func (s *Server) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentNick returns the bot's current effective nickname on this server.
func (s *Server) CurrentNick() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentNick
}

// Dead reports whether the reconnect budget has been exhausted and
// the bot should drop this server from its active set.
func (s *Server) Dead() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dead
}

func (s *Server) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Connect dials the server, optionally over TLS, and starts the
// read/write/ping goroutines. It returns once the TCP/TLS handshake
// finishes; the IRC registration handshake continues asynchronously.
func (s *Server) Connect(ctx context.Context) error {
	if s.State() != Disconnected {
		return fmt.Errorf("server %s: connect called while %s", s.cfg.Name, s.State())
	}
	s.setState(Connecting)

	network := "tcp"
	addr := fmt.Sprintf("%s:%d", s.cfg.Hostname, s.cfg.Port)

	dialer := &net.Dialer{Timeout: 30 * time.Second}
	var conn net.Conn
	var err error
	if s.cfg.SSL {
		tlsConf := &tls.Config{InsecureSkipVerify: !s.cfg.SSLVerify, ServerName: s.cfg.Hostname}
		conn, err = tls.DialWithDialer(dialer, network, addr, tlsConf)
	} else {
		conn, err = dialer.DialContext(ctx, network, addr)
	}
	if err != nil {
		s.setState(Disconnected)
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.conn = conn
	s.writer = bufio.NewWriter(conn)
	s.cancel = cancel
	s.lastActive = time.Now()
	s.mu.Unlock()

	s.setState(Handshaking)
	s.sendRegistration()

	go s.readLoop(runCtx)
	go s.writeLoop(runCtx)
	go s.pingLoop(runCtx)

	return nil
}

func (s *Server) sendRegistration() {
	if s.cfg.Password != "" {
		s.rawf("PASS %s", s.cfg.Password)
	}
	s.rawf("NICK %s", s.cfg.Nickname)
	s.rawf("USER %s 0 * :%s", s.cfg.Username, s.cfg.Realname)
}

// Disconnect sends QUIT and transitions to Disconnected without
// scheduling a reconnect (spec.md §4.1, "Any -> Disconnecting"). Any
// reconnect timer left pending from an earlier connection loss is
// cancelled, so an operator-requested disconnect cannot be undone by
// a reconnect that was already in flight (spec.md §5, "disconnecting
// a server cancels its pending reconnect timer").
func (s *Server) Disconnect(reason string) {
	s.setState(Disconnecting)
	s.rawf("QUIT :%s", reason)
	s.cancelReconnect()
	s.teardown(false)
}

func (s *Server) cancelReconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
}

func (s *Server) teardown(reconnect bool) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = nil
	s.mu.Unlock()

	s.setState(Disconnected)

	if !reconnect {
		return
	}
	s.maybeScheduleReconnect()
}

func (s *Server) maybeScheduleReconnect() {
	s.mu.Lock()
	tries := s.reconnectLeft
	s.mu.Unlock()

	if tries == 0 {
		s.mu.Lock()
		s.dead = true
		s.mu.Unlock()
		s.log.Warn().Str("server", s.cfg.Name).Msg("reconnect budget exhausted, server is dead")
		return
	}
	if tries > 0 {
		s.mu.Lock()
		s.reconnectLeft--
		s.mu.Unlock()
	}

	timer := time.AfterFunc(s.cfg.ReconnectDelay, func() {
		if s.State() != Disconnected {
			return
		}
		if err := s.Connect(context.Background()); err != nil {
			s.log.Warn().Err(err).Str("server", s.cfg.Name).Msg("reconnect attempt failed")
			s.maybeScheduleReconnect()
		}
	})
	s.mu.Lock()
	s.reconnectTimer = timer
	s.mu.Unlock()
}

// Enqueue submits a raw IRC line (without CRLF) for transmission,
// preserving FIFO submit order per server (spec.md §3.3).
func (s *Server) Enqueue(line string) {
	select {
	case s.outbound <- line:
	default:
		s.log.Warn().Str("server", s.cfg.Name).Msg("outbound queue full, dropping line")
	}
}

func (s *Server) rawf(format string, args ...interface{}) {
	s.Enqueue(fmt.Sprintf(format, args...))
}

func (s *Server) emit(e event.Event) {
	if s.onEvent != nil {
		s.onEvent(e)
	}
}

// channel looks up (and lazily creates) a channel record by name.
func (s *Server) channel(name string) *Channel {
	key := strings.ToLower(name)
	c, ok := s.channels[key]
	if !ok {
		c = newChannel(name, "")
		s.channels[key] = c
	}
	return c
}

// Channels returns a copy of every tracked channel record, joined or
// not; the copies share their Members maps with the live records.
func (s *Server) Channels() map[string]*Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Channel, len(s.channels))
	for k, v := range s.channels {
		cp := *v
		out[k] = &cp
	}
	return out
}
