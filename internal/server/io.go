package server

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/irccd/irccd/internal/event"
	"github.com/irccd/irccd/internal/irc"
)

func (s *Server) readLoop(ctx context.Context) {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	scanner.Split(scanCRLFLines)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		raw := strings.TrimRight(scanner.Text(), " \t")
		if raw == "" {
			continue
		}
		s.mu.Lock()
		s.lastActive = time.Now()
		s.mu.Unlock()

		line, err := irc.ParseLine(raw)
		if err != nil {
			s.log.Warn().Err(err).Str("server", s.cfg.Name).Str("line", raw).Msg("malformed line dropped")
			continue
		}
		s.dispatch(line)
	}

	// Read loop ended: either EOF (remote close) or a socket error.
	if s.State() != Disconnecting {
		s.onDisconnected("connection lost")
	}
}

// scanCRLFLines is a bufio.SplitFunc that frames on \r\n but tolerates
// a bare \n and arbitrary leading blank lines between messages
// (spec.md §4.1's codec read-path tolerance).
func scanCRLFLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := indexNewline(data); i >= 0 {
		end := i
		if end > 0 && data[end-1] == '\r' {
			end--
		}
		return i + 1, data[:end], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func indexNewline(data []byte) int {
	for i, b := range data {
		if b == '\n' {
			return i
		}
	}
	return -1
}

func (s *Server) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-s.outbound:
			if !ok {
				return
			}
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
			s.mu.RLock()
			w := s.writer
			s.mu.RUnlock()
			if w == nil {
				return
			}
			if _, err := w.WriteString(line + "\r\n"); err != nil {
				s.onDisconnected("write error: " + err.Error())
				return
			}
			if err := w.Flush(); err != nil {
				s.onDisconnected("flush error: " + err.Error())
				return
			}
		}
	}
}

func (s *Server) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PingTimeout / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			idle := time.Since(s.lastActive)
			s.mu.RUnlock()
			if idle > s.cfg.PingTimeout {
				s.onDisconnected("ping timeout")
				return
			}
			if idle > s.cfg.PingTimeout/3 {
				s.rawf("PING :%s", s.cfg.Name)
			}
		}
	}
}

func (s *Server) onDisconnected(reason string) {
	if s.State() == Disconnected {
		return
	}
	wasConnected := s.State() == Connected
	s.teardown(true)
	if wasConnected {
		s.emit(event.NewDisconnect(s.cfg.Name))
	}
	s.log.Info().Str("server", s.cfg.Name).Str("reason", reason).Msg("disconnected")
}

// dispatch routes one parsed line to the event-synthesis table
// (spec.md §4.1's "event synthesis").
func (s *Server) dispatch(line irc.Line) {
	switch line.Command {
	case "PING":
		s.rawf("PONG :%s", firstParam(line.Params))
	case "PONG":
		// lastActive already updated by caller.
	case "001":
		s.onWelcome(line)
	case "PRIVMSG":
		s.onPrivmsgOrNotice(line, false)
	case "NOTICE":
		s.onPrivmsgOrNotice(line, true)
	case "JOIN":
		s.onJoin(line)
	case "PART":
		s.onPart(line)
	case "KICK":
		s.onKick(line)
	case "QUIT":
		s.onQuit(line)
	case "NICK":
		s.onNick(line)
	case "TOPIC":
		s.onTopic(line)
	case "MODE":
		s.onMode(line)
	case "INVITE":
		s.onInvite(line)
	case "005":
		s.onISupport(line)
	case "353":
		s.onNamesReply(line)
	case "366":
		s.onNamesEnd(line)
	case "311":
		s.onWhoisUser(line)
	case "319":
		s.onWhoisChannels(line)
	case "318":
		s.onWhoisEnd(line)
	default:
	}
}

func firstParam(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return params[0]
}

func lastParam(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return params[len(params)-1]
}

