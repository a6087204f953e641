package transport

import (
	"net"

	"github.com/rs/zerolog"
)

// Error codes from the "irccd" category of the command-table taxonomy
// (spec.md §7) that the framing layer itself can raise, before a
// request ever reaches the command dispatch table.
const (
	errAuthRequired = 3
	errInvalidAuth  = 4
)

// Client is one connected control-socket session: a reader that
// processes requests in arrival order and a writer that drains a
// single outbound queue shared by command responses and broadcasts,
// preserving their relative enqueue order (spec.md §5).
type Client struct {
	conn    net.Conn
	log     zerolog.Logger
	handler CommandHandler

	password string
	authed   bool

	outbound chan map[string]interface{}
	done     chan struct{}
}

func newClient(conn net.Conn, password string, handler CommandHandler, log zerolog.Logger) *Client {
	return &Client{
		conn:     conn,
		log:      log,
		handler:  handler,
		password: password,
		authed:   password == "",
		outbound: make(chan map[string]interface{}, 64),
		done:     make(chan struct{}),
	}
}

func (c *Client) run() {
	go c.writeLoop()
	defer close(c.done)
	defer c.conn.Close()

	c.enqueue(map[string]interface{}{"program": "irccd", "major": Major, "minor": Minor, "patch": Patch})

	reader := NewReader(c.conn)
	for {
		req, err := reader.ReadObject()
		if err != nil {
			return
		}

		if !c.authed {
			cmd, _ := req["command"].(string)
			if cmd != "auth" {
				// Any command attempted before authenticating is refused
				// but the connection stays open so the client can retry
				// with auth (spec.md §8 scenario 6).
				c.enqueue(map[string]interface{}{"command": cmd, "error": errAuthRequired, "errorCategory": "irccd"})
				continue
			}
			if pw, _ := req["password"].(string); pw != c.password {
				c.enqueue(map[string]interface{}{"command": "auth", "error": errInvalidAuth, "errorCategory": "irccd"})
				return
			}
			c.authed = true
			c.enqueue(map[string]interface{}{"command": "auth"})
			continue
		}

		resp := c.handler(req)
		c.enqueue(resp)
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case obj, ok := <-c.outbound:
			if !ok {
				return
			}
			if err := WriteObject(c.conn, obj); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) enqueue(obj map[string]interface{}) {
	select {
	case c.outbound <- obj:
	default:
		c.log.Warn().Msg("transport client outbound queue full, dropping message")
	}
}

// Close drops the connection and its outbound queue.
func (c *Client) Close() {
	c.conn.Close()
}
