// Command irccdctl is the control-socket CLI companion to irccd: it
// opens one transport connection, authenticates if needed, sends a
// single command and prints the JSON response (spec.md §6.5).
package main

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/irccd/irccd/internal/transport"
	"github.com/jessevdk/go-flags"
)

// Exit codes per spec.md §6.5.
const (
	exitOK             = 0
	exitGenericFailure = 1
	exitUnknownCommand = 2
	exitServerError    = 3
)

type options struct {
	Config     string `short:"c" long:"config" description:"path to irccd's configuration file"`
	Type       string `short:"t" long:"type" description:"transport type: unix or ip" default:"unix"`
	Host       string `short:"h" long:"host" description:"transport host (ip transports)"`
	Port       uint16 `short:"p" long:"port" description:"transport port (ip transports)"`
	SocketPath string `short:"P" long:"path" description:"transport socket path (unix transports)" default:"/tmp/irccd.sock"`
	Password   string `short:"S" long:"password" description:"transport password"`

	Args struct {
		Command string   `positional-arg-name:"command" required:"yes"`
		Rest    []string `positional-arg-name:"args"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(exitGenericFailure)
	}

	conn, err := dial(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "irccdctl: %v\n", err)
		os.Exit(exitGenericFailure)
	}
	defer conn.Close()

	reader := transport.NewReader(conn)

	// Greeting.
	if _, err := reader.ReadObject(); err != nil {
		fmt.Fprintf(os.Stderr, "irccdctl: failed to read greeting: %v\n", err)
		os.Exit(exitGenericFailure)
	}

	if opts.Password != "" {
		if err := transport.WriteObject(conn, map[string]interface{}{
			"command": "auth", "password": opts.Password,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "irccdctl: %v\n", err)
			os.Exit(exitGenericFailure)
		}
		resp, err := reader.ReadObject()
		if err != nil {
			fmt.Fprintf(os.Stderr, "irccdctl: %v\n", err)
			os.Exit(exitGenericFailure)
		}
		if _, failed := resp["error"]; failed {
			fmt.Fprintf(os.Stderr, "irccdctl: authentication failed: %v\n", resp["errorCategory"])
			os.Exit(exitServerError)
		}
	}

	req := map[string]interface{}{"command": opts.Args.Command}
	for _, kv := range opts.Args.Rest {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		req[k] = inferType(v)
	}

	if err := transport.WriteObject(conn, req); err != nil {
		fmt.Fprintf(os.Stderr, "irccdctl: %v\n", err)
		os.Exit(exitGenericFailure)
	}
	resp, err := reader.ReadObject()
	if err != nil {
		fmt.Fprintf(os.Stderr, "irccdctl: %v\n", err)
		os.Exit(exitGenericFailure)
	}

	body, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(body))

	if code, failed := resp["error"]; failed {
		if n, ok := code.(float64); ok && n == 5 {
			os.Exit(exitUnknownCommand)
		}
		os.Exit(exitServerError)
	}
	os.Exit(exitOK)
}

func dial(opts options) (net.Conn, error) {
	switch opts.Type {
	case "unix":
		return net.Dial("unix", opts.SocketPath)
	case "ip":
		addr := net.JoinHostPort(opts.Host, strconv.Itoa(int(opts.Port)))
		return net.Dial("tcp", addr)
	case "ip+tls", "ip-ssl":
		addr := net.JoinHostPort(opts.Host, strconv.Itoa(int(opts.Port)))
		return tls.Dial("tcp", addr, &tls.Config{})
	default:
		return nil, fmt.Errorf("unknown transport type %q", opts.Type)
	}
}

// inferType converts a "key=value" CLI argument's value into the JSON
// type a command handler expects: numbers and booleans are recognized,
// everything else stays a string.
func inferType(v string) interface{} {
	if v == "true" || v == "false" {
		return v == "true"
	}
	if n, err := strconv.Atoi(v); err == nil {
		return float64(n)
	}
	return v
}
