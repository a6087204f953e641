// Package config loads irccd's INI-like sectioned configuration file
// (spec.md §6.1). No library in the pack models repeatable section
// names with parametric suffixes ([templates.<id>]), so the document
// is scanned by hand, line by line, with a bufio.Scanner.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// General mirrors the [general] section.
type General struct {
	PIDFile    string
	Foreground bool
	User       string
	Group      string
}

// Logs mirrors the [logs] section.
type Logs struct {
	Sink    string // console, syslog, file
	Verbose bool
	Path    string
}

// Server mirrors one [server] section.
type Server struct {
	Name           string
	Hostname       string
	Port           uint16
	IPv4           bool
	IPv6           bool
	SSL            bool
	SSLVerify      bool
	Password       string
	Nickname       string
	Username       string
	Realname       string
	CTCPVersion    string
	CTCPSource     string
	CommandChar    string
	Channels       []ChannelEntry
	AutoRejoin     bool
	JoinInvite     bool
	PingTimeout    time.Duration
	ReconnectTries int
	ReconnectDelay time.Duration
}

// ChannelEntry is one "name[:key]" token from a server's channels key.
type ChannelEntry struct {
	Name string
	Key  string
}

// Rule mirrors one [rule] section.
type Rule struct {
	Servers  []string
	Channels []string
	Origins  []string
	Plugins  []string
	Events   []string
	Action   string
}

// Plugin mirrors one [plugin] section.
type Plugin struct {
	Name string
	Path string
}

// Transport mirrors one [transport] section.
type Transport struct {
	Type        string // unix, ip
	Path        string
	Address     string
	Port        uint16
	SSL         bool
	Certificate string
	Key         string
	Password    string
}

// Hook mirrors one [hook] section.
type Hook struct {
	Name string
	Exec string
}

// Document is the fully parsed configuration file.
type Document struct {
	General   General
	Logs      Logs
	Servers   []Server
	Rules     []Rule
	Plugins   []Plugin
	Templates map[string]map[string]string
	Options   map[string]map[string]string
	Transport []Transport
	Hooks     []Hook

	// Warnings collects unknown-key and unknown-section complaints; config loading itself
	// never aborts on them (spec.md §6.1, "warn but do not abort").
	Warnings []string
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

type rawSection struct {
	kind string // "server", "rule", "plugin", "transport", "hook", "general", "logs", "templates", "options"
	id   string // parametric suffix for templates.<id>/options.<id>
	kv   map[string]string
}

// Parse scans r as a sectioned INI-like document.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{
		Templates: make(map[string]map[string]string),
		Options:   make(map[string]map[string]string),
	}

	var sections []rawSection
	var cur *rawSection

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("config line %d: malformed section header %q", lineNo, line)
			}
			name := line[1 : len(line)-1]
			kind, id := name, ""
			if dot := strings.IndexByte(name, '.'); dot >= 0 {
				kind, id = name[:dot], name[dot+1:]
			}
			sections = append(sections, rawSection{kind: kind, id: id, kv: make(map[string]string)})
			cur = &sections[len(sections)-1]
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("config line %d: key outside any section: %q", lineNo, line)
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, fmt.Errorf("config line %d: missing '=': %q", lineNo, line)
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		cur.kv[key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan config: %w", err)
	}

	for _, s := range sections {
		doc.warnUnknownKeys(s)
		if err := doc.apply(s); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// knownKeys lists the recognized keys per section kind (spec.md §6.1);
// templates/options sections forward arbitrary string maps to plugins
// and have no fixed key set.
var knownKeys = map[string]map[string]bool{
	"general": keySet("pid-file", "foreground", "user", "group"),
	"logs":    keySet("sink", "verbose", "path"),
	"server": keySet("name", "hostname", "port", "ipv4", "ipv6", "ssl", "ssl-verify",
		"password", "nickname", "username", "realname", "ctcp-version", "ctcp-source",
		"command-char", "channels", "auto-rejoin", "join-invite", "ping-timeout",
		"reconnect-tries", "reconnect-delay"),
	"rule":      keySet("servers", "channels", "origins", "plugins", "events", "action"),
	"plugin":    keySet("name", "path"),
	"transport": keySet("type", "path", "address", "port", "ssl", "certificate", "key", "password"),
	"hook":      keySet("name", "exec"),
}

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// warnUnknownKeys appends a warning for every key in s.kv that isn't
// recognized for s.kind, without aborting the parse (spec.md §6.1,
// "Unknown keys warn but do not abort").
func (d *Document) warnUnknownKeys(s rawSection) {
	known, ok := knownKeys[s.kind]
	if !ok {
		return // unknown section kind is reported separately by apply
	}
	for k := range s.kv {
		if !known[k] {
			d.Warnings = append(d.Warnings, fmt.Sprintf("unknown key %q in [%s], ignored", k, s.kind))
		}
	}
}

func (d *Document) apply(s rawSection) error {
	switch s.kind {
	case "general":
		d.General = General{
			PIDFile:    s.kv["pid-file"],
			Foreground: boolOf(s.kv, "foreground"),
			User:       s.kv["user"],
			Group:      s.kv["group"],
		}
	case "logs":
		d.Logs = Logs{
			Sink:    orDefault(s.kv["sink"], "console"),
			Verbose: boolOf(s.kv, "verbose"),
			Path:    s.kv["path"],
		}
	case "server":
		srv := Server{
			Name:           s.kv["name"],
			Hostname:       s.kv["hostname"],
			Port:           uint16(intOf(s.kv, "port", 6667)),
			IPv4:           boolOfDefault(s.kv, "ipv4", true),
			IPv6:           boolOfDefault(s.kv, "ipv6", true),
			SSL:            boolOf(s.kv, "ssl"),
			SSLVerify:      boolOfDefault(s.kv, "ssl-verify", true),
			Password:       s.kv["password"],
			Nickname:       orDefault(s.kv["nickname"], "irccd"),
			Username:       orDefault(s.kv["username"], "irccd"),
			Realname:       orDefault(s.kv["realname"], "irccd"),
			CTCPVersion:    s.kv["ctcp-version"],
			CTCPSource:     s.kv["ctcp-source"],
			CommandChar:    orDefault(s.kv["command-char"], "!"),
			AutoRejoin:     boolOf(s.kv, "auto-rejoin"),
			JoinInvite:     boolOf(s.kv, "join-invite"),
			PingTimeout:    durationOf(s.kv, "ping-timeout", 180*time.Second),
			ReconnectTries: intOf(s.kv, "reconnect-tries", -1),
			ReconnectDelay: durationOf(s.kv, "reconnect-delay", 30*time.Second),
		}
		if s.kv["name"] == "" {
			return fmt.Errorf("invalid_identifier: [server] section missing required 'name'")
		}
		if s.kv["hostname"] == "" {
			return fmt.Errorf("invalid_hostname: [server] %q missing required 'hostname'", srv.Name)
		}
		for _, tok := range strings.Fields(s.kv["channels"]) {
			name, key := tok, ""
			if i := strings.IndexByte(tok, ':'); i >= 0 {
				name, key = tok[:i], tok[i+1:]
			}
			srv.Channels = append(srv.Channels, ChannelEntry{Name: name, Key: key})
		}
		d.Servers = append(d.Servers, srv)
	case "rule":
		d.Rules = append(d.Rules, Rule{
			Servers:  strings.Fields(s.kv["servers"]),
			Channels: strings.Fields(s.kv["channels"]),
			Origins:  strings.Fields(s.kv["origins"]),
			Plugins:  strings.Fields(s.kv["plugins"]),
			Events:   strings.Fields(s.kv["events"]),
			Action:   orDefault(s.kv["action"], "accept"),
		})
	case "plugin":
		if s.kv["name"] == "" {
			return fmt.Errorf("invalid_identifier: [plugin] section missing required 'name'")
		}
		d.Plugins = append(d.Plugins, Plugin{Name: s.kv["name"], Path: s.kv["path"]})
	case "templates":
		kv := make(map[string]string, len(s.kv))
		for k, v := range s.kv {
			kv[k] = v
		}
		d.Templates[s.id] = kv
	case "options":
		kv := make(map[string]string, len(s.kv))
		for k, v := range s.kv {
			kv[k] = v
		}
		d.Options[s.id] = kv
	case "transport":
		d.Transport = append(d.Transport, Transport{
			Type:        orDefault(s.kv["type"], "unix"),
			Path:        s.kv["path"],
			Address:     s.kv["address"],
			Port:        uint16(intOf(s.kv, "port", 0)),
			SSL:         boolOf(s.kv, "ssl"),
			Certificate: s.kv["certificate"],
			Key:         s.kv["key"],
			Password:    s.kv["password"],
		})
	case "hook":
		if s.kv["name"] == "" || s.kv["exec"] == "" {
			return fmt.Errorf("invalid_identifier: [hook] section requires 'name' and 'exec'")
		}
		d.Hooks = append(d.Hooks, Hook{Name: s.kv["name"], Exec: s.kv["exec"]})
	default:
		d.Warnings = append(d.Warnings, fmt.Sprintf("unknown section [%s], ignored", s.kind))
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func boolOf(kv map[string]string, key string) bool {
	return boolOfDefault(kv, key, false)
}

func boolOfDefault(kv map[string]string, key string, def bool) bool {
	v, ok := kv[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func intOf(kv map[string]string, key string, def int) int {
	v, ok := kv[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durationOf(kv map[string]string, key string, def time.Duration) time.Duration {
	v, ok := kv[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(n) * time.Second
}
