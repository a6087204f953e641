// Package command implements the transport command table and the
// four-category error taxonomy of spec.md §4.7, §7.
package command

import "fmt"

// Category is one of the four error categories a response carries
// alongside its numeric code.
type Category string

const (
	CategoryIrccd  Category = "irccd"
	CategoryServer Category = "server"
	CategoryPlugin Category = "plugin"
	CategoryRule   Category = "rule"
)

// Error is a command-table failure: a stable code plus category,
// distinct from Go's error interface the way the original's
// irc_rule/network_errc enum-plus-category split keeps protocol
// errors separate from internal ones (libcommon/irccd/network_errc.hpp).
type Error struct {
	Code     int
	Category Category
	Name     string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Category, e.Name) }

func newErr(category Category, code int, name string) *Error {
	return &Error{Code: code, Category: category, Name: name}
}

// irccd category (spec.md §7).
var (
	ErrNotIrccd             = newErr(CategoryIrccd, 1, "not_irccd")
	ErrIncompatibleVersion  = newErr(CategoryIrccd, 2, "incompatible_version")
	ErrAuthRequired         = newErr(CategoryIrccd, 3, "auth_required")
	ErrInvalidAuth          = newErr(CategoryIrccd, 4, "invalid_auth")
	ErrInvalidMessage       = newErr(CategoryIrccd, 5, "invalid_message")
	ErrCorruptMessage       = newErr(CategoryIrccd, 6, "corrupt_message")
)

// server category.
var (
	ErrInvalidIdentifier     = newErr(CategoryServer, 10, "invalid_identifier")
	ErrInvalidHostname       = newErr(CategoryServer, 11, "invalid_hostname")
	ErrInvalidPort           = newErr(CategoryServer, 12, "invalid_port")
	ErrInvalidFamily         = newErr(CategoryServer, 13, "invalid_family")
	ErrInvalidNickname       = newErr(CategoryServer, 14, "invalid_nickname")
	ErrInvalidUsername       = newErr(CategoryServer, 15, "invalid_username")
	ErrInvalidRealname       = newErr(CategoryServer, 16, "invalid_realname")
	ErrInvalidCTCPVersion    = newErr(CategoryServer, 17, "invalid_ctcp_version")
	ErrInvalidCommandChar    = newErr(CategoryServer, 18, "invalid_command_char")
	ErrInvalidPassword       = newErr(CategoryServer, 19, "invalid_password")
	ErrInvalidPingTimeout    = newErr(CategoryServer, 20, "invalid_ping_timeout")
	ErrInvalidReconnectTries = newErr(CategoryServer, 21, "invalid_reconnect_tries")
	ErrInvalidReconnectDelay = newErr(CategoryServer, 22, "invalid_reconnect_timeout")
	ErrServerAlreadyExists   = newErr(CategoryServer, 23, "already_exists")
	ErrServerNotFound        = newErr(CategoryServer, 24, "not_found")
	ErrSSLDisabled           = newErr(CategoryServer, 25, "ssl_disabled")
)

// plugin category.
var (
	ErrPluginNotFound      = newErr(CategoryPlugin, 30, "not_found")
	ErrPluginAlreadyExists = newErr(CategoryPlugin, 31, "already_exists")
	ErrPluginExecError     = newErr(CategoryPlugin, 32, "exec_error")
	ErrPluginInvalidOptions = newErr(CategoryPlugin, 33, "invalid_options")
)

// rule category.
var (
	ErrInvalidIndex  = newErr(CategoryRule, 40, "invalid_index")
	ErrInvalidAction = newErr(CategoryRule, 41, "invalid_action")
	ErrInvalidEvent  = newErr(CategoryRule, 42, "invalid_event")
)
