package bot

import (
	"github.com/irccd/irccd/internal/command"
	"github.com/irccd/irccd/internal/server"
)

// serverAdapter narrows *server.Server to the projections (state
// queries and outbound actions) internal/command and internal/plugin
// expect, without either package
// importing internal/server directly.
type serverAdapter struct{ *server.Server }

func (a serverAdapter) State() string { return a.Server.State().String() }

func (a serverAdapter) Channels() map[string]command.ChannelView {
	out := make(map[string]command.ChannelView, len(a.Server.Channels()))
	for name, ch := range a.Server.Channels() {
		out[name] = command.ChannelView{Name: ch.Name, Joined: ch.Joined}
	}
	return out
}
