package plugin

import "github.com/irccd/irccd/internal/event"

// Metadata is a plugin's optional <id>.meta.yaml sidecar, a small
// struct decoded with yaml.v3, describing the plugin for listings.
type Metadata struct {
	Name    string `yaml:"name"`
	Author  string `yaml:"author"`
	License string `yaml:"license"`
	Summary string `yaml:"summary"`
	Version string `yaml:"version"`
}

// Handler is what a loader produces: the loaded plugin's lifecycle
// and event hooks (spec.md §4.3).
type Handler interface {
	HandleLoad(bot Capabilities) error
	HandleReload(bot Capabilities) error
	HandleUnload(bot Capabilities)
	Handle(bot Capabilities, ev event.Event) error
}

// Loader recognizes and instantiates plugins by id/path (spec.md §4.4,
// "Plugin loaders are variants").
type Loader interface {
	// Open attempts to produce a Handler for id given an optional path
	// hint. ok is false when this loader doesn't recognize the plugin,
	// signalling the manager to try the next loader in its list.
	Open(id, path string) (h Handler, ok bool, err error)
}

// Plugin is one loaded plugin: its handler plus the id, options and
// templates the manager tracks on its behalf.
type Plugin struct {
	ID        string
	Path      string
	Meta      Metadata
	Handler   Handler
	Options   map[string]string
	Templates map[string]string
}
