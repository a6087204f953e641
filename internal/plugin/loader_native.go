//go:build linux || darwin

package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"strings"

	"gopkg.in/yaml.v3"
)

// NativeLoader loads plugins compiled as Go shared objects (`go build
// -buildmode=plugin`). It is the only loader type this implementation
// carries (spec.md §4.4 permits omitting a scripting-runtime loader
// "provided at least one loader type is available").
type NativeLoader struct {
	// SearchDirs are tried, in order, for "<dir>/<id>.so" when Open is
	// called without an explicit path.
	SearchDirs []string
}

// Open loads "<path>" (or the first "<dir>/<id>.so" match) and looks
// up its exported "New" symbol, a `func() plugin.Handler`-shaped
// constructor. No file to open, or an object without a "New" symbol,
// means this loader doesn't recognize it, so Open returns ok=false
// rather than an error, letting the manager fall through to another
// loader; a "New" with any other signature is an exec_error.
func (l NativeLoader) Open(id, path string) (Handler, bool, error) {
	resolved := path
	if resolved == "" {
		for _, dir := range l.SearchDirs {
			candidate := filepath.Join(dir, id+".so")
			if _, err := os.Stat(candidate); err == nil {
				resolved = candidate
				break
			}
		}
	}
	if resolved == "" {
		return nil, false, nil
	}

	lib, err := plugin.Open(resolved)
	if err != nil {
		return nil, false, fmt.Errorf("exec_error: open plugin %s: %w", resolved, err)
	}

	sym, err := lib.Lookup("New")
	if err != nil {
		return nil, false, nil
	}
	ctor, ok := sym.(func() Handler)
	if !ok {
		return nil, false, fmt.Errorf("exec_error: plugin %s: New has the wrong signature", resolved)
	}
	return ctor(), true, nil
}

// LoadMetadata reads "<id>.meta.yaml" next to path, if present. A
// missing sidecar is not an error: metadata is optional decoration.
func LoadMetadata(path string) (Metadata, error) {
	sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + ".meta.yaml"
	data, err := os.ReadFile(sidecar)
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, nil
		}
		return Metadata{}, fmt.Errorf("read plugin metadata: %w", err)
	}
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("parse plugin metadata: %w", err)
	}
	return m, nil
}
