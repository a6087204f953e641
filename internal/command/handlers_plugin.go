package command

import "github.com/irccd/irccd/internal/plugin"

func handlePluginConfig(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	id := str(req, "plugin")
	p, ok := bot.PluginManager().Get(id)
	if !ok {
		return nil, ErrPluginNotFound
	}

	raw, setting := req["options"].(map[string]interface{})
	if !setting {
		out := make(map[string]interface{}, len(p.Options))
		for k, v := range p.Options {
			out[k] = v
		}
		return map[string]interface{}{"options": out}, nil
	}

	opts := make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, ErrPluginInvalidOptions
		}
		opts[k] = s
	}
	if err := bot.PluginManager().SetOptions(id, opts); err != nil {
		return nil, ErrPluginNotFound
	}
	return nil, nil
}

func handlePluginInfo(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	p, ok := bot.PluginManager().Get(str(req, "plugin"))
	if !ok {
		return nil, ErrPluginNotFound
	}
	return pluginInfo(p.ID, p.Meta), nil
}

func handlePluginList(bot Bot, _ map[string]interface{}) (map[string]interface{}, error) {
	plugins := bot.PluginManager().List()
	out := make([]string, 0, len(plugins))
	for _, p := range plugins {
		out = append(out, p.ID)
	}
	return map[string]interface{}{"list": out}, nil
}

func handlePluginLoad(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	if err := bot.LoadPlugin(str(req, "plugin"), str(req, "path")); err != nil {
		return nil, mapPluginErr(err)
	}
	return nil, nil
}

func handlePluginReload(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	if err := bot.ReloadPlugin(str(req, "plugin")); err != nil {
		return nil, mapPluginErr(err)
	}
	return nil, nil
}

func handlePluginUnload(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	if err := bot.UnloadPlugin(str(req, "plugin")); err != nil {
		return nil, mapPluginErr(err)
	}
	return nil, nil
}

// mapPluginErr recovers internal/plugin's generic, prefix-encoded
// errors (e.g. "already_exists: plugin %q") back onto the command
// table's typed taxonomy (spec.md §4.7 plugin-* error set).
func mapPluginErr(err error) error {
	msg := err.Error()
	switch {
	case hasPrefix(msg, "already_exists"):
		return ErrPluginAlreadyExists
	case hasPrefix(msg, "not_found"):
		return ErrPluginNotFound
	case hasPrefix(msg, "exec_error"):
		return ErrPluginExecError
	default:
		return ErrPluginExecError
	}
}

func pluginInfo(id string, m plugin.Metadata) map[string]interface{} {
	return map[string]interface{}{
		"plugin":  id,
		"author":  m.Author,
		"license": m.License,
		"summary": m.Summary,
		"version": m.Version,
	}
}
