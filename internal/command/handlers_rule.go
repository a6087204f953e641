package command

import (
	"github.com/irccd/irccd/internal/rule"
)

func handleRuleAdd(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	action, err := rule.ParseAction(str(req, "action"))
	if err != nil {
		return nil, ErrInvalidAction
	}
	r, err := rule.New(rule.Fields{
		Servers:  strSlice(req, "servers"),
		Channels: strSlice(req, "channels"),
		Origins:  strSlice(req, "origins"),
		Plugins:  strSlice(req, "plugins"),
		Events:   strSlice(req, "events"),
		Action:   action,
	})
	if err != nil {
		return nil, ErrInvalidEvent
	}

	engine := bot.Rules()
	if idx, ok := intOf(req, "index"); ok {
		engine.Insert(r, idx)
		return nil, nil
	}
	engine.Add(r)
	return nil, nil
}

func handleRuleEdit(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	idx, ok := intOf(req, "index")
	if !ok {
		return nil, ErrInvalidIndex
	}

	op := rule.FieldOp{
		AddServers:     strSlice(req, "add-servers"),
		RemoveServers:  strSlice(req, "remove-servers"),
		AddChannels:    strSlice(req, "add-channels"),
		RemoveChannels: strSlice(req, "remove-channels"),
		AddOrigins:     strSlice(req, "add-origins"),
		RemoveOrigins:  strSlice(req, "remove-origins"),
		AddPlugins:     strSlice(req, "add-plugins"),
		RemovePlugins:  strSlice(req, "remove-plugins"),
		AddEvents:      strSlice(req, "add-events"),
		RemoveEvents:   strSlice(req, "remove-events"),
	}
	if a, present := req["action"]; present {
		action, err := rule.ParseAction(a.(string))
		if err != nil {
			return nil, ErrInvalidAction
		}
		op.SetAction = &action
	}

	if err := bot.Rules().Edit(idx, op); err != nil {
		return nil, mapRuleErr(err)
	}
	return nil, nil
}

func handleRuleInfo(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	idx, ok := intOf(req, "index")
	if !ok {
		return nil, ErrInvalidIndex
	}
	r, err := bot.Rules().Get(idx)
	if err != nil {
		return nil, mapRuleErr(err)
	}
	return ruleFields(r), nil
}

func handleRuleList(bot Bot, _ map[string]interface{}) (map[string]interface{}, error) {
	rules := bot.Rules().List()
	out := make([]map[string]interface{}, 0, len(rules))
	for _, r := range rules {
		out = append(out, ruleFields(r))
	}
	return map[string]interface{}{"list": out}, nil
}

func handleRuleMove(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	from, ok := intOf(req, "from")
	if !ok {
		return nil, ErrInvalidIndex
	}
	to, ok := intOf(req, "to")
	if !ok {
		return nil, ErrInvalidIndex
	}
	if err := bot.Rules().Move(from, to); err != nil {
		return nil, mapRuleErr(err)
	}
	return nil, nil
}

func handleRuleRemove(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	idx, ok := intOf(req, "index")
	if !ok {
		return nil, ErrInvalidIndex
	}
	if err := bot.Rules().Remove(idx); err != nil {
		return nil, mapRuleErr(err)
	}
	return nil, nil
}

func ruleFields(r rule.Rule) map[string]interface{} {
	f := r.Fields()
	return map[string]interface{}{
		"servers":  f.Servers,
		"channels": f.Channels,
		"origins":  f.Origins,
		"plugins":  f.Plugins,
		"events":   f.Events,
		"action":   f.Action.String(),
	}
}

// mapRuleErr recovers the rule package's generic errors (which encode
// their name as the message prefix, e.g. "invalid_index: 4") back onto
// the command table's typed taxonomy.
func mapRuleErr(err error) error {
	msg := err.Error()
	switch {
	case hasPrefix(msg, "invalid_index"):
		return ErrInvalidIndex
	case hasPrefix(msg, "invalid_event"):
		return ErrInvalidEvent
	case hasPrefix(msg, "invalid_action"):
		return ErrInvalidAction
	default:
		return ErrInvalidIndex
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
