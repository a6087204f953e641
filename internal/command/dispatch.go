package command

// Handler processes one decoded request against bot and returns the
// response body (without the "command" echo, which Dispatch adds).
type Handler func(bot Bot, req map[string]interface{}) (map[string]interface{}, error)

var table = map[string]Handler{
	"server-connect":    handleServerConnect,
	"server-disconnect": handleServerDisconnect,
	"server-reconnect":  handleServerReconnect,
	"server-info":       handleServerInfo,
	"server-list":       handleServerList,
	"server-message":    serverAction(func(s ServerOps, req map[string]interface{}) { s.Message(str(req, "target"), str(req, "message")) }),
	"server-me":         serverAction(func(s ServerOps, req map[string]interface{}) { s.Me(str(req, "target"), str(req, "message")) }),
	"server-notice":     serverAction(func(s ServerOps, req map[string]interface{}) { s.Notice(str(req, "target"), str(req, "message")) }),
	"server-join":       serverAction(func(s ServerOps, req map[string]interface{}) { s.Join(str(req, "channel"), str(req, "password")) }),
	"server-part":       serverAction(func(s ServerOps, req map[string]interface{}) { s.Part(str(req, "channel"), str(req, "reason")) }),
	"server-kick":       serverAction(func(s ServerOps, req map[string]interface{}) { s.Kick(str(req, "channel"), str(req, "target"), str(req, "reason")) }),
	"server-invite":     serverAction(func(s ServerOps, req map[string]interface{}) { s.Invite(str(req, "channel"), str(req, "target")) }),
	"server-mode":       serverAction(func(s ServerOps, req map[string]interface{}) { s.Mode(str(req, "channel"), str(req, "mode")) }),
	"server-nick":       serverAction(func(s ServerOps, req map[string]interface{}) { s.Nick(str(req, "nickname")) }),
	"server-topic":      serverAction(func(s ServerOps, req map[string]interface{}) { s.Topic(str(req, "channel"), str(req, "topic")) }),

	"rule-add":    handleRuleAdd,
	"rule-edit":   handleRuleEdit,
	"rule-info":   handleRuleInfo,
	"rule-list":   handleRuleList,
	"rule-move":   handleRuleMove,
	"rule-remove": handleRuleRemove,

	"plugin-config":  handlePluginConfig,
	"plugin-info":    handlePluginInfo,
	"plugin-list":    handlePluginList,
	"plugin-load":    handlePluginLoad,
	"plugin-reload":  handlePluginReload,
	"plugin-unload":  handlePluginUnload,
}

// Dispatch looks up req["command"] in the table, invokes its handler,
// and builds the echo-the-command response or error response
// (spec.md §4.7). An unrecognized command name is itself reported as
// an irccd-category invalid_message error.
func Dispatch(bot Bot, req map[string]interface{}) map[string]interface{} {
	name, _ := req["command"].(string)
	h, ok := table[name]
	if !ok {
		return errorResponse(name, ErrInvalidMessage)
	}

	body, err := h(bot, req)
	if err != nil {
		return errorResponse(name, err)
	}
	if body == nil {
		body = map[string]interface{}{}
	}
	body["command"] = name
	return body
}

func errorResponse(name string, err error) map[string]interface{} {
	resp := map[string]interface{}{"command": name}
	if ce, ok := err.(*Error); ok {
		resp["error"] = ce.Code
		resp["errorCategory"] = string(ce.Category)
		return resp
	}
	resp["error"] = ErrInvalidMessage.Code
	resp["errorCategory"] = string(CategoryIrccd)
	return resp
}

func str(req map[string]interface{}, key string) string {
	v, _ := req[key].(string)
	return v
}

func strSlice(req map[string]interface{}, key string) []string {
	raw, ok := req[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intOf(req map[string]interface{}, key string) (int, bool) {
	switch v := req[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func serverAction(fn func(s ServerOps, req map[string]interface{})) Handler {
	return func(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
		s, ok := bot.Server(str(req, "server"))
		if !ok {
			return nil, ErrServerNotFound
		}
		fn(s, req)
		return nil, nil
	}
}
