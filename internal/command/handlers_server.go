package command

import "time"

func handleServerConnect(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	name := str(req, "name")
	if name == "" {
		return nil, ErrInvalidIdentifier
	}
	hostname := str(req, "hostname")
	if hostname == "" {
		return nil, ErrInvalidHostname
	}
	port, _ := intOf(req, "port")
	if port == 0 {
		port = 6667
	}
	if port < 0 || port > 65535 {
		return nil, ErrInvalidPort
	}

	spec := ServerSpec{
		Name:           name,
		Hostname:       hostname,
		Port:           uint16(port),
		IPv4:           boolOf(req, "ipv4", true),
		IPv6:           boolOf(req, "ipv6", true),
		SSL:            boolOf(req, "ssl", false),
		SSLVerify:      boolOf(req, "sslVerify", true),
		Password:       str(req, "password"),
		Nickname:       orDefault(str(req, "nickname"), "irccd"),
		Username:       orDefault(str(req, "username"), "irccd"),
		Realname:       orDefault(str(req, "realname"), "irccd"),
		CTCPVersion:    str(req, "ctcpVersion"),
		CommandChar:    orDefault(str(req, "commandChar"), "!"),
		PingTimeout:    180 * time.Second,
		ReconnectTries: -1,
		ReconnectDelay: 30 * time.Second,
	}
	if err := bot.ConnectServer(spec); err != nil {
		return nil, err
	}
	return nil, nil
}

func handleServerDisconnect(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	if err := bot.DisconnectServer(str(req, "server")); err != nil {
		return nil, err
	}
	return nil, nil
}

func handleServerReconnect(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	if err := bot.ReconnectServer(str(req, "server")); err != nil {
		return nil, err
	}
	return nil, nil
}

func handleServerInfo(bot Bot, req map[string]interface{}) (map[string]interface{}, error) {
	s, ok := bot.Server(str(req, "server"))
	if !ok {
		return nil, ErrServerNotFound
	}
	return serverInfo(s), nil
}

func handleServerList(bot Bot, _ map[string]interface{}) (map[string]interface{}, error) {
	names := make([]string, 0)
	for _, s := range bot.Servers() {
		names = append(names, s.Name())
	}
	return map[string]interface{}{"list": names}, nil
}

func serverInfo(s ServerOps) map[string]interface{} {
	channels := make([]string, 0)
	for name, ch := range s.Channels() {
		if ch.Joined {
			channels = append(channels, name)
		}
	}
	return map[string]interface{}{
		"name":     s.Name(),
		"nickname": s.CurrentNick(),
		"state":    s.State(),
		"channels": channels,
	}
}

func boolOf(req map[string]interface{}, key string, def bool) bool {
	v, ok := req[key].(bool)
	if !ok {
		return def
	}
	return v
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
