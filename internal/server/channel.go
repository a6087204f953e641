package server

// Channel is a membership record attached to a server (spec.md §3.1).
type Channel struct {
	Name    string
	Key     string
	Joined  bool
	Members map[string]*Member // lower-cased nick -> member
	Modes   string
	Topic   string
}

// Member is a channel member: a nickname plus its rank modes.
type Member struct {
	Nick  string
	Modes []byte
}

func newChannel(name, key string) *Channel {
	return &Channel{Name: name, Key: key, Members: make(map[string]*Member)}
}

func (c *Channel) addMember(nick string, modes []byte) {
	c.Members[lower(nick)] = &Member{Nick: nick, Modes: modes}
}

func (c *Channel) removeMember(nick string) {
	delete(c.Members, lower(nick))
}

func (c *Channel) renameMember(oldNick, newNick string) {
	m, ok := c.Members[lower(oldNick)]
	if !ok {
		return
	}
	delete(c.Members, lower(oldNick))
	m.Nick = newNick
	c.Members[lower(newNick)] = m
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
