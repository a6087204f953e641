package irc

import "strings"

// PrefixTable maps channel-membership mode letters (o, v, h, ...) to
// their displayed symbol (@, +, %, ...), as negotiated from the
// server's ISUPPORT PREFIX=(ohv)@%+ token. A default table is used
// until ISUPPORT is seen so early JOIN/NAMES replies still parse.
type PrefixTable struct {
	modeToSymbol map[byte]byte
	order        []byte // modes, highest rank first
}

// DefaultPrefixTable mirrors the common ov@+ baseline most networks
// advertise even before ISUPPORT arrives.
func DefaultPrefixTable() PrefixTable {
	return PrefixTable{
		modeToSymbol: map[byte]byte{'o': '@', 'v': '+'},
		order:        []byte{'o', 'v'},
	}
}

// ParsePrefixToken parses an ISUPPORT PREFIX=(ohv)@%+ value.
func ParsePrefixToken(token string) (PrefixTable, bool) {
	if len(token) < 2 || token[0] != '(' {
		return PrefixTable{}, false
	}
	close := strings.IndexByte(token, ')')
	if close < 0 {
		return PrefixTable{}, false
	}
	modes := token[1:close]
	symbols := token[close+1:]
	if len(modes) != len(symbols) {
		return PrefixTable{}, false
	}
	t := PrefixTable{modeToSymbol: make(map[byte]byte, len(modes)), order: []byte(modes)}
	for i := 0; i < len(modes); i++ {
		t.modeToSymbol[modes[i]] = symbols[i]
	}
	return t, true
}

// SplitSymbols strips any leading rank symbols (@, +, %, ...) from a
// NAMES-reply nickname, returning the bare nick and the modes it
// carries, highest rank first.
func (t PrefixTable) SplitSymbols(nick string) (bare string, modes []byte) {
	symToMode := make(map[byte]byte, len(t.modeToSymbol))
	for m, s := range t.modeToSymbol {
		symToMode[s] = m
	}
	i := 0
	for i < len(nick) {
		m, ok := symToMode[nick[i]]
		if !ok {
			break
		}
		modes = append(modes, m)
		i++
	}
	return nick[i:], modes
}

// Rank returns the index of mode in the table's rank order (0 =
// highest), or -1 if the mode isn't a membership mode.
func (t PrefixTable) Rank(mode byte) int {
	for i, m := range t.order {
		if m == mode {
			return i
		}
	}
	return -1
}
