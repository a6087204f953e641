package irc

import "testing"

func TestSplitHostmask(t *testing.T) {
	cases := []struct {
		in   string
		want Hostmask
	}{
		{"alice!~al@host.example.org", Hostmask{Nick: "alice", User: "~al", Host: "host.example.org"}},
		{"irc.example.org", Hostmask{Nick: "irc.example.org"}},
		{"bob!bob@localhost", Hostmask{Nick: "bob", User: "bob", Host: "localhost"}},
	}
	for _, c := range cases {
		got := SplitHostmask(c.in)
		if got != c.want {
			t.Errorf("SplitHostmask(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestIsCTCP(t *testing.T) {
	payload, ok := IsCTCP("\x01ACTION waves\x01")
	if !ok || payload != "ACTION waves" {
		t.Fatalf("IsCTCP = %q, %v", payload, ok)
	}
	if _, ok := IsCTCP("hello"); ok {
		t.Fatalf("IsCTCP(hello) should be false")
	}
}

func TestCTCPCommand(t *testing.T) {
	verb, text := CTCPCommand("ACTION waves hello")
	if verb != "ACTION" || text != "waves hello" {
		t.Fatalf("got verb=%q text=%q", verb, text)
	}
}

func TestIsChannel(t *testing.T) {
	if !IsChannel("#general", "") {
		t.Fatal("expected #general to be a channel")
	}
	if IsChannel("alice", "") {
		t.Fatal("expected alice not to be a channel")
	}
}

func TestParsePrefixToken(t *testing.T) {
	table, ok := ParsePrefixToken("(ohv)@%+")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	bare, modes := table.SplitSymbols("@alice")
	if bare != "alice" || len(modes) != 1 || modes[0] != 'o' {
		t.Fatalf("got bare=%q modes=%v", bare, modes)
	}
	if table.Rank('o') != 0 || table.Rank('v') != 2 {
		t.Fatalf("unexpected ranks: o=%d v=%d", table.Rank('o'), table.Rank('v'))
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	line, err := Encode("PRIVMSG", "#general", "hello world")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	parsed, err := ParseLine(line)
	if err != nil {
		t.Fatalf("ParseLine(%q): %v", line, err)
	}
	if parsed.Command != "PRIVMSG" || len(parsed.Params) != 2 || parsed.Params[1] != "hello world" {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
}
