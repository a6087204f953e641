package rule

import "testing"

func mustRule(t *testing.T, f Fields) Rule {
	t.Helper()
	r, err := New(f)
	if err != nil {
		t.Fatalf("New(%+v): %v", f, err)
	}
	return r
}

func TestSolveDefaultAccept(t *testing.T) {
	e := NewEngine()
	if !e.Solve("any", "#any", "nick", "plugin", "onMessage") {
		t.Fatal("empty rule list should accept everything")
	}
}

func TestSolveLastMatchWins(t *testing.T) {
	accept := mustRule(t, Fields{Events: []string{"onCommand"}, Action: Accept})
	drop := mustRule(t, Fields{Events: []string{"onCommand"}, Action: Drop})

	e := NewEngine()
	e.Add(drop)
	e.Add(accept)
	if !e.Solve("s", "#c", "o", "p", "onCommand") {
		t.Fatal("drop then accept should resolve to accept")
	}

	e2 := NewEngine()
	e2.Add(accept)
	e2.Add(drop)
	if e2.Solve("s", "#c", "o", "p", "onCommand") {
		t.Fatal("accept then drop should resolve to drop")
	}
}

func TestSolveRuleOverlapScenario(t *testing.T) {
	r1 := mustRule(t, Fields{Channels: []string{"#staff"}, Events: []string{"onCommand"}, Action: Drop})
	r2 := mustRule(t, Fields{Servers: []string{"unsafe"}, Channels: []string{"#staff"}, Events: []string{"onCommand"}, Action: Accept})

	e := NewEngine()
	e.Add(r1)
	e.Add(r2)

	if !e.Solve("unsafe", "#staff", "alice", "p", "onCommand") {
		t.Error("unsafe server + onCommand should be accepted")
	}
	if e.Solve("freenode", "#staff", "alice", "p", "onCommand") {
		t.Error("freenode server + onCommand should be dropped")
	}
	if !e.Solve("freenode", "#staff", "alice", "p", "onMessage") {
		t.Error("freenode server + onMessage should be accepted (no rule matches)")
	}
}

func TestInvalidEventRejected(t *testing.T) {
	_, err := New(Fields{Events: []string{"onBogus"}})
	if err == nil {
		t.Fatal("expected invalid_event error")
	}
}

func TestCaseInsensitiveMatch(t *testing.T) {
	r := mustRule(t, Fields{Servers: []string{"FreeNode"}, Action: Drop})
	if !r.Match("freenode", "", "", "", "") {
		t.Fatal("server match should be case-insensitive")
	}
}

func TestMoveScenario(t *testing.T) {
	e := NewEngine()
	for _, name := range []string{"s0", "s1", "s2"} {
		e.Add(mustRule(t, Fields{Servers: []string{name}}))
	}

	if err := e.Move(2, 0); err != nil {
		t.Fatal(err)
	}
	wantOrder(t, e, []string{"s2", "s0", "s1"})

	if err := e.Move(0, 123); err != nil {
		t.Fatal(err)
	}
	wantOrder(t, e, []string{"s0", "s1", "s2"})
}

func wantOrder(t *testing.T, e *Engine, want []string) {
	t.Helper()
	got := e.List()
	if len(got) != len(want) {
		t.Fatalf("got %d rules, want %d", len(got), len(want))
	}
	for i, r := range got {
		servers := r.Fields().Servers
		if len(servers) != 1 || servers[0] != want[i] {
			t.Errorf("index %d: got %v, want [%s]", i, servers, want[i])
		}
	}
}

func TestRemoveInvalidIndex(t *testing.T) {
	e := NewEngine()
	if err := e.Remove(0); err == nil {
		t.Fatal("expected invalid_index error")
	}
}

func TestEditAtomicFailureLeavesRuleUnchanged(t *testing.T) {
	e := NewEngine()
	e.Add(mustRule(t, Fields{Servers: []string{"s1"}, Events: []string{"onJoin"}}))

	err := e.Edit(0, FieldOp{AddEvents: []string{"onBogus"}})
	if err == nil {
		t.Fatal("expected invalid_event error")
	}

	r, _ := e.Get(0)
	f := r.Fields()
	if len(f.Events) != 1 || f.Events[0] != "onjoin" {
		t.Fatalf("rule should be unchanged after failed edit, got %+v", f)
	}
}

func TestEditAddRemoveFields(t *testing.T) {
	e := NewEngine()
	e.Add(mustRule(t, Fields{Servers: []string{"old-s"}, Events: []string{"onCommand"}, Action: Drop}))

	accept := Accept
	err := e.Edit(0, FieldOp{
		AddServers:   []string{"new-s"},
		RemoveEvents: []string{"onCommand"},
		SetAction:    &accept,
	})
	if err != nil {
		t.Fatal(err)
	}
	r, _ := e.Get(0)
	f := r.Fields()
	if len(f.Events) != 0 {
		t.Errorf("expected events cleared, got %v", f.Events)
	}
	if f.Action != Accept {
		t.Errorf("expected action accept, got %v", f.Action)
	}
	found := false
	for _, s := range f.Servers {
		if s == "new-s" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected new-s among servers, got %v", f.Servers)
	}
}
