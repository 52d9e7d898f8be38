package connectivity

import "testing"

func TestMonitor_SubscribeInvokesImmediately(t *testing.T) {
	m := NewMonitor(true)

	var calls []bool
	m.Subscribe(func(online bool) { calls = append(calls, online) })

	if len(calls) != 1 || calls[0] != true {
		t.Fatalf("expected immediate invoke with true, got %v", calls)
	}
}

func TestMonitor_NotifiesOnTransitionOnly(t *testing.T) {
	m := NewMonitor(true)

	var calls []bool
	m.Subscribe(func(online bool) { calls = append(calls, online) })

	m.SetOnline(true) // no transition
	m.SetOnline(false)
	m.SetOnline(false) // no transition
	m.SetOnline(true)

	want := []bool{true, false, true}
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %d: %v", len(want), len(calls), calls)
	}
	for i, v := range want {
		if calls[i] != v {
			t.Errorf("call %d: expected %v, got %v", i, v, calls[i])
		}
	}
}

func TestMonitor_OnlineReflectsState(t *testing.T) {
	m := NewMonitor(false)
	if m.Online() {
		t.Error("expected initial state offline")
	}
	m.SetOnline(true)
	if !m.Online() {
		t.Error("expected online after SetOnline(true)")
	}
}

func TestMonitor_MultipleSubscribers(t *testing.T) {
	m := NewMonitor(true)

	a, b := 0, 0
	m.Subscribe(func(bool) { a++ })
	m.Subscribe(func(bool) { b++ })

	m.SetOnline(false)

	if a != 2 || b != 2 {
		t.Errorf("expected both subscribers notified on transition, got a=%d b=%d", a, b)
	}
}
