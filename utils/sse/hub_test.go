package sse

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestHubPublishReachesSubscribers(t *testing.T) {
	hub := NewHub()
	a, unsubA := hub.Subscribe("config")
	b, unsubB := hub.Subscribe("config")
	defer unsubA()
	defer unsubB()

	if n := hub.Publish("config", Message{Type: "config", Data: []byte(`{"x":1}`)}); n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}

	for _, ch := range []<-chan Message{a, b} {
		msg := <-ch
		if string(msg.Data) != `{"x":1}` {
			t.Fatalf("unexpected payload %q", msg.Data)
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe("config")
	unsub()
	unsub()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
	if hub.Subscribers("config") != 0 {
		t.Fatal("expected no subscribers after unsubscribe")
	}
	if n := hub.Publish("config", Message{}); n != 0 {
		t.Fatalf("expected no deliveries, got %d", n)
	}
}

func TestHubSkipsFullSubscriber(t *testing.T) {
	hub := NewHub()
	hub.buffer = 1
	_, unsub := hub.Subscribe("config")
	defer unsub()

	if n := hub.Publish("config", Message{}); n != 1 {
		t.Fatalf("expected first publish delivered, got %d", n)
	}
	if n := hub.Publish("config", Message{}); n != 0 {
		t.Fatalf("expected full subscriber skipped, got %d", n)
	}
}

func TestSendConfigFormat(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	if err := SendConfig(w, "7", map[string]bool{"maintenanceMode": true}); err != nil {
		t.Fatalf("SendConfig failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"id: 7\n", "event: config\n", `data: {"maintenanceMode":true}` + "\n\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output %q", want, out)
		}
	}
}
