package realtime

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func testHub() *Hub {
	return NewHub(slog.Default())
}

// ---------------------------------------------------------------------------
// shouldSend tests
// ---------------------------------------------------------------------------

func TestShouldSend_AllEvents(t *testing.T) {
	h := testHub()
	client := &Client{sub: Subscription{AllEvents: true}}

	event := &Event{Type: EventVerdict, Timestamp: time.Now()}
	if !h.shouldSend(client, event) {
		t.Error("AllEvents client should receive all events")
	}
}

func TestShouldSend_EventTypeFilter(t *testing.T) {
	h := testHub()

	client := &Client{sub: Subscription{
		EventTypes: []EventType{EventVerdict, EventReportFiled},
	}}

	verdictEvent := &Event{Type: EventVerdict}
	reportEvent := &Event{Type: EventReportFiled}
	blacklistEvent := &Event{Type: EventBlacklistUpdate}

	if !h.shouldSend(client, verdictEvent) {
		t.Error("Should receive verdict events")
	}
	if !h.shouldSend(client, reportEvent) {
		t.Error("Should receive report_filed events")
	}
	if h.shouldSend(client, blacklistEvent) {
		t.Error("Should NOT receive blacklist_update events")
	}
}

func TestShouldSend_IdentifierFilter(t *testing.T) {
	h := testHub()

	client := &Client{sub: Subscription{
		Identifiers: []string{"merchant@paytm"},
	}}

	matching := &Event{
		Type: EventVerdict,
		Data: map[string]interface{}{"identifier": "merchant@paytm", "score": 10.0},
	}
	notMatching := &Event{
		Type: EventVerdict,
		Data: map[string]interface{}{"identifier": "other@okaxis", "score": 10.0},
	}
	matchingReport := &Event{
		Type: EventReportFiled,
		Data: map[string]interface{}{"identifier": "merchant@paytm"},
	}

	if !h.shouldSend(client, matching) {
		t.Error("Should match on identifier")
	}
	if h.shouldSend(client, notMatching) {
		t.Error("Should NOT match unrelated payees")
	}
	if !h.shouldSend(client, matchingReport) {
		t.Error("Should match reports on identifier")
	}
}

func TestShouldSend_MinScoreFilter(t *testing.T) {
	h := testHub()

	client := &Client{sub: Subscription{
		MinScore: 40.0,
	}}

	risky := &Event{
		Type: EventVerdict,
		Data: map[string]interface{}{"score": 80.0},
	}
	safe := &Event{
		Type: EventVerdict,
		Data: map[string]interface{}{"score": 5.0},
	}
	report := &Event{
		Type: EventReportFiled,
		Data: map[string]interface{}{"reason": "test"},
	}

	if !h.shouldSend(client, risky) {
		t.Error("Should receive high-score verdict")
	}
	if h.shouldSend(client, safe) {
		t.Error("Should NOT receive low-score verdict")
	}
	if !h.shouldSend(client, report) {
		t.Error("MinScore filter should only apply to verdicts")
	}
}

func TestShouldSend_EmptySubscription(t *testing.T) {
	h := testHub()

	// No filters, not AllEvents
	client := &Client{sub: Subscription{}}

	event := &Event{Type: EventVerdict}
	if !h.shouldSend(client, event) {
		t.Error("Empty subscription (no filters) should receive events")
	}
}

func TestShouldSend_NonMapData(t *testing.T) {
	h := testHub()

	client := &Client{sub: Subscription{
		Identifiers: []string{"merchant@paytm"},
	}}

	// Event with non-map data should not crash
	event := &Event{
		Type: EventBlacklistUpdate,
		Data: "string data not a map",
	}

	// Payee filter skips non-map data (can't extract identifier), so event passes through
	if !h.shouldSend(client, event) {
		t.Error("Non-map data should pass through when payee filter can't extract identifier")
	}
}

// ---------------------------------------------------------------------------
// Hub lifecycle tests
// ---------------------------------------------------------------------------

func TestHub_Stats_Initial(t *testing.T) {
	h := testHub()

	stats := h.Stats()
	if stats["connectedClients"].(int) != 0 {
		t.Errorf("Expected 0 connected clients, got %v", stats["connectedClients"])
	}
	if stats["totalEvents"].(int64) != 0 {
		t.Errorf("Expected 0 total events, got %v", stats["totalEvents"])
	}
}

func TestHub_BroadcastAndStats(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	// Broadcast an event
	h.Broadcast(&Event{Type: EventVerdict, Timestamp: time.Now()})
	time.Sleep(50 * time.Millisecond)

	stats := h.Stats()
	if stats["totalEvents"].(int64) != 1 {
		t.Errorf("Expected 1 total event, got %v", stats["totalEvents"])
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
		sub:  Subscription{AllEvents: true},
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	stats := h.Stats()
	if stats["connectedClients"].(int) != 1 {
		t.Errorf("Expected 1 connected client, got %v", stats["connectedClients"])
	}
	if stats["peakClients"].(int64) != 1 {
		t.Errorf("Expected peak 1, got %v", stats["peakClients"])
	}

	h.unregister <- client
	time.Sleep(50 * time.Millisecond)

	stats = h.Stats()
	if stats["connectedClients"].(int) != 0 {
		t.Errorf("Expected 0 connected clients after unregister, got %v", stats["connectedClients"])
	}
	// Peak should still be 1
	if stats["peakClients"].(int64) != 1 {
		t.Errorf("Expected peak still 1, got %v", stats["peakClients"])
	}
}

func TestHub_BroadcastToClient(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
		sub:  Subscription{AllEvents: true},
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	h.Broadcast(&Event{
		Type:      EventVerdict,
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"identifier": "merchant@paytm", "score": 15.0},
	})

	select {
	case msg := <-client.send:
		if len(msg) == 0 {
			t.Error("Expected non-empty message")
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for broadcast")
	}
}

func TestHub_BroadcastVerdict(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	// Should not panic
	h.BroadcastVerdict(map[string]interface{}{
		"identifier": "merchant@paytm", "score": 15.0, "level": "safe",
	})
}

func TestHub_ContextCancellation(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
		// Hub stopped
	case <-time.After(2 * time.Second):
		t.Error("Hub did not stop after context cancellation")
	}
}

func TestHub_FilteredBroadcast(t *testing.T) {
	h := testHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	// Client only wants blacklist updates
	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
		sub:  Subscription{EventTypes: []EventType{EventBlacklistUpdate}},
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	// Send a verdict event (should be filtered out)
	h.Broadcast(&Event{Type: EventVerdict, Timestamp: time.Now()})
	time.Sleep(100 * time.Millisecond)

	select {
	case <-client.send:
		t.Error("Client should NOT receive verdict event")
	default:
		// Good - filtered out
	}

	// Send a blacklist update (should be received)
	h.Broadcast(&Event{Type: EventBlacklistUpdate, Timestamp: time.Now()})

	select {
	case msg := <-client.send:
		if len(msg) == 0 {
			t.Error("Expected non-empty message")
		}
	case <-time.After(time.Second):
		t.Error("Client should receive blacklist update event")
	}
}
