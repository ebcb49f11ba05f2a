package patchmgr

import (
	"encoding/hex"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/klingon-exchange/klingon-v2/internal/patchdb"
)

func addrFromByte(b byte) patchdb.Address {
	var raw [20]byte
	raw[0] = b
	a, _ := patchdb.NewAddress(raw[:])
	return a
}

func TestEventBroadcasterDeliversStabilizedEvent(t *testing.T) {
	b := NewEventBroadcaster(nil)
	server := httptest.NewServer(b)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer conn.Close()

	// Give the server goroutine time to register the connection.
	time.Sleep(20 * time.Millisecond)

	p := patchdb.New()
	if err := p.CreateCoins(hashFromByte(0x01), 0, patchdb.Coins{Value: 1}); err != nil {
		t.Fatal(err)
	}
	addr := addrFromByte(0x09)
	p.SetContract(patchdb.NewContract([]byte("state"), addr, 1))
	b.BroadcastStabilized(p)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() failed: %v", err)
	}

	var event StabilizedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		t.Fatalf("failed to unmarshal event: %v", err)
	}
	if event.Kind != "stabilized" {
		t.Errorf("event.Kind = %q, want %q", event.Kind, "stabilized")
	}
	if event.Complexity != 0 {
		t.Errorf("event.Complexity = %d, want 0 (no spends yet)", event.Complexity)
	}
	if len(event.ContractDigests) != 1 {
		t.Fatalf("event.ContractDigests = %v, want 1 entry", event.ContractDigests)
	}
	wantDigest := patchdb.NewContract([]byte("state"), addr, 1).DataDigest()
	if event.ContractDigests[0] != hex.EncodeToString(wantDigest[:]) {
		t.Errorf("event.ContractDigests[0] = %q, want %x", event.ContractDigests[0], wantDigest)
	}
}
