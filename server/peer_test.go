package server

import (
	"encoding/json"
	"testing"
	"time"

	"poxil-server/editor"
)

func newPeerEngine() (*editor.Engine, string) {
	p := editor.NewProject("shared", 8, 8, "owner-1")
	e := editor.NewEngine()
	e.Load(p)
	return e, p.Layers[0].ID
}

// applyRaw feeds a raw room message through the peer's inbound path.
func applyRaw(t *testing.T, p *Peer, msgType string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := json.Marshal(clientMessage{Type: msgType, Data: raw})
	if err != nil {
		t.Fatal(err)
	}
	p.handleMessage(msg)
}

func TestPeerAppliesRemoteBatch(t *testing.T) {
	engine, layerID := newPeerEngine()
	engine.ToggleLock(layerID) // local lock must not stop remote edits
	p := &Peer{engine: engine}

	applyRaw(t, p, "pixel-update", PixelUpdateData{
		ProjectID:  "p1",
		LayerID:    layerID,
		FrameIndex: 0,
		Updates:    []editor.PixelUpdate{{X: 2, Y: 3, Color: "#ff00ff"}},
	})

	g := engine.Project().Frames[0].Grid(layerID, 8, 8)
	if g.At(2, 3) != "#ff00ff" {
		t.Error("remote batch was not applied through the explicit-layer path")
	}
	if engine.History().CanUndo() {
		t.Error("remote batch became a local undo step")
	}
}

func TestPeerDropsMalformedInbound(t *testing.T) {
	engine, layerID := newPeerEngine()
	p := &Peer{engine: engine}
	gen := engine.Generation()

	p.handleMessage([]byte("{bad json"))
	applyRaw(t, p, "pixel-update", PixelUpdateData{ // missing layer id
		ProjectID: "p1",
		Updates:   []editor.PixelUpdate{{X: 0, Y: 0, Color: "#000000"}},
	})
	applyRaw(t, p, "pixel-update", PixelUpdateData{ // out-of-range frame
		ProjectID: "p1", LayerID: layerID, FrameIndex: 99,
		Updates: []editor.PixelUpdate{{X: 0, Y: 0, Color: "#000000"}},
	})

	if engine.Generation() != gen {
		t.Error("malformed inbound traffic mutated the project")
	}
}

func TestPeerPresenceCallbacks(t *testing.T) {
	engine, _ := newPeerEngine()
	p := &Peer{engine: engine}

	var joined, left, cursor string
	p.PeerJoined = func(socketID string, user UserInfo) { joined = user.Name }
	p.PeerLeft = func(socketID string) { left = socketID }
	p.CursorMoved = func(x, y int, userName string) { cursor = userName }

	applyRaw(t, p, "user-joined", map[string]interface{}{
		"socketId": "s1", "user": UserInfo{ID: "u1", Name: "alice"},
	})
	applyRaw(t, p, "user-left", map[string]string{"socketId": "s1"})
	applyRaw(t, p, "cursor-move", cursorMoveData{ProjectID: "p1", X: 1, Y: 2, UserName: "alice"})

	if joined != "alice" || left != "s1" || cursor != "alice" {
		t.Errorf("callbacks saw joined=%q left=%q cursor=%q", joined, left, cursor)
	}
}

// End-to-end: two peers in one room; a batch sent by one lands in the
// other's engine via the relay, converging both canvases.
func TestPeersConvergeOverRelay(t *testing.T) {
	srv, url := newTestWSServer(t)

	shared := editor.NewProject("shared", 8, 8, "owner-1")
	layerID := shared.Layers[0].ID

	engineA := editor.NewEngine()
	engineA.Load(shared.Clone())
	engineB := editor.NewEngine()
	engineB.Load(shared.Clone())

	peerA, err := Dial(url, "p1", UserInfo{ID: "u1", Name: "alice"}, engineA)
	if err != nil {
		t.Fatal(err)
	}
	defer peerA.Close()
	waitJoins(t, srv, 1)

	peerB, err := Dial(url, "p1", UserInfo{ID: "u2", Name: "bob"}, engineB)
	if err != nil {
		t.Fatal(err)
	}
	waitJoins(t, srv, 2)

	// Local apply on A, then fire-and-forget broadcast of the same batch.
	batch := []editor.PixelUpdate{
		{X: 1, Y: 1, Color: "#ff0000"},
		{X: 2, Y: 1, Color: "#00ff00"},
	}
	engineA.SetLayerPixels(0, layerID, batch)
	if err := peerA.SendBatch(layerID, 0, batch); err != nil {
		t.Fatal(err)
	}

	// Give the relay a moment, then stop B's read loop; the Done channel
	// orders B's applies before our reads.
	time.Sleep(300 * time.Millisecond)
	peerB.Close()
	<-peerB.Done()

	ga := engineA.Project().Frames[0].Grid(layerID, 8, 8)
	gb := engineB.Project().Frames[0].Grid(layerID, 8, 8)
	for _, u := range batch {
		if ga.At(u.X, u.Y) != u.Color {
			t.Errorf("sender grid (%d,%d) = %q, want %q", u.X, u.Y, ga.At(u.X, u.Y), u.Color)
		}
		if gb.At(u.X, u.Y) != u.Color {
			t.Errorf("receiver grid (%d,%d) = %q, want %q", u.X, u.Y, gb.At(u.X, u.Y), u.Color)
		}
	}
}
