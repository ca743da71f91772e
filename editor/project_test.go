package editor

import (
	"encoding/json"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestNewProjectDefaults(t *testing.T) {
	p := NewProject("sprites", 16, 16, "owner-1")
	if p.ID == "" {
		t.Error("project created without an id")
	}
	if other := NewProject("sprites", 16, 16, "owner-1"); other.ID == p.ID {
		t.Error("project ids collide")
	}
	if len(p.Layers) != 1 || len(p.Frames) != 1 {
		t.Fatalf("layers=%d frames=%d, want 1/1", len(p.Layers), len(p.Frames))
	}
	l := p.Layers[0]
	if !l.Visible || l.Locked || l.Opacity != 100 {
		t.Errorf("default layer flags = %+v", l)
	}
	f := p.Frames[0]
	if f.Duration != DefaultFrameDuration {
		t.Errorf("default duration = %d, want %d", f.Duration, DefaultFrameDuration)
	}
	g := f.Grid(l.ID, p.Width, p.Height)
	if g.Width() != 16 || g.Height() != 16 {
		t.Fatalf("default grid %dx%d, want 16x16", g.Width(), g.Height())
	}
	for y := range g {
		for x := range g[y] {
			if g[y][x] != Empty {
				t.Fatalf("default grid painted at (%d,%d)", x, y)
			}
		}
	}
}

func TestFrameGridBackfill(t *testing.T) {
	f := Frame{Layers: map[string]PixelGrid{}}
	g := f.Grid("missing", 8, 4)
	if g.Width() != 8 || g.Height() != 4 {
		t.Errorf("backfilled grid %dx%d, want 8x4", g.Width(), g.Height())
	}
	if g.At(3, 3) != Empty {
		t.Error("backfilled grid not empty")
	}
}

func TestProjectCloneIndependence(t *testing.T) {
	p := NewProject("a", 8, 8, "owner-1")
	layerID := p.Layers[0].ID
	c := p.Clone()
	c.Frames[0].Layers[layerID][0][0] = "#ff0000"
	c.Layers[0].Name = "renamed"
	if p.Frames[0].Layers[layerID][0][0] != Empty {
		t.Error("clone shares grid storage")
	}
	if p.Layers[0].Name == "renamed" {
		t.Error("clone shares layer storage")
	}
}

// The serialized form is the persistence contract: frames[i].layers[layerId]
// holds a row-major array of color strings with "transparent" for empty.
func TestProjectJSONLayout(t *testing.T) {
	p := NewProject("wire", 2, 2, "owner-1")
	p.Frames[0].Layers[p.Layers[0].ID][0][1] = "#ff0000"

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Width  int `json:"width"`
		Frames []struct {
			Duration int                   `json:"duration"`
			Layers   map[string][][]string `json:"layers"`
		} `json:"frames"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	rows := decoded.Frames[0].Layers[p.Layers[0].ID]
	if len(rows) != 2 || len(rows[0]) != 2 {
		t.Fatalf("serialized grid shape %v", rows)
	}
	if rows[0][0] != "transparent" || rows[0][1] != "#ff0000" {
		t.Errorf("row 0 = %v, want [transparent #ff0000]", rows[0])
	}

	var round Project
	if err := json.Unmarshal(raw, &round); err != nil {
		t.Fatal(err)
	}
	if round.Frames[0].Grid(p.Layers[0].ID, 2, 2).At(1, 0) != "#ff0000" {
		t.Error("round trip lost pixel data")
	}
}

// The stored document must carry the project id as its _id so the REST
// layer's by-id string filters match what InsertOne wrote.
func TestProjectBSONCarriesID(t *testing.T) {
	p := NewProject("stored", 8, 8, "owner-1")
	raw, err := bson.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	id, ok := doc["_id"].(string)
	if !ok || id == "" {
		t.Fatalf("document _id = %v (%T), want project id string", doc["_id"], doc["_id"])
	}
	if id != p.ID {
		t.Errorf("document _id = %q, want %q", id, p.ID)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name       string
		in         Color
		r, g, b, a uint8
	}{
		{"black", "#000000", 0, 0, 0, 255},
		{"red", "#ff0000", 255, 0, 0, 255},
		{"short form", "#fa0", 255, 170, 0, 255},
		{"transparent", Empty, 0, 0, 0, 0},
		{"garbage", "#zzzzzz", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseColor(tt.in)
			if got.R != tt.r || got.G != tt.g || got.B != tt.b || got.A != tt.a {
				t.Errorf("ParseColor(%q) = %v", tt.in, got)
			}
		})
	}
}

func TestHexColor(t *testing.T) {
	if got := HexColor(255, 170, 0); got != "#ffaa00" {
		t.Errorf("HexColor = %q, want #ffaa00", got)
	}
}
