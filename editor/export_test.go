package editor

import (
	"bytes"
	"image/gif"
	"image/png"
	"testing"
)

func TestCompositeFrame(t *testing.T) {
	e := newTestEngine(t, 4, 4)
	e.SetPixel(0, 1, 1, "#ff0000")
	e.AddLayer() // topmost, becomes active
	e.SetPixel(0, 1, 1, "#0000ff")
	e.SetPixel(0, 2, 2, "#00ff00")

	img := CompositeFrame(e.Project(), 0)
	if got := img.NRGBAAt(1, 1); got.B != 255 || got.R != 0 {
		t.Errorf("top layer did not win at (1,1): %v", got)
	}
	if got := img.NRGBAAt(2, 2); got.G != 255 {
		t.Errorf("green pixel lost: %v", got)
	}
	if got := img.NRGBAAt(0, 0); got.A != 0 {
		t.Errorf("empty cell composited opaque: %v", got)
	}
}

func TestCompositeFrameHonorsVisibilityAndOpacity(t *testing.T) {
	e := newTestEngine(t, 4, 4)
	e.SetPixel(0, 0, 0, "#ff0000")
	id := e.ActiveLayerID()

	e.ToggleVisible(id)
	img := CompositeFrame(e.Project(), 0)
	if img.NRGBAAt(0, 0).A != 0 {
		t.Error("hidden layer was composited")
	}

	e.ToggleVisible(id)
	e.SetOpacity(id, 50)
	img = CompositeFrame(e.Project(), 0)
	if a := img.NRGBAAt(0, 0).A; a < 120 || a > 135 {
		t.Errorf("50%% opacity alpha = %d, want ~127", a)
	}
}

func TestExportPNG(t *testing.T) {
	e := newTestEngine(t, 4, 4)
	e.SetPixel(0, 0, 0, "#336699")

	var buf bytes.Buffer
	if err := ExportPNG(&buf, e.Project(), 0, 4); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("scaled PNG is %dx%d, want 16x16", b.Dx(), b.Dy())
	}
}

func TestExportGIF(t *testing.T) {
	e := newTestEngine(t, 4, 4)
	e.SetPixel(0, 0, 0, "#ff0000")
	e.AddFrame()
	e.SetPixel(1, 1, 1, "#00ff00")
	e.Project().Frames[1].Duration = 250

	var buf bytes.Buffer
	if err := ExportGIF(&buf, e.Project(), 1); err != nil {
		t.Fatal(err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 2 {
		t.Fatalf("GIF frame count = %d, want 2", len(anim.Image))
	}
	if anim.Delay[1] != 25 {
		t.Errorf("frame 1 delay = %d, want 25 (250ms)", anim.Delay[1])
	}
}
