package editor

import (
	"time"

	"github.com/google/uuid"
)

// Canvas size limits accepted when creating a project.
const (
	MinCanvasSize = 8
	MaxCanvasSize = 512
)

// DefaultFrameDuration is the display duration assigned to new frames, in ms.
const DefaultFrameDuration = 100

// Layer is a named drawing surface. Identity is the ID; the name is mutable
// and non-unique. Position in Project.Layers defines compositing order,
// index 0 topmost.
type Layer struct {
	ID      string `json:"id" bson:"id"`
	Name    string `json:"name" bson:"name"`
	Visible bool   `json:"visible" bson:"visible"`
	Locked  bool   `json:"locked" bson:"locked"`
	Opacity int    `json:"opacity" bson:"opacity"` // 0..100
}

// Frame is one animation step: a display duration plus one pixel grid per
// layer of the owning project. A layer id missing from Layers reads as an
// all-Empty grid until backfilled.
type Frame struct {
	ID       string               `json:"id" bson:"id"`
	Duration int                  `json:"duration" bson:"duration"` // ms
	Layers   map[string]PixelGrid `json:"layers" bson:"layers"`
}

// Grid returns the frame's grid for a layer, or an all-Empty grid of the
// given dimensions when the layer has not been backfilled yet.
func (f *Frame) Grid(layerID string, width, height int) PixelGrid {
	if g, ok := f.Layers[layerID]; ok {
		return g
	}
	return NewGrid(width, height)
}

// Project is the aggregate the editor operates on. Width and height are
// immutable once set. Layers and Frames are never empty while the project is
// live; both are mutated only through Engine operations.
type Project struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Width       int       `json:"width" bson:"width"`
	Height      int       `json:"height" bson:"height"`
	Layers      []Layer   `json:"layers" bson:"layers"`
	Frames      []Frame   `json:"frames" bson:"frames"`
	IsPublic    bool      `json:"isPublic" bson:"is_public"`
	Owner       string    `json:"userId" bson:"owner"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// NewProject creates a project with one default layer and one default frame
// holding an all-Empty grid sized to width x height.
func NewProject(name string, width, height int, owner string) *Project {
	layer := Layer{
		ID:      uuid.New().String(),
		Name:    "Layer 1",
		Visible: true,
		Opacity: 100,
	}
	frame := Frame{
		ID:       uuid.New().String(),
		Duration: DefaultFrameDuration,
		Layers:   map[string]PixelGrid{layer.ID: NewGrid(width, height)},
	}
	now := time.Now().UTC()
	return &Project{
		ID:        uuid.New().String(),
		Name:      name,
		Width:     width,
		Height:    height,
		Layers:    []Layer{layer},
		Frames:    []Frame{frame},
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LayerByID returns the index of the layer with the given id, or -1.
func (p *Project) LayerByID(id string) int {
	for i, l := range p.Layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Clone deep-copies the project: layer list, frame list and every grid.
// Used for history snapshots.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Layers = append([]Layer(nil), p.Layers...)
	out.Frames = make([]Frame, len(p.Frames))
	for i, f := range p.Frames {
		nf := f
		nf.Layers = make(map[string]PixelGrid, len(f.Layers))
		for id, g := range f.Layers {
			nf.Layers[id] = g.Clone()
		}
		out.Frames[i] = nf
	}
	return &out
}
