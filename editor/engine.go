package editor

import (
	"strconv"

	"github.com/google/uuid"
)

// PixelUpdate is one cell write inside a batch.
type PixelUpdate struct {
	X     int   `json:"x"`
	Y     int   `json:"y"`
	Color Color `json:"color"`
}

// Engine is the single authority for mutating a loaded project. All
// mutations go through copy-on-write: touched rows and grids are replaced,
// never edited in place, and every successful mutation publishes a fresh
// *Project reference so observers can detect change by pointer comparison.
//
// The engine is not safe for concurrent use; one editing session runs on one
// goroutine, matching the event-driven model of the client it serves.
type Engine struct {
	project       *Project
	activeFrame   int
	activeLayerID string
	history       History
	generation    uint64
}

// NewEngine returns an engine with no project loaded. Every operation
// against an unloaded engine is a no-op.
func NewEngine() *Engine {
	return &Engine{}
}

// Load replaces the current project wholesale, resets the active frame and
// layer to the first of each, and clears history.
func (e *Engine) Load(p *Project) {
	e.project = p
	e.activeFrame = 0
	e.activeLayerID = ""
	if p != nil && len(p.Layers) > 0 {
		e.activeLayerID = p.Layers[0].ID
	}
	e.history = History{}
	e.generation++
}

// Project returns the current project reference, nil when none is loaded.
func (e *Engine) Project() *Project { return e.project }

// Generation increments on every published mutation. Observers compare
// generations instead of diffing project trees.
func (e *Engine) Generation() uint64 { return e.generation }

// ActiveFrame returns the index of the frame edits currently target.
func (e *Engine) ActiveFrame() int { return e.activeFrame }

// ActiveLayerID returns the id of the layer edits currently target.
func (e *Engine) ActiveLayerID() string { return e.activeLayerID }

// SetActiveFrame selects the frame edits target. Out-of-range indexes are
// ignored.
func (e *Engine) SetActiveFrame(i int) {
	if e.project == nil || i < 0 || i >= len(e.project.Frames) {
		return
	}
	e.activeFrame = i
}

// SetActiveLayer selects the layer edits target. Unknown ids are ignored.
func (e *Engine) SetActiveLayer(id string) {
	if e.project == nil || e.project.LayerByID(id) < 0 {
		return
	}
	e.activeLayerID = id
}

// publish installs the mutated project as current.
func (e *Engine) publish(p *Project) {
	e.project = p
	e.generation++
}

// activeLayer returns the active layer, or nil when the engine cannot write
// (no project, unknown layer).
func (e *Engine) activeLayer() *Layer {
	if e.project == nil {
		return nil
	}
	i := e.project.LayerByID(e.activeLayerID)
	if i < 0 {
		return nil
	}
	return &e.project.Layers[i]
}

// CanEdit reports whether local draws currently land: a project is loaded
// and the active layer is neither locked nor hidden. Gesture code checks
// this before snapshotting or broadcasting anything.
func (e *Engine) CanEdit() bool {
	layer := e.activeLayer()
	return layer != nil && !layer.Locked && layer.Visible
}

// SetPixel writes one cell on the active layer of the given frame. Writes to
// a locked or hidden layer are silently ignored; that is drawing policy, not
// an error. Out-of-range coordinates are dropped. Reports whether anything
// was written.
func (e *Engine) SetPixel(frameIndex, x, y int, c Color) bool {
	return e.SetPixels(frameIndex, []PixelUpdate{{X: x, Y: y, Color: c}})
}

// SetPixels applies a batch of cell writes to the active layer of the given
// frame under the same guard as SetPixel. This is the path used for local
// multi-point gestures. Out-of-range entries are skipped, not rejected.
// Reports whether the batch applied; callers must not broadcast a refused
// batch.
func (e *Engine) SetPixels(frameIndex int, updates []PixelUpdate) bool {
	layer := e.activeLayer()
	if layer == nil || layer.Locked || !layer.Visible {
		return false
	}
	return e.applyBatch(frameIndex, layer.ID, updates)
}

// SetLayerPixels applies a batch to an explicit layer, bypassing the lock
// and visibility guard. This is the entry point for applying a remote
// collaborator's batch: the remote editor's own lock check already governed
// intent, and enforcing the local viewer's lock state would drop legitimate
// edits.
func (e *Engine) SetLayerPixels(frameIndex int, layerID string, updates []PixelUpdate) {
	if e.project == nil || e.project.LayerByID(layerID) < 0 {
		return
	}
	e.applyBatch(frameIndex, layerID, updates)
}

func (e *Engine) applyBatch(frameIndex int, layerID string, updates []PixelUpdate) bool {
	p := e.project
	if p == nil || frameIndex < 0 || frameIndex >= len(p.Frames) || len(updates) == 0 {
		return false
	}

	grid := p.Frames[frameIndex].Grid(layerID, p.Width, p.Height)
	if len(updates) == 1 {
		// Single-cell write: fork only the touched row.
		u := updates[0]
		if !grid.InBounds(u.X, u.Y) {
			return false
		}
		e.publish(p.withFrameGrid(frameIndex, layerID, grid.withPixel(u.X, u.Y, u.Color)))
		return true
	}
	next := grid
	wrote := false
	for _, u := range updates {
		if !next.InBounds(u.X, u.Y) {
			continue
		}
		if !wrote {
			// First in-bounds write: fork the grid once, then mutate the
			// private copy for the rest of the batch.
			next = grid.Clone()
			wrote = true
		}
		next[u.Y][u.X] = u.Color
	}
	if !wrote {
		return false
	}
	e.publish(p.withFrameGrid(frameIndex, layerID, next))
	return true
}

// FillAt flood-fills the active layer of the given frame from the seed
// point, honoring the lock/visibility guard. The replaced region's points
// are returned as a batch so callers can broadcast the same mutation.
func (e *Engine) FillAt(frameIndex int, seed Point, c Color) []PixelUpdate {
	layer := e.activeLayer()
	p := e.project
	if layer == nil || layer.Locked || !layer.Visible {
		return nil
	}
	if frameIndex < 0 || frameIndex >= len(p.Frames) {
		return nil
	}
	grid := p.Frames[frameIndex].Grid(layer.ID, p.Width, p.Height)
	filled := FloodFill(grid, seed, c)
	if filled.Width() == 0 {
		return nil
	}
	var batch []PixelUpdate
	for y := range filled {
		for x := range filled[y] {
			if filled[y][x] != grid.At(x, y) {
				batch = append(batch, PixelUpdate{X: x, Y: y, Color: c})
			}
		}
	}
	if len(batch) == 0 {
		return nil
	}
	e.publish(p.withFrameGrid(frameIndex, layer.ID, filled))
	return batch
}

// PickColor returns the color under (x, y) on the active layer of the given
// frame, and false when nothing is painted there.
func (e *Engine) PickColor(frameIndex, x, y int) (Color, bool) {
	p := e.project
	if p == nil || frameIndex < 0 || frameIndex >= len(p.Frames) {
		return Empty, false
	}
	grid := p.Frames[frameIndex].Grid(e.activeLayerID, p.Width, p.Height)
	c := grid.At(x, y)
	if c == Empty {
		return Empty, false
	}
	return c, true
}

// withFrameGrid returns a copy of the project with one frame's grid for one
// layer replaced. Untouched frames and grids are shared.
func (p *Project) withFrameGrid(frameIndex int, layerID string, g PixelGrid) *Project {
	out := *p
	out.Frames = append([]Frame(nil), p.Frames...)
	f := out.Frames[frameIndex]
	layers := make(map[string]PixelGrid, len(f.Layers)+1)
	for id, lg := range f.Layers {
		layers[id] = lg
	}
	layers[layerID] = g
	f.Layers = layers
	out.Frames[frameIndex] = f
	return &out
}

// AddLayer prepends a new topmost layer, backfills an Empty grid for it in
// every frame, and makes it active.
func (e *Engine) AddLayer() {
	p := e.project
	if p == nil {
		return
	}
	layer := Layer{
		ID:      uuid.New().String(),
		Name:    nextLayerName(p.Layers),
		Visible: true,
		Opacity: 100,
	}
	out := *p
	out.Layers = append([]Layer{layer}, p.Layers...)
	out.Frames = make([]Frame, len(p.Frames))
	for i, f := range p.Frames {
		nf := f
		nf.Layers = cloneGridMap(f.Layers)
		nf.Layers[layer.ID] = NewGrid(p.Width, p.Height)
		out.Frames[i] = nf
	}
	e.publish(&out)
	e.activeLayerID = layer.ID
}

// DeleteLayer removes a layer and its grid key from every frame. Deleting
// the last remaining layer is refused silently. If the deleted layer was
// active, the new first layer becomes active.
func (e *Engine) DeleteLayer(id string) {
	p := e.project
	if p == nil || len(p.Layers) <= 1 {
		return
	}
	idx := p.LayerByID(id)
	if idx < 0 {
		return
	}
	out := *p
	out.Layers = append(append([]Layer(nil), p.Layers[:idx]...), p.Layers[idx+1:]...)
	out.Frames = make([]Frame, len(p.Frames))
	for i, f := range p.Frames {
		nf := f
		nf.Layers = cloneGridMap(f.Layers)
		delete(nf.Layers, id)
		out.Frames[i] = nf
	}
	e.publish(&out)
	if e.activeLayerID == id {
		e.activeLayerID = out.Layers[0].ID
	}
}

// RenameLayer sets a layer's display name. Names need not be unique.
func (e *Engine) RenameLayer(id, name string) {
	e.updateLayer(id, func(l *Layer) { l.Name = name })
}

// ToggleVisible flips a layer's visibility.
func (e *Engine) ToggleVisible(id string) {
	e.updateLayer(id, func(l *Layer) { l.Visible = !l.Visible })
}

// ToggleLock flips a layer's lock state.
func (e *Engine) ToggleLock(id string) {
	e.updateLayer(id, func(l *Layer) { l.Locked = !l.Locked })
}

// SetOpacity sets a layer's opacity, clamped to 0..100.
func (e *Engine) SetOpacity(id string, opacity int) {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 100 {
		opacity = 100
	}
	e.updateLayer(id, func(l *Layer) { l.Opacity = opacity })
}

func (e *Engine) updateLayer(id string, fn func(*Layer)) {
	p := e.project
	if p == nil {
		return
	}
	idx := p.LayerByID(id)
	if idx < 0 {
		return
	}
	out := *p
	out.Layers = append([]Layer(nil), p.Layers...)
	fn(&out.Layers[idx])
	e.publish(&out)
}

// AddFrame appends a new frame holding one Empty grid per current layer and
// makes it active.
func (e *Engine) AddFrame() {
	p := e.project
	if p == nil {
		return
	}
	frame := Frame{
		ID:       uuid.New().String(),
		Duration: DefaultFrameDuration,
		Layers:   make(map[string]PixelGrid, len(p.Layers)),
	}
	for _, l := range p.Layers {
		frame.Layers[l.ID] = NewGrid(p.Width, p.Height)
	}
	out := *p
	out.Frames = append(append([]Frame(nil), p.Frames...), frame)
	e.publish(&out)
	e.activeFrame = len(out.Frames) - 1
}

// DuplicateFrame deep-copies a frame's grids into a new frame inserted
// immediately after it, which becomes active.
func (e *Engine) DuplicateFrame(index int) {
	p := e.project
	if p == nil || index < 0 || index >= len(p.Frames) {
		return
	}
	src := p.Frames[index]
	dup := Frame{
		ID:       uuid.New().String(),
		Duration: src.Duration,
		Layers:   make(map[string]PixelGrid, len(src.Layers)),
	}
	for id, g := range src.Layers {
		dup.Layers[id] = g.Clone()
	}
	out := *p
	out.Frames = make([]Frame, 0, len(p.Frames)+1)
	out.Frames = append(out.Frames, p.Frames[:index+1]...)
	out.Frames = append(out.Frames, dup)
	out.Frames = append(out.Frames, p.Frames[index+1:]...)
	e.publish(&out)
	e.activeFrame = index + 1
}

// DeleteFrame removes a frame. Deleting the only remaining frame is refused
// silently; the active frame index is clamped into bounds afterwards.
func (e *Engine) DeleteFrame(index int) {
	p := e.project
	if p == nil || len(p.Frames) <= 1 || index < 0 || index >= len(p.Frames) {
		return
	}
	out := *p
	out.Frames = append(append([]Frame(nil), p.Frames[:index]...), p.Frames[index+1:]...)
	e.publish(&out)
	if e.activeFrame >= len(out.Frames) {
		e.activeFrame = len(out.Frames) - 1
	}
}

// ClearFrame resets every layer grid of a frame to Empty.
func (e *Engine) ClearFrame(index int) {
	p := e.project
	if p == nil || index < 0 || index >= len(p.Frames) {
		return
	}
	out := *p
	out.Frames = append([]Frame(nil), p.Frames...)
	f := out.Frames[index]
	f.Layers = make(map[string]PixelGrid, len(p.Layers))
	for _, l := range p.Layers {
		f.Layers[l.ID] = NewGrid(p.Width, p.Height)
	}
	out.Frames[index] = f
	e.publish(&out)
}

func cloneGridMap(m map[string]PixelGrid) map[string]PixelGrid {
	out := make(map[string]PixelGrid, len(m))
	for id, g := range m {
		out[id] = g
	}
	return out
}

func nextLayerName(layers []Layer) string {
	return "Layer " + strconv.Itoa(len(layers)+1)
}
