package editor

// Session is one client's editing state on top of the engine: selected tool,
// colors and mirror axes, plus gesture tracking. One continuous gesture
// (press, drag, release) produces one history checkpoint and one or more
// outgoing batches.
type Session struct {
	Engine         *Engine
	Tool           Tool
	PrimaryColor   Color
	SecondaryColor Color
	Mirror         Mirror

	inGesture bool
	start     Point
}

// NewSession returns a session with the usual defaults: a size-1 pencil
// drawing black over white.
func NewSession(e *Engine) *Session {
	return &Session{
		Engine:         e,
		Tool:           Tool{Type: ToolPencil, Size: 1},
		PrimaryColor:   "#000000",
		SecondaryColor: "#ffffff",
	}
}

// paintColor resolves the color a gesture paints with: the eraser always
// paints Empty, a secondary-button gesture paints the secondary color.
func (s *Session) paintColor(secondary bool) Color {
	if s.Tool.Type == ToolEraser {
		return Empty
	}
	if secondary {
		return s.SecondaryColor
	}
	return s.PrimaryColor
}

// BeginGesture starts a press at p, snapshotting history once before the
// first mutation. For brush tools it stamps immediately and returns the
// applied batch; for shape tools points are only committed on EndGesture.
// The returned batch is what the caller broadcasts to peers.
func (s *Session) BeginGesture(p Point, secondary bool) []PixelUpdate {
	proj := s.Engine.Project()
	if proj == nil {
		return nil
	}
	if s.Tool.Type != ToolPicker {
		// A locked or hidden active layer refuses the whole gesture: no
		// history entry, no batch to broadcast.
		if !s.Engine.CanEdit() {
			return nil
		}
		s.Engine.PushSnapshot()
	}
	s.inGesture = true
	s.start = p

	switch s.Tool.Type {
	case ToolPencil, ToolEraser:
		return s.stamp(p, s.paintColor(secondary))
	case ToolFill:
		return s.Engine.FillAt(s.Engine.ActiveFrame(), p, s.paintColor(secondary))
	case ToolPicker:
		if c, ok := s.Engine.PickColor(s.Engine.ActiveFrame(), p.X, p.Y); ok {
			s.PrimaryColor = c
		}
		return nil
	}
	return nil
}

// MoveGesture extends an in-progress brush drag to p. Shape tools preview
// only; nothing is committed until release.
func (s *Session) MoveGesture(p Point, secondary bool) []PixelUpdate {
	if !s.inGesture {
		return nil
	}
	switch s.Tool.Type {
	case ToolPencil, ToolEraser:
		return s.stamp(p, s.paintColor(secondary))
	}
	return nil
}

// EndGesture releases at p, committing shape tools through the tool table.
func (s *Session) EndGesture(p Point, secondary bool) []PixelUpdate {
	if !s.inGesture {
		return nil
	}
	s.inGesture = false

	shape, ok := ShapeFor(s.Tool.Type)
	if !ok {
		return nil
	}
	proj := s.Engine.Project()
	if proj == nil {
		return nil
	}
	color := s.paintColor(secondary)
	batch := make([]PixelUpdate, 0)
	for _, pt := range shape(s.start, p) {
		if pt.X >= 0 && pt.X < proj.Width && pt.Y >= 0 && pt.Y < proj.Height {
			batch = append(batch, PixelUpdate{X: pt.X, Y: pt.Y, Color: color})
		}
	}
	if len(batch) == 0 {
		return nil
	}
	if !s.Engine.SetPixels(s.Engine.ActiveFrame(), batch) {
		return nil
	}
	return batch
}

// CancelGesture abandons an in-progress gesture with no partial commit, as
// when the pointer leaves the canvas or the client disconnects mid-drag.
func (s *Session) CancelGesture() {
	s.inGesture = false
}

func (s *Session) stamp(center Point, color Color) []PixelUpdate {
	proj := s.Engine.Project()
	pts := BrushPoints(center, s.Tool.Size, proj.Width, proj.Height, s.Mirror)
	batch := make([]PixelUpdate, len(pts))
	for i, pt := range pts {
		batch[i] = PixelUpdate{X: pt.X, Y: pt.Y, Color: color}
	}
	if !s.Engine.SetPixels(s.Engine.ActiveFrame(), batch) {
		return nil
	}
	return batch
}
