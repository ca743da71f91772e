package editor

// ToolType tags one drawing tool.
type ToolType string

const (
	ToolPencil    ToolType = "pencil"
	ToolEraser    ToolType = "eraser"
	ToolPicker    ToolType = "picker"
	ToolFill      ToolType = "fill"
	ToolLine      ToolType = "line"
	ToolRectangle ToolType = "rectangle"
	ToolCircle    ToolType = "circle"
)

// Tool is the selected tool variant: a type tag plus brush size.
type Tool struct {
	Type ToolType `json:"type"`
	Size int      `json:"size"`
}

// ShapeFunc computes the outline points for a two-point shape gesture
// (press at p0, release at p1).
type ShapeFunc func(p0, p1 Point) []Point

// shapeTools maps each shape tool to its rasterizer. Adding a shape tool
// means adding one entry here; dispatch sites stay untouched.
var shapeTools = map[ToolType]ShapeFunc{
	ToolLine:      LinePoints,
	ToolRectangle: RectPoints,
	ToolCircle:    CirclePoints,
}

// ShapeFor returns the rasterizer for a shape tool, or false when the tool
// is not a two-point shape (pencil, eraser, fill, picker).
func ShapeFor(t ToolType) (ShapeFunc, bool) {
	fn, ok := shapeTools[t]
	return fn, ok
}
