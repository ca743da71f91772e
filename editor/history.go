package editor

// HistoryDepth bounds the undo stack. When a new snapshot would exceed it,
// the oldest entry is evicted first.
const HistoryDepth = 20

// History holds linear undo/redo stacks of whole-project snapshots.
// Snapshots are gesture-scoped: one per drag/shape/fill gesture or
// structural operation, never one per pixel.
type History struct {
	past   []*Project
	future []*Project
}

// Len returns the number of undoable snapshots.
func (h *History) Len() int { return len(h.past) }

// CanUndo reports whether an undo is possible.
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether a redo is possible.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// push records a snapshot and discards any redo branch.
func (h *History) push(snapshot *Project) {
	h.past = append(h.past, snapshot)
	if len(h.past) > HistoryDepth {
		h.past = h.past[len(h.past)-HistoryDepth:]
	}
	h.future = nil
}

// undo trades the current project for the most recent snapshot.
func (h *History) undo(current *Project) (*Project, bool) {
	if len(h.past) == 0 {
		return current, false
	}
	restored := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append([]*Project{current}, h.future...)
	return restored, true
}

// redo is the symmetric inverse of undo.
func (h *History) redo(current *Project) (*Project, bool) {
	if len(h.future) == 0 {
		return current, false
	}
	restored := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, current)
	return restored, true
}

// PushSnapshot deep-clones the current project onto the undo stack. Call it
// once at the start of a gesture, before the first mutation. Continuous
// adjustments such as an opacity slider drag deliberately skip this so a
// single drag does not flood history.
func (e *Engine) PushSnapshot() {
	if e.project == nil {
		return
	}
	e.history.push(e.project.Clone())
}

// Undo restores the most recent snapshot, keeping the current project
// available for redo. No-op with an empty undo stack.
func (e *Engine) Undo() {
	if e.project == nil {
		return
	}
	if restored, ok := e.history.undo(e.project); ok {
		e.publish(restored)
		e.clampSelection()
	}
}

// Redo reverses the most recent Undo. No-op with an empty redo stack.
func (e *Engine) Redo() {
	if e.project == nil {
		return
	}
	if restored, ok := e.history.redo(e.project); ok {
		e.publish(restored)
		e.clampSelection()
	}
}

// History exposes the undo/redo state for UI enablement checks.
func (e *Engine) History() *History { return &e.history }

// clampSelection re-points the active frame and layer after a restore, since
// the restored project may have fewer frames or different layers.
func (e *Engine) clampSelection() {
	p := e.project
	if p == nil {
		return
	}
	if e.activeFrame >= len(p.Frames) {
		e.activeFrame = len(p.Frames) - 1
	}
	if e.activeFrame < 0 {
		e.activeFrame = 0
	}
	if p.LayerByID(e.activeLayerID) < 0 && len(p.Layers) > 0 {
		e.activeLayerID = p.Layers[0].ID
	}
}
