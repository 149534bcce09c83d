package agentpages

// History is a generic undo/redo container. It records every committed
// mutation as a new snapshot and keeps a cursor into the snapshot list.
// History is linear: a Set issued while the cursor is not at the tail
// discards every snapshot after the cursor before appending.
//
// History is not safe for concurrent use; the editing session owns it and
// applies mutations one at a time.
type History[T any] struct {
	snapshots []T
	index     int
	clone     func(T) T
}

// NewHistory seeds a history with one snapshot, cursor at 0. The clone
// function isolates stored snapshots from later caller mutation; pass nil
// for value types that need no deep copy.
func NewHistory[T any](initial T, clone func(T) T) *History[T] {
	h := &History[T]{clone: clone}
	h.snapshots = []T{h.copy(initial)}
	return h
}

// Set commits next as a new snapshot. Any snapshots after the current
// cursor are discarded first, then the cursor advances to the new tail.
// This is the only mutation entry point.
func (h *History[T]) Set(next T) {
	if h.index < len(h.snapshots)-1 {
		h.snapshots = h.snapshots[:h.index+1]
	}
	h.snapshots = append(h.snapshots, h.copy(next))
	h.index++
}

// Update computes the next snapshot from the current one and commits it.
func (h *History[T]) Update(fn func(prev T) T) {
	h.Set(fn(h.Current()))
}

// Undo moves the cursor back one snapshot. A no-op at the lower bound.
func (h *History[T]) Undo() {
	if h.index > 0 {
		h.index--
	}
}

// Redo moves the cursor forward one snapshot. A no-op at the upper bound.
func (h *History[T]) Redo() {
	if h.index < len(h.snapshots)-1 {
		h.index++
	}
}

// Current returns a copy of the snapshot at the cursor.
func (h *History[T]) Current() T {
	return h.copy(h.snapshots[h.index])
}

// CanUndo reports whether an earlier snapshot exists.
func (h *History[T]) CanUndo() bool {
	return h.index > 0
}

// CanRedo reports whether a later snapshot exists.
func (h *History[T]) CanRedo() bool {
	return h.index < len(h.snapshots)-1
}

// Len returns the number of stored snapshots.
func (h *History[T]) Len() int {
	return len(h.snapshots)
}

func (h *History[T]) copy(v T) T {
	if h.clone == nil {
		return v
	}
	return h.clone(v)
}

// NewDocumentHistory seeds a history for a document with deep-copy
// isolation between snapshots.
func NewDocumentHistory(initial Document) *History[Document] {
	return NewHistory(initial, Document.Clone)
}
