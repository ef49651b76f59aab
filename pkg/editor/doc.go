// Package editor implements the mutation and history engine shared by every
// builder flavor. A flavor supplies its document type, its node type and a
// Policy deciding where nodes may go; the engine supplies add, update,
// remove, move, duplicate, copy/paste, selection, bounded undo/redo and dirty
// tracking over immutable snapshots.
package editor
