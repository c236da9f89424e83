package spreadsheet

import (
	"fmt"
	"slices"

	"github.com/cockroachdb/errors"
)

// ChangeKind records which property of a cell an undo record restores
type ChangeKind uint8

const (
	ChangeText       ChangeKind = 1
	ChangeBackground ChangeKind = 2
)

// String returns the description the history shows for the change
func (k ChangeKind) String() string {
	switch k {
	case ChangeText:
		return "cell text change"
	case ChangeBackground:
		return "changing cell background color"
	}
	return "unknown change"
}

// Snapshot is the state of one cell at some point in time
type Snapshot struct {
	Address    CellAddress
	Text       string
	Background uint32
	DependsOn  []CellAddress
	Dependents []CellAddress
	Kind       ChangeKind
}

func (sn Snapshot) clone() Snapshot {
	sn.DependsOn = slices.Clone(sn.DependsOn)
	sn.Dependents = slices.Clone(sn.Dependents)
	return sn
}

// UndoRedo is a snapshot plus the description shown for it. a record lives
// on exactly one of the two stacks at a time.
type UndoRedo struct {
	snapshot    Snapshot
	description string
}

func (r UndoRedo) Snapshot() Snapshot  { return r.snapshot.clone() }
func (r UndoRedo) Description() string { return r.description }

// History holds the undo and redo stacks
type History struct {
	undo []UndoRedo
	redo []UndoRedo
}

// NewHistory creates empty undo and redo stacks
func NewHistory() *History {
	return &History{}
}

func (h *History) pushUndo(record UndoRedo) { h.undo = append(h.undo, record) }
func (h *History) pushRedo(record UndoRedo) { h.redo = append(h.redo, record) }

func (h *History) popUndo() (UndoRedo, bool) { return pop(&h.undo) }
func (h *History) popRedo() (UndoRedo, bool) { return pop(&h.redo) }

func (h *History) reset() {
	h.undo = nil
	h.redo = nil
}

func pop(stack *[]UndoRedo) (UndoRedo, bool) {
	if len(*stack) == 0 {
		return UndoRedo{}, false
	}
	record := (*stack)[len(*stack)-1]
	*stack = (*stack)[:len(*stack)-1]
	return record, true
}

func peek(stack []UndoRedo) (string, bool) {
	if len(stack) == 0 {
		return "", false
	}
	return stack[len(stack)-1].description, true
}

// Snapshot captures the current state of a cell for an undo record
func (s *Spreadsheet) Snapshot(row, column int, kind ChangeKind) (Snapshot, error) {
	cell, err := s.cellAt(row, column)
	if err != nil {
		return Snapshot{}, err
	}
	return snapshotOf(cell, kind), nil
}

func snapshotOf(cell *Cell, kind ChangeKind) Snapshot {
	return Snapshot{
		Address:    cell.address,
		Text:       cell.text,
		Background: cell.background,
		DependsOn:  cell.DependsOn(),
		Dependents: cell.Dependents(),
		Kind:       kind,
	}
}

// PushUndo pushes a snapshot onto the undo stack. the redo stack is left
// alone; callers recording a fresh edit also call ClearRedo.
func (s *Spreadsheet) PushUndo(snapshot Snapshot, description string) {
	s.history.pushUndo(UndoRedo{snapshot: snapshot.clone(), description: description})
}

// ClearRedo empties the redo stack
func (s *Spreadsheet) ClearRedo() {
	s.history.redo = nil
}

// UndoDepth returns the number of records on the undo stack
func (s *Spreadsheet) UndoDepth() int {
	return len(s.history.undo)
}

// RedoDepth returns the number of records on the redo stack
func (s *Spreadsheet) RedoDepth() int {
	return len(s.history.redo)
}

// PeekUndo returns the description of the record Undo would restore
func (s *Spreadsheet) PeekUndo() (string, bool) {
	return peek(s.history.undo)
}

// PeekRedo returns the description of the record Redo would restore
func (s *Spreadsheet) PeekRedo() (string, bool) {
	return peek(s.history.redo)
}

// Undo restores the most recent undo record and moves the cell's current
// state onto the redo stack. it reports false when there is nothing to
// undo.
func (s *Spreadsheet) Undo() (string, bool, error) {
	record, ok := s.history.popUndo()
	if !ok {
		return "", false, nil
	}
	s.logger.Debug("undo", "cell", record.snapshot.Address, "change", record.description)
	err := s.swap(record, s.history.pushRedo)
	return record.description, true, err
}

// Redo restores the most recent redo record and moves the cell's current
// state back onto the undo stack. it reports false when there is nothing
// to redo.
func (s *Spreadsheet) Redo() (string, bool, error) {
	record, ok := s.history.popRedo()
	if !ok {
		return "", false, nil
	}
	s.logger.Debug("redo", "cell", record.snapshot.Address, "change", record.description)
	err := s.swap(record, s.history.pushUndo)
	return record.description, true, err
}

// swap saves the current state of the record's cell to the opposite stack
// and restores the record
func (s *Spreadsheet) swap(record UndoRedo, opposite func(UndoRedo)) error {
	target := record.snapshot
	cell, err := s.cellAt(target.Address.Row, target.Address.Column)
	if err != nil {
		return errors.Wrap(err, "restoring snapshot")
	}
	opposite(UndoRedo{
		snapshot:    snapshotOf(cell, target.Kind),
		description: target.Kind.String(),
	})
	return s.restore(cell, target)
}

// restore applies text through the engine, then the background, then puts
// both edge sets back exactly as captured. every edge is restored on both
// of its cells.
func (s *Spreadsheet) restore(cell *Cell, target Snapshot) error {
	textErr := s.assignText(cell, target.Text)
	s.setBackground(cell, target.Background)

	for _, edges := range [][]CellAddress{target.DependsOn, target.Dependents} {
		for _, addr := range edges {
			if !s.inBounds(addr) {
				return errors.CombineErrors(textErr, NewApplicationError(Internal,
					fmt.Sprintf("snapshot of %s references %s outside the grid", cell.Name(), addr)))
			}
		}
	}

	clearPrecedents(cell)
	for _, addr := range target.DependsOn {
		addDependency(cell, s.cells[addr.Row][addr.Column])
	}
	for _, dependent := range sortedDependents(cell) {
		removeDependency(dependent, cell)
	}
	for _, addr := range target.Dependents {
		addDependency(s.cells[addr.Row][addr.Column], cell)
	}
	return textErr
}

// EditText records an undo entry for the cell, clears the redo stack and
// sets the text
func (s *Spreadsheet) EditText(row, column int, text string) error {
	snapshot, err := s.Snapshot(row, column, ChangeText)
	if err != nil {
		return err
	}
	s.PushUndo(snapshot, ChangeText.String())
	s.ClearRedo()
	return s.SetCellText(row, column, text)
}

// EditBackground records an undo entry for the cell, clears the redo stack
// and sets the background
func (s *Spreadsheet) EditBackground(row, column int, argb uint32) error {
	snapshot, err := s.Snapshot(row, column, ChangeBackground)
	if err != nil {
		return err
	}
	s.PushUndo(snapshot, ChangeBackground.String())
	s.ClearRedo()
	return s.SetCellBackground(row, column, argb)
}
